package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

type chatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatReq struct {
	Model    string    `json:"model"`
	Messages []chatMsg `json:"messages"`
}

type choice struct {
	Index        int     `json:"index"`
	Message      chatMsg `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type chatResp struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
}

func handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	last := ""
	if len(req.Messages) > 0 {
		last = req.Messages[len(req.Messages)-1].Content
	}
	reply := "Hello! I can look up patients for you. Try: find patients named John."
	if strings.Contains(last, "Tool result:") {
		reply = "Here is the patient information you asked for:\n\n" + last
	}
	resp := chatResp{
		ID:      "chatcmpl-mock",
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []choice{{Message: chatMsg{Role: "assistant", Content: reply}, FinishReason: "stop"}},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func main() {
	addr := ":5011"
	if v := os.Getenv("LLM_ADDR"); v != "" {
		addr = v
	}
	http.HandleFunc("/v1/chat/completions", handleChat)
	log.Printf("Chat completion mock listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}
