package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
)

type patient struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Age           int    `json:"age"`
	Department    string `json:"department"`
	Status        string `json:"status"`
	AdmissionDate string `json:"admission_date"`
}

var samplePatients = []patient{
	{ID: "P001", Name: "John Smith", Age: 45, Department: "cardiology", Status: "active", AdmissionDate: "2024-01-15"},
	{ID: "P002", Name: "Mary Johnson", Age: 32, Department: "neurology", Status: "admitted", AdmissionDate: "2024-01-20"},
	{ID: "P003", Name: "Robert Brown", Age: 67, Department: "orthopedics", Status: "discharged", AdmissionDate: "2024-01-10"},
	{ID: "P004", Name: "Sarah Davis", Age: 28, Department: "general", Status: "outpatient", AdmissionDate: "2024-01-22"},
	{ID: "P005", Name: "Michael Wilson", Age: 55, Department: "emergency", Status: "active", AdmissionDate: "2024-01-23"},
	{ID: "P006", Name: "Emily Taylor", Age: 41, Department: "cardiology", Status: "admitted", AdmissionDate: "2024-01-21"},
	{ID: "P007", Name: "David Anderson", Age: 39, Department: "neurology", Status: "active", AdmissionDate: "2024-01-19"},
	{ID: "P008", Name: "Lisa Martinez", Age: 52, Department: "orthopedics", Status: "outpatient", AdmissionDate: "2024-01-18"},
	{ID: "P009", Name: "James Garcia", Age: 33, Department: "general", Status: "discharged", AdmissionDate: "2024-01-12"},
	{ID: "P010", Name: "Jennifer Lee", Age: 47, Department: "emergency", Status: "admitted", AdmissionDate: "2024-01-24"},
	{ID: "P011", Name: "Christopher White", Age: 29, Department: "cardiology", Status: "outpatient", AdmissionDate: "2024-01-25"},
	{ID: "P012", Name: "Amanda Clark", Age: 38, Department: "neurology", Status: "discharged", AdmissionDate: "2024-01-16"},
}

type listResp struct {
	Patients []patient      `json:"patients"`
	Total    int            `json:"total"`
	Filters  map[string]any `json:"filters"`
}

func handlePatients(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	out := make([]patient, 0, len(samplePatients))
	for _, p := range samplePatients {
		if name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(name)) {
			continue
		}
		out = append(out, p)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	_ = json.NewEncoder(w).Encode(listResp{Patients: out, Total: len(out), Filters: map[string]any{"name": name, "limit": limit}})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy", "message": "Example API server is running"})
}

func main() {
	addr := ":5010"
	if v := os.Getenv("REGISTRY_ADDR"); v != "" {
		addr = v
	}
	http.HandleFunc("/api/Patient", handlePatients)
	http.HandleFunc("/health", handleHealth)
	log.Printf("Patient registry mock listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}
