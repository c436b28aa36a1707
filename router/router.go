package router

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/ablelove766/Healthcare-AssistantNew/common/logger"
)

// Intent tags produced by the router.
const (
	IntentGeneral       = "general"
	IntentPatientSearch = "patient_search"
	IntentHelp          = "help"
	IntentError         = "error"
)

// ToolParams carries the extracted arguments for the patient lookup tool.
// Limit 0 means the utterance named no count; callers apply their default.
type ToolParams struct {
	PatientName string `json:"patient_name,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

// IntentResult represents the routing decision for one utterance
type IntentResult struct {
	Intent        string     `json:"intent"`
	Confidence    float64    `json:"confidence"` // Confidence score [0, 1]
	RequiresTool  bool       `json:"requires_tool"`
	ToolParams    ToolParams `json:"tool_params"`
	SetupRequired bool       `json:"setup_required,omitempty"`
	Reason        string     `json:"reason,omitempty"` // Human-readable reason
}

// Router determines what the user wants from a given utterance
type Router interface {
	Route(ctx context.Context, utterance, priorReply string) (*IntentResult, error)
}

var (
	patientKeywords = []string{"patient", "patients", "find", "search", "list", "show", "get"}
	medicalKeywords = []string{"diagnosis", "medication", "allergy", "allergies", "condition", "treatment", "medicine"}
	nameIndicators  = []string{"named", "called", "name", "with name"}
	nameStopwords   = []string{"is", "are", "the", "a", "an"}
	helpKeywords    = []string{"help", "what", "how", "command"}

	limitPattern = regexp.MustCompile(`(\d+)\s*patient`)
)

// KeywordRouter implements deterministic keyword and pattern matching.
// It is the authoritative routing signal: the model's prose never decides
// whether the tool runs.
type KeywordRouter struct{}

// NewKeywordRouter creates a new keyword-based router
func NewKeywordRouter() *KeywordRouter {
	return &KeywordRouter{}
}

// Route applies keyword rules to classify the utterance. priorReply is part
// of the routing seam but carries no signal today: routing depends on the
// utterance alone, so identical utterances always route identically.
func (r *KeywordRouter) Route(ctx context.Context, utterance, priorReply string) (*IntentResult, error) {
	result := &IntentResult{
		Intent:     IntentGeneral,
		Confidence: 0.5,
	}

	lower := strings.ToLower(utterance)

	switch {
	case containsAny(lower, patientKeywords) || containsAny(lower, medicalKeywords):
		result.Intent = IntentPatientSearch
		result.RequiresTool = true
		result.Confidence = 0.8
		result.Reason = "patient or medical keywords present"
		if containsAny(lower, nameIndicators) {
			result.ToolParams.PatientName = extractName(utterance)
		}
		if m := limitPattern.FindStringSubmatch(lower); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				result.ToolParams.Limit = n
			}
		}
	case containsAny(lower, helpKeywords):
		result.Intent = IntentHelp
		result.Confidence = 0.9
		result.Reason = "help keywords present"
	default:
		result.Reason = "no routing keywords matched"
	}

	logger.Debugf("router: decision - intent=%s confidence=%.2f requires_tool=%v name=%q limit=%d",
		result.Intent, result.Confidence, result.RequiresTool, result.ToolParams.PatientName, result.ToolParams.Limit)
	return result, nil
}

// extractName scans tokens for a name indicator and takes the following
// token, punctuation-stripped, as the name unless it is a stopword. The
// first indicator with a following token settles the outcome either way;
// the token keeps its original casing.
func extractName(utterance string) string {
	words := strings.Fields(utterance)
	for i, word := range words {
		if !isNameIndicator(strings.ToLower(word)) || i+1 >= len(words) {
			continue
		}
		candidate := strings.Trim(words[i+1], ".,!?")
		if candidate != "" && !isStopword(strings.ToLower(candidate)) {
			return candidate
		}
		return ""
	}
	return ""
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func isNameIndicator(word string) bool {
	for _, kw := range nameIndicators {
		if word == kw {
			return true
		}
	}
	return false
}

func isStopword(word string) bool {
	for _, kw := range nameStopwords {
		if word == kw {
			return true
		}
	}
	return false
}
