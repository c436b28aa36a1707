package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ablelove766/Healthcare-AssistantNew/config"
	"github.com/ablelove766/Healthcare-AssistantNew/generator"
	"github.com/ablelove766/Healthcare-AssistantNew/llm"
	"github.com/ablelove766/Healthcare-AssistantNew/registry"
	"github.com/ablelove766/Healthcare-AssistantNew/router"
)

// scriptedGenerator returns canned results in order and records the
// enrichment context of every call.
type scriptedGenerator struct {
	t       *testing.T
	results []*generator.Result
	extras  []*generator.Context
}

func (s *scriptedGenerator) Generate(ctx context.Context, utterance string, extra *generator.Context) *generator.Result {
	i := len(s.extras)
	s.extras = append(s.extras, extra)
	if i >= len(s.results) {
		s.t.Fatalf("Unexpected generate call #%d", i+1)
	}
	return s.results[i]
}

// fakeRegistry counts fetches and records the last arguments.
type fakeRegistry struct {
	records []registry.PatientRecord
	err     error
	calls   int
	name    string
	limit   int
}

func (f *fakeRegistry) Fetch(ctx context.Context, nameFilter string, limit int) ([]registry.PatientRecord, error) {
	f.calls++
	f.name = nameFilter
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func searchResult(reply, name string, limit int) *generator.Result {
	return &generator.Result{
		Reply: reply,
		Intent: &router.IntentResult{
			Intent:       router.IntentPatientSearch,
			Confidence:   0.8,
			RequiresTool: true,
			ToolParams:   router.ToolParams{PatientName: name, Limit: limit},
		},
	}
}

func generalResult(reply string) *generator.Result {
	return &generator.Result{
		Reply:  reply,
		Intent: &router.IntentResult{Intent: router.IntentGeneral, Confidence: 0.5},
	}
}

func TestOrchestrator_ToolTurn(t *testing.T) {
	gen := &scriptedGenerator{t: t, results: []*generator.Result{
		searchResult("Searching...", "John", 3),
		generalResult("Here is what I found."),
	}}
	reg := &fakeRegistry{records: []registry.PatientRecord{{ID: "P001", Name: "John Smith"}}}
	o := New(gen, reg, 10)

	reply := o.Run(context.Background(), "find patients named John, 3 patients")

	if reply != "Here is what I found." {
		t.Errorf("Expected final pass reply, got %q", reply)
	}
	if reg.calls != 1 {
		t.Fatalf("Expected exactly one registry call, got %d", reg.calls)
	}
	if reg.name != "John" || reg.limit != 3 {
		t.Errorf("Expected Fetch(John, 3), got Fetch(%q, %d)", reg.name, reg.limit)
	}
	if len(gen.extras) != 2 {
		t.Fatalf("Expected two generator passes, got %d", len(gen.extras))
	}
	if got := gen.extras[0].AvailableTools; len(got) != 1 || got[0] != "getpatientlist" {
		t.Errorf("Expected first pass to advertise the tool, got %v", got)
	}
	if !strings.Contains(gen.extras[1].ToolResult, "John Smith") {
		t.Errorf("Expected formatted records in second pass, got %q", gen.extras[1].ToolResult)
	}
	if !strings.Contains(gen.extras[1].ToolResult, "Found 1 patient(s)") {
		t.Errorf("Expected header in tool result, got %q", gen.extras[1].ToolResult)
	}
}

func TestOrchestrator_GeneralTurn(t *testing.T) {
	gen := &scriptedGenerator{t: t, results: []*generator.Result{generalResult("Hello!")}}
	reg := &fakeRegistry{}
	o := New(gen, reg, 10)

	reply := o.Run(context.Background(), "Hello")

	if reply != "Hello!" {
		t.Errorf("Expected first pass reply, got %q", reply)
	}
	if reg.calls != 0 {
		t.Errorf("Expected no registry calls, got %d", reg.calls)
	}
	if len(gen.extras) != 1 {
		t.Errorf("Expected single generator pass, got %d", len(gen.extras))
	}
}

func TestOrchestrator_SetupRequired(t *testing.T) {
	gen := &scriptedGenerator{t: t, results: []*generator.Result{{
		Reply: generator.ReplyNotConfigured,
		Intent: &router.IntentResult{
			Intent:        router.IntentError,
			SetupRequired: true,
		},
	}}}
	reg := &fakeRegistry{}
	o := New(gen, reg, 10)

	reply := o.Run(context.Background(), "find patients")

	if reply != generator.ReplyNotConfigured+SetupInstructions {
		t.Errorf("Expected setup instructions appended, got %q", reply)
	}
	if reg.calls != 0 {
		t.Errorf("Expected no registry calls on setup path, got %d", reg.calls)
	}
	if len(gen.extras) != 1 {
		t.Errorf("Expected single generator pass, got %d", len(gen.extras))
	}
}

func TestOrchestrator_RegistryError(t *testing.T) {
	gen := &scriptedGenerator{t: t, results: []*generator.Result{
		searchResult("Searching...", "", 0),
		generalResult("Something went wrong upstream."),
	}}
	reg := &fakeRegistry{err: errors.New("connection refused")}
	o := New(gen, reg, 10)

	reply := o.Run(context.Background(), "list patients")

	if reply != "Something went wrong upstream." {
		t.Errorf("Expected final pass reply, got %q", reply)
	}
	if reg.calls != 1 {
		t.Fatalf("Expected one registry call, got %d", reg.calls)
	}
	want := "Error getting patient list: connection refused"
	if gen.extras[1].ToolResult != want {
		t.Errorf("Expected error folded into tool result %q, got %q", want, gen.extras[1].ToolResult)
	}
}

func TestOrchestrator_DefaultLimit(t *testing.T) {
	gen := &scriptedGenerator{t: t, results: []*generator.Result{
		searchResult("Searching...", "Alice", 0),
		generalResult("done"),
	}}
	reg := &fakeRegistry{}
	o := New(gen, reg, 25)

	o.Run(context.Background(), "find patients named Alice")

	if reg.limit != 25 {
		t.Errorf("Expected default limit 25, got %d", reg.limit)
	}
}

func TestOrchestrator_NilRegistry(t *testing.T) {
	gen := &scriptedGenerator{t: t, results: []*generator.Result{
		searchResult("Searching...", "", 0),
		generalResult("done"),
	}}
	o := New(gen, nil, 10)

	o.Run(context.Background(), "list patients")

	if gen.extras[1].ToolResult != ToolUnavailable {
		t.Errorf("Expected tool-unavailable text, got %q", gen.extras[1].ToolResult)
	}
}

// A tool requirement outside patient search must not reach the registry.
func TestOrchestrator_ToolRequiresPatientSearchIntent(t *testing.T) {
	gen := &scriptedGenerator{t: t, results: []*generator.Result{{
		Reply:  "help text",
		Intent: &router.IntentResult{Intent: router.IntentHelp, RequiresTool: true},
	}}}
	reg := &fakeRegistry{}
	o := New(gen, reg, 10)

	reply := o.Run(context.Background(), "help")

	if reply != "help text" {
		t.Errorf("Expected first pass reply, got %q", reply)
	}
	if reg.calls != 0 {
		t.Errorf("Expected no registry calls, got %d", reg.calls)
	}
}

// scriptedProvider is an llm.Provider returning canned replies in order.
type scriptedProvider struct {
	replies []string
	calls   int
	prompts [][]llm.ChatMessage
}

func (p *scriptedProvider) ChatCompletion(ctx context.Context, messages []llm.ChatMessage) (string, error) {
	p.prompts = append(p.prompts, messages)
	reply := p.replies[p.calls%len(p.replies)]
	p.calls++
	return reply, nil
}

func (p *scriptedProvider) GetProviderType() string { return "scripted" }
func (p *scriptedProvider) GetModel() string        { return "scripted-model" }
func (p *scriptedProvider) IsConfigured() bool      { return true }

// Full turn through the real generator and keyword router: the utterance
// routes to the tool, the fetched records feed the second model pass, and
// history records both passes.
func TestOrchestrator_EndToEndToolTurn(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		"Searching for patients...",
		"I found John Smith and John Doe for you.",
	}}
	gen := generator.NewResponseGenerator(provider, router.NewKeywordRouter(), config.ConversationConfig{})
	reg := &fakeRegistry{records: []registry.PatientRecord{
		{ID: "P001", Name: "John Smith", Age: "45"},
		{ID: "P002", Name: "John Doe", Age: "62"},
	}}
	o := New(gen, reg, 10)

	reply := o.Run(context.Background(), "find 3 patients named John")

	if reply != "I found John Smith and John Doe for you." {
		t.Errorf("Expected second pass reply, got %q", reply)
	}
	if reg.calls != 1 {
		t.Fatalf("Expected exactly one registry call, got %d", reg.calls)
	}
	if reg.name != "John" || reg.limit != 3 {
		t.Errorf("Expected Fetch(John, 3), got Fetch(%q, %d)", reg.name, reg.limit)
	}
	if provider.calls != 2 {
		t.Fatalf("Expected two model passes, got %d", provider.calls)
	}

	secondPrompt := provider.prompts[1]
	last := secondPrompt[len(secondPrompt)-1].Content
	if !strings.Contains(last, "Found 2 patient(s)") {
		t.Errorf("Expected tool result embedded in second pass, got %q", last)
	}
	if !strings.Contains(last, "John Smith") || !strings.Contains(last, "John Doe") {
		t.Errorf("Expected both records in second pass, got %q", last)
	}

	// both passes appended their user/assistant pairs
	if got := gen.History().Len(); got != 4 {
		t.Errorf("Expected 4 history messages after a tool turn, got %d", got)
	}
}

func TestOrchestrator_IdleAfterRun(t *testing.T) {
	gen := &scriptedGenerator{t: t, results: []*generator.Result{generalResult("Hello!")}}
	o := New(gen, &fakeRegistry{}, 10)

	if o.State() != StateIdle {
		t.Fatalf("Expected idle before run, got %s", o.State())
	}
	o.Run(context.Background(), "Hello")
	if o.State() != StateIdle {
		t.Errorf("Expected idle after run, got %s", o.State())
	}
}
