// Package orchestrator drives one chat turn through its state machine:
// classify with a first model pass, invoke the patient lookup at most once
// when routing demands it, then finalize with a second pass over the tool
// result. Every path ends back at idle with a reply string.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/ablelove766/Healthcare-AssistantNew/common/logger"
	"github.com/ablelove766/Healthcare-AssistantNew/generator"
	"github.com/ablelove766/Healthcare-AssistantNew/metrics"
	"github.com/ablelove766/Healthcare-AssistantNew/registry"
	"github.com/ablelove766/Healthcare-AssistantNew/router"
)

// State is the orchestrator's position within a turn.
type State string

const (
	StateIdle         State = "idle"
	StateClassifying  State = "classifying"
	StateToolInvoking State = "tool_invoking"
	StateFinalizing   State = "finalizing"
)

// ToolUnavailable is the tool result used when no registry client is wired.
const ToolUnavailable = "❌ MCP server is not available. Please check the setup."

// SetupInstructions is appended to the reply when the model credential is
// missing or rejected.
const SetupInstructions = "\n\n💡 To set up Groq API:\n1. Get free API key from https://console.groq.com/\n2. Set environment variable: GROQ_API_KEY=your_key_here\n3. Restart the chatbot"

// toolNames is advertised to the model on the first pass.
var toolNames = []string{"getpatientlist"}

// Generator renders replies and classifies utterances.
type Generator interface {
	Generate(ctx context.Context, utterance string, extra *generator.Context) *generator.Result
}

// Orchestrator wires the per-session collaborators for turn processing.
// One orchestrator serves one session; the session layer serializes turns.
type Orchestrator struct {
	Generator    Generator
	Registry     registry.Client
	DefaultLimit int

	state State
}

// New builds an orchestrator with the given collaborators. DefaultLimit
// applies when the utterance named no record count.
func New(gen Generator, reg registry.Client, defaultLimit int) *Orchestrator {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &Orchestrator{
		Generator:    gen,
		Registry:     reg,
		DefaultLimit: defaultLimit,
		state:        StateIdle,
	}
}

// Run processes one utterance to completion and returns the reply. The
// registry is invoked at most once per turn, and its failures are folded
// into tool-result text rather than surfaced as errors.
func (o *Orchestrator) Run(ctx context.Context, utterance string) string {
	start := time.Now()

	o.setState(StateClassifying)
	defer o.setState(StateIdle)

	first := o.Generator.Generate(ctx, utterance, &generator.Context{AvailableTools: toolNames})

	if first.Intent != nil && first.Intent.SetupRequired {
		metrics.ObserveTurn(intentLabel(first.Intent), start, false)
		return first.Reply + SetupInstructions
	}

	if first.Intent != nil && first.Intent.RequiresTool && first.Intent.Intent == router.IntentPatientSearch {
		o.setState(StateToolInvoking)
		toolResult := o.invokeTool(ctx, first.Intent.ToolParams)

		o.setState(StateFinalizing)
		final := o.Generator.Generate(ctx, utterance, &generator.Context{ToolResult: toolResult})
		metrics.ObserveTurn(first.Intent.Intent, start, !isErrorResult(final))
		return final.Reply
	}

	metrics.ObserveTurn(intentLabel(first.Intent), start, !isErrorResult(first))
	return first.Reply
}

// State reports the current turn position, for status introspection.
func (o *Orchestrator) State() State {
	return o.state
}

// invokeTool performs the single registry call for this turn. Errors become
// part of the returned text so the final model pass can explain them.
func (o *Orchestrator) invokeTool(ctx context.Context, params router.ToolParams) string {
	if o.Registry == nil {
		return ToolUnavailable
	}
	limit := params.Limit
	if limit <= 0 {
		limit = o.DefaultLimit
	}
	records, err := o.Registry.Fetch(ctx, params.PatientName, limit)
	metrics.ObserveToolInvocation(err == nil)
	if err != nil {
		logger.Warnf("patient lookup failed, err: %v", err)
		return fmt.Sprintf("Error getting patient list: %v", err)
	}
	return registry.FormatPatientList(records)
}

func (o *Orchestrator) setState(s State) {
	o.state = s
	logger.Debugf("orchestrator state: %s", s)
}

func intentLabel(in *router.IntentResult) string {
	if in == nil {
		return router.IntentGeneral
	}
	return in.Intent
}

func isErrorResult(r *generator.Result) bool {
	return r.Intent != nil && r.Intent.Intent == router.IntentError
}
