package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// PromptKind classifies a prompt by the stage template that produced it.
type PromptKind string

const (
	KindOutline  PromptKind = "outline"
	KindDraft    PromptKind = "draft"
	KindCritique PromptKind = "critique"
	KindRevise   PromptKind = "revise"
	KindUnknown  PromptKind = "unknown"
)

// KindOf recognizes which stage template a prompt came from by its fixed
// instructional framing.
func KindOf(prompt string) PromptKind {
	switch {
	case strings.Contains(prompt, "create a structured"):
		return KindOutline
	case strings.Contains(prompt, "expand a given PRD"):
		return KindDraft
	case strings.Contains(prompt, "meticulous and critical"):
		return KindCritique
	case strings.Contains(prompt, "revise a Product"):
		return KindRevise
	}
	return KindUnknown
}

// MockClient is a deterministic stand-in for a real model. It answers each
// prompt kind with a fixed string and counts calls per kind, which makes
// pipeline behavior fully scriptable in tests and usable as a local
// "mock" provider without API keys.
type MockClient struct {
	mu       sync.Mutex
	calls    map[PromptKind]int
	reviseN  int
	critique []string // scripted critique responses, consumed in order
	fallback string   // critique response once the script is exhausted
	fail     map[PromptKind]error
}

// NewMockClient returns a MockClient whose critiques approve immediately.
func NewMockClient() *MockClient {
	return &MockClient{
		calls:    make(map[PromptKind]int),
		fail:     make(map[PromptKind]error),
		fallback: "No issues found.",
	}
}

// ScriptCritiques sets the critique responses returned in order; once
// exhausted, fallback is returned for every further critique call.
func (m *MockClient) ScriptCritiques(fallback string, responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.critique = responses
	m.fallback = fallback
}

// FailOn makes every call of the given kind return err.
func (m *MockClient) FailOn(kind PromptKind, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[kind] = err
}

// Calls returns how many prompts of the given kind have been answered.
func (m *MockClient) Calls(kind PromptKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[kind]
}

// Generate answers the prompt with the fixed response for its kind.
func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	kind := KindOf(prompt)
	m.calls[kind]++
	if err := m.fail[kind]; err != nil {
		return "", err
	}

	switch kind {
	case KindOutline:
		return "# Outline\n\n1. Summary\n2. Requirements\n3. Risks", nil
	case KindDraft:
		return "# Draft PRD\n\nFull first draft of the document.", nil
	case KindCritique:
		if len(m.critique) > 0 {
			resp := m.critique[0]
			m.critique = m.critique[1:]
			return resp, nil
		}
		return m.fallback, nil
	case KindRevise:
		m.reviseN++
		return fmt.Sprintf("# Revised PRD v%d\n\nDocument after revision %d.", m.reviseN, m.reviseN), nil
	}
	return "mock response", nil
}
