package prd

import (
	"fmt"
	"strings"
	"time"
)

// Step is the lifecycle position of a generation run.
type Step string

const (
	StepOutline  Step = "Outline"
	StepResearch Step = "Research" // reserved, not reached by the current pipeline
	StepDraft    Step = "Draft"
	StepCritique Step = "Critique"
	StepRevise   Step = "Revise"
	StepComplete Step = "Complete"
	StepError    Step = "Error"
)

// Terminal reports whether no further snapshots may follow this step.
func (s Step) Terminal() bool {
	return s == StepComplete || s == StepError
}

// Valid reports whether s is a known step value.
func (s Step) Valid() bool {
	switch s {
	case StepOutline, StepResearch, StepDraft, StepCritique, StepRevise, StepComplete, StepError:
		return true
	}
	return false
}

// Snapshot is one immutable, versioned record of a run's state.
// A new value is produced on every transition; snapshots are never
// mutated in place. Content always carries the full document text,
// Diff is informational only.
type Snapshot struct {
	RunID     string    `json:"run_id"`
	Step      Step      `json:"step"`
	Content   string    `json:"content"`
	Revision  int       `json:"revision"`
	Diff      string    `json:"diff,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const seedPrefix = "# PRD for "

// NewInitial builds the revision-0 snapshot for a fresh run.
func NewInitial(runID, idea string) *Snapshot {
	return &Snapshot{
		RunID:     runID,
		Step:      StepOutline,
		Content:   fmt.Sprintf("%s%s\n\n*Initial state.*", seedPrefix, idea),
		Revision:  0,
		CreatedAt: time.Now().UTC(),
	}
}

// Next derives a new snapshot from s with the step advanced, the revision
// incremented by one and a fresh timestamp. The receiver is left untouched.
func (s *Snapshot) Next(step Step, content, diff string) *Snapshot {
	return &Snapshot{
		RunID:     s.RunID,
		Step:      step,
		Content:   content,
		Revision:  s.Revision + 1,
		Diff:      diff,
		CreatedAt: time.Now().UTC(),
	}
}

// IdeaFromSeed extracts the project idea back out of the seed content
// produced by NewInitial. When the seed heading is absent the whole
// content is returned, so a malformed seed degrades instead of failing.
func IdeaFromSeed(content string) string {
	line, _, _ := strings.Cut(content, "\n")
	if idea, ok := strings.CutPrefix(line, seedPrefix); ok && strings.TrimSpace(idea) != "" {
		return strings.TrimSpace(idea)
	}
	return content
}
