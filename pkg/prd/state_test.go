package prd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInitial(t *testing.T) {
	snap := NewInitial("run-1", "A mobile app that identifies plants from photos")

	assert.Equal(t, "run-1", snap.RunID)
	assert.Equal(t, StepOutline, snap.Step)
	assert.Equal(t, 0, snap.Revision)
	assert.Empty(t, snap.Diff)
	assert.False(t, snap.CreatedAt.IsZero())
	assert.Contains(t, snap.Content, "# PRD for A mobile app that identifies plants from photos")
}

func TestNextDoesNotMutateReceiver(t *testing.T) {
	initial := NewInitial("run-1", "idea")
	next := initial.Next(StepDraft, "new content", "some diff")

	require.NotSame(t, initial, next)
	assert.Equal(t, 0, initial.Revision)
	assert.Equal(t, StepOutline, initial.Step)

	assert.Equal(t, 1, next.Revision)
	assert.Equal(t, StepDraft, next.Step)
	assert.Equal(t, "new content", next.Content)
	assert.Equal(t, "some diff", next.Diff)
	assert.Equal(t, "run-1", next.RunID)
}

func TestNextIncrementsByExactlyOne(t *testing.T) {
	cur := NewInitial("run-1", "idea")
	for i := 1; i <= 5; i++ {
		cur = cur.Next(StepCritique, "content", "")
		assert.Equal(t, i, cur.Revision)
	}
}

func TestIdeaFromSeed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "well-formed seed",
			content: "# PRD for A plant identification app\n\n*Initial state.*",
			want:    "A plant identification app",
		},
		{
			name:    "missing heading falls back to whole content",
			content: "just some text",
			want:    "just some text",
		},
		{
			name:    "empty idea falls back to whole content",
			content: "# PRD for \n\n*Initial state.*",
			want:    "# PRD for \n\n*Initial state.*",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IdeaFromSeed(tt.content))
		})
	}
}

func TestStepTerminal(t *testing.T) {
	assert.True(t, StepComplete.Terminal())
	assert.True(t, StepError.Terminal())
	assert.False(t, StepOutline.Terminal())
	assert.False(t, StepCritique.Terminal())
}

func TestStepValid(t *testing.T) {
	for _, s := range []Step{StepOutline, StepResearch, StepDraft, StepCritique, StepRevise, StepComplete, StepError} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, Step("Published").Valid())
}
