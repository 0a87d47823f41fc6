package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aetherhq/prdgen/internal/prompt"
)

func TestKindOfRecognizesStageTemplates(t *testing.T) {
	assert.Equal(t, KindOutline, KindOf(prompt.Outline("idea")))
	assert.Equal(t, KindDraft, KindOf(prompt.Draft("outline")))
	assert.Equal(t, KindCritique, KindOf(prompt.Critique("draft")))
	assert.Equal(t, KindRevise, KindOf(prompt.Revise("draft", "critique")))
	assert.Equal(t, KindUnknown, KindOf("tell me a joke"))
}

func TestMockClientCountsCalls(t *testing.T) {
	m := NewMockClient()
	ctx := context.Background()

	_, err := m.Generate(ctx, prompt.Outline("idea"))
	require.NoError(t, err)
	_, err = m.Generate(ctx, prompt.Critique("draft"))
	require.NoError(t, err)
	_, err = m.Generate(ctx, prompt.Critique("draft"))
	require.NoError(t, err)

	assert.Equal(t, 1, m.Calls(KindOutline))
	assert.Equal(t, 2, m.Calls(KindCritique))
	assert.Equal(t, 0, m.Calls(KindRevise))
}

func TestMockClientScriptedCritiques(t *testing.T) {
	m := NewMockClient()
	m.ScriptCritiques("No issues found.", "Fix section 2.", "Expand risks.")
	ctx := context.Background()

	first, err := m.Generate(ctx, prompt.Critique("draft"))
	require.NoError(t, err)
	assert.Equal(t, "Fix section 2.", first)

	second, err := m.Generate(ctx, prompt.Critique("draft"))
	require.NoError(t, err)
	assert.Equal(t, "Expand risks.", second)

	third, err := m.Generate(ctx, prompt.Critique("draft"))
	require.NoError(t, err)
	assert.Equal(t, "No issues found.", third)
}

func TestMockClientFailOn(t *testing.T) {
	m := NewMockClient()
	boom := errors.New("boom")
	m.FailOn(KindDraft, boom)

	_, err := m.Generate(context.Background(), prompt.Draft("outline"))
	assert.ErrorIs(t, err, boom)

	_, err = m.Generate(context.Background(), prompt.Outline("idea"))
	assert.NoError(t, err)
}

func TestMockClientDeterministicRevisions(t *testing.T) {
	m := NewMockClient()
	ctx := context.Background()

	first, err := m.Generate(ctx, prompt.Revise("d", "c"))
	require.NoError(t, err)
	second, err := m.Generate(ctx, prompt.Revise("d", "c"))
	require.NoError(t, err)

	assert.Contains(t, first, "v1")
	assert.Contains(t, second, "v2")
	assert.NotEqual(t, first, second)
}
