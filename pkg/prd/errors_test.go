package prd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := NewError(ErrCodeLLM, "llm call failed")
	assert.Equal(t, "[LLM_ERROR] llm call failed", err.Error())

	err = err.WithStep(StepDraft)
	assert.Equal(t, "[LLM_ERROR] step Draft: llm call failed", err.Error())
}

func TestErrorIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewError(ErrCodeLLM, "llm call failed").WithCause(cause)
	assert.Equal(t, "[LLM_ERROR] llm call failed: connection refused", err.Error())

	err = err.WithStep(StepDraft)
	assert.Equal(t, "[LLM_ERROR] step Draft: llm call failed: connection refused", err.Error())

	// The root cause survives through nested wrapping.
	outer := NewError(ErrCodeInternal, "stage failed").WithStep(StepDraft).WithCause(err)
	assert.Contains(t, outer.Error(), "connection refused")
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewErrorf(ErrCodeStore, "save failed").WithCause(cause).WithRun("run-1")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "run-1", err.RunID)

	var perr *Error
	assert.ErrorAs(t, error(err), &perr)
	assert.Equal(t, ErrCodeStore, perr.Code)
}
