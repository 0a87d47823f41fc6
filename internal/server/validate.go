package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/aetherhq/prdgen/pkg/prd"
)

// generateSchemaJSON is the JSON Schema for GenerateRequest validation.
// Embedded as a constant to avoid filesystem dependencies.
const generateSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://prdgen.dev/schemas/generate.json",
  "type": "object",
  "required": ["idea"],
  "properties": {
    "idea": {
      "type": "string",
      "minLength": 1,
      "maxLength": 4000
    },
    "provider": {
      "type": "string",
      "enum": ["openai", "mock"]
    },
    "model": {
      "type": "string",
      "minLength": 1
    }
  },
  "additionalProperties": false
}`

// requestValidator validates generate requests against the embedded schema.
// Safe for concurrent use.
type requestValidator struct {
	schema *jsonschema.Schema
}

func newRequestValidator() (*requestValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(generateSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal generate schema: %w", err)
	}
	if err := c.AddResource("https://prdgen.dev/schemas/generate.json", doc); err != nil {
		return nil, fmt.Errorf("add generate schema resource: %w", err)
	}
	compiled, err := c.Compile("https://prdgen.dev/schemas/generate.json")
	if err != nil {
		return nil, fmt.Errorf("compile generate schema: %w", err)
	}
	return &requestValidator{schema: compiled}, nil
}

// decodeAndValidate reads the request body, checks it against the schema and
// decodes it into a GenerateRequest.
func decodeAndValidate(v *requestValidator, r *http.Request) (*GenerateRequest, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return nil, prd.NewError(prd.ErrCodeValidation, "read request body").WithCause(err)
	}

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(raw)))
	if err != nil {
		return nil, prd.NewError(prd.ErrCodeValidation, "request body is not valid JSON").WithCause(err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return nil, toValidationError(err)
	}

	var req GenerateRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, prd.NewError(prd.ErrCodeValidation, "decode request body").WithCause(err)
	}
	return &req, nil
}

// toValidationError converts a jsonschema.ValidationError into a structured
// error with the leaf violations listed for actionable feedback.
func toValidationError(err error) *prd.Error {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return prd.NewError(prd.ErrCodeValidation, err.Error())
	}
	violations := collectViolations(verr)
	if len(violations) == 1 {
		return prd.NewError(prd.ErrCodeValidation, violations[0])
	}
	return prd.NewErrorf(prd.ErrCodeValidation, "validation failed: %s", strings.Join(violations, "; "))
}

// collectViolations walks a ValidationError tree and collects leaf messages
// with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}
	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
