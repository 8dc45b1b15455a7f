package schemas

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSchemasAreJSON(t *testing.T) {
	for name, content := range embedded {
		t.Run(name, func(t *testing.T) {
			var v map[string]any
			require.NoError(t, json.Unmarshal([]byte(content), &v))
			assert.Equal(t, "object", v["type"])
		})
	}
}

func TestValidate_Resume(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"full", `{"full_name":"Ada","skills":["Go","SQL"],"employment_details":[{"company":"Acme"}],"total_experience_years":4}`, false},
		{"minimal", `{"full_name":"Ada"}`, false},
		{"experience as string", `{"full_name":"Ada","total_experience_years":"4+"}`, false},
		{"empty object", `{}`, true},
		{"array root", `["Ada"]`, true},
		{"skills wrong type", `{"full_name":"Ada","skills":"Go"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(Resume, tt.doc)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.NotEmpty(t, ve.Errors)
		})
	}
}

func TestValidate_Match(t *testing.T) {
	assert.NoError(t, Validate(Match, `{"overallMatch":80,"missingKeywords":["k8s"]}`))
	assert.NoError(t, Validate(Match, `{"overallMatch":null,"skillsMatch":"70%","missingKeywords":null}`))
	assert.Error(t, Validate(Match, `{"missingKeywords":"k8s"}`))
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("nope", `{}`)
	var le *SchemaLoadError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, err.Error(), "unknown schema")
}

func TestValidateJSONString_MalformedDocument(t *testing.T) {
	err := ValidateJSONString(`{"type":"object"}`, `{not json`)
	var le *SchemaLoadError
	assert.True(t, errors.As(err, &le))
}

func TestValidationError_Format(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{{Field: "(root)", Message: "Invalid type"}}}
	assert.Contains(t, err.Error(), "1. (root): Invalid type")
}
