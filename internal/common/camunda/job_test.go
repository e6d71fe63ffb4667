package camunda

import (
	stderrors "errors"
	"testing"

	"crew-workers/internal/common/errors"
	"crew-workers/internal/common/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decodeInput struct {
	AssignmentID string `json:"assignmentId"`
	CrewID       string `json:"crewId"`
}

var decodeSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["assignmentId", "crewId"],
  "properties": {
    "assignmentId": {"type": "string", "minLength": 1},
    "crewId": {"type": "string", "minLength": 1}
  }
}`)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		vars     string
		wantCode errors.ErrorCode
	}{
		{"valid", `{"assignmentId":"a-1","crewId":"c-1","extra":true}`, ""},
		{"missing field", `{"assignmentId":"a-1"}`, errors.ErrCodeValidationFailed},
		{"empty variables", ``, errors.ErrCodeValidationFailed},
		{"malformed", `{"assignmentId":`, errors.ErrCodeInputParsingFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := Decode[decodeInput](decodeSchema, tt.vars)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, "a-1", input.AssignmentID)
				assert.Equal(t, "c-1", input.CrewID)
				return
			}
			require.Error(t, err)
			var stdErr *errors.StandardError
			require.True(t, stderrors.As(err, &stdErr))
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}

func TestDecode_WithoutSchema(t *testing.T) {
	input, err := Decode[decodeInput](nil, `{"crewId":"c-9"}`)
	require.NoError(t, err)
	assert.Equal(t, "c-9", input.CrewID)
}
