package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "required": ["jobId", "crewSize"],
  "properties": {
    "jobId": {"type": "string", "minLength": 1},
    "crewSize": {"type": "integer", "minimum": 1},
    "requiredSkills": {"type": "array", "items": {"type": "string"}}
  }
}`

func TestSchema_Validate(t *testing.T) {
	schema := MustCompile(testSchema)

	tests := []struct {
		name       string
		doc        string
		valid      bool
		errorField string
	}{
		{"valid", `{"jobId":"job-1","crewSize":2,"requiredSkills":["roofing"]}`, true, ""},
		{"missing job id", `{"crewSize":2}`, false, "jobId"},
		{"zero crew size", `{"jobId":"job-1","crewSize":0}`, false, "crewSize"},
		{"skill not a string", `{"jobId":"job-1","crewSize":1,"requiredSkills":[3]}`, false, "requiredSkills"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := schema.Validate([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			if tt.errorField != "" {
				assert.True(t, result.HasErrors(tt.errorField), "errors: %v", result.GetErrorMessages())
			}
		})
	}
}

func TestSchema_ValidateInput(t *testing.T) {
	schema := MustCompile(testSchema)

	result, err := schema.ValidateInput(map[string]interface{}{"jobId": "job-1", "crewSize": 3})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.GetErrorMessages())
}

func TestSchema_MalformedDocument(t *testing.T) {
	schema := MustCompile(testSchema)

	_, err := schema.Validate([]byte(`{not json`))
	assert.Error(t, err)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompile(`{"type": 12}`) })
}
