package crewbalanceworkload

import (
	"crew-workers/internal/common/validation"
	"crew-workers/internal/crew/balancing"
)

type Input struct {
	WeekStart  string `json:"weekStart"`
	SendReport bool   `json:"sendReport,omitempty"`
}

type Output struct {
	balancing.Result
	ReportSent bool `json:"reportSent"`
}

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["weekStart"],
  "properties": {
    "weekStart": {"type": "string", "minLength": 10},
    "sendReport": {"type": "boolean"}
  }
}`)
