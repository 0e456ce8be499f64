package schema

import (
	"fmt"
	"strings"
)

// Issue is one field-level validation diagnostic: the field path, the
// violated constraint, and the value that was received.
type Issue struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
	Value      any    `json:"value,omitempty"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Field, i.Constraint)
}

// ArgumentsError reports that inbound arguments failed validation against a
// tool's declared input shape. Caller-caused.
type ArgumentsError struct {
	Issues []Issue
}

func (e *ArgumentsError) Error() string {
	return fmt.Sprintf("invalid arguments: %s", joinIssues(e.Issues))
}

// ContractError reports that a handler's result failed validation against
// its declared output shape. Server-caused.
type ContractError struct {
	Issues []Issue
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("output contract violation: %s", joinIssues(e.Issues))
}

func joinIssues(issues []Issue) string {
	parts := make([]string, len(issues))
	for i, issue := range issues {
		parts[i] = issue.String()
	}
	return strings.Join(parts, "; ")
}
