package schema

import (
	"fmt"
	"strings"
	"unicode"
)

// NormalizeAgentName upper-cases and validates an agent call sign.
func NormalizeAgentName(name string) (AgentName, error) {
	trimmed := AgentName(strings.ToUpper(strings.TrimSpace(name)))
	if trimmed == "" || !KnownAgent(trimmed) {
		return "", fmt.Errorf("%w: unknown agent %q", ErrInvalidOrchestration, name)
	}
	return trimmed, nil
}

// ValidateOrchestrationID ensures an id matches [A-Za-z0-9._-] with no normalization.
func ValidateOrchestrationID(id OrchestrationID) error {
	raw := string(id)
	if raw == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidOrchestration)
	}
	for _, r := range raw {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			continue
		}
		if r == '.' || r == '_' || r == '-' {
			continue
		}
		return fmt.Errorf("%w: bad id %q", ErrInvalidOrchestration, raw)
	}
	return nil
}

// ValidateOrchestration checks the fields every stored record must carry.
func ValidateOrchestration(record Orchestration) error {
	if err := ValidateOrchestrationID(record.ID); err != nil {
		return err
	}
	if strings.TrimSpace(record.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidOrchestration)
	}
	if record.Agent != "" && !KnownAgent(record.Agent) {
		return fmt.Errorf("%w: unknown agent %q", ErrInvalidOrchestration, record.Agent)
	}
	for i, step := range record.Chain {
		if strings.TrimSpace(step.Tool) == "" {
			return fmt.Errorf("%w: chain step %d has no tool", ErrInvalidOrchestration, i)
		}
	}
	return nil
}

// NormalizeOrchestration trims text fields, upper-cases the agent and
// validates the result. The id is left untouched.
func NormalizeOrchestration(record Orchestration) (Orchestration, error) {
	record.Name = strings.TrimSpace(record.Name)
	record.Brief = strings.TrimSpace(record.Brief)
	if record.Agent != "" {
		agent, err := NormalizeAgentName(string(record.Agent))
		if err != nil {
			return Orchestration{}, err
		}
		record.Agent = agent
	}
	if err := ValidateOrchestration(record); err != nil {
		return Orchestration{}, err
	}
	return record, nil
}
