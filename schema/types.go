package schema

import "time"

// SessionID identifies a terminal session.
type SessionID string

// OrchestrationID identifies a completed orchestration run.
type OrchestrationID string

// AgentName is the call sign of a mock agent (LYRA, KARA, ...).
type AgentName string

// Transport names the channel a terminal session is attached to.
type Transport string

const (
	// TransportSSH is an interactive SSH session.
	TransportSSH Transport = "ssh"
	// TransportWeb is a browser terminal over a websocket.
	TransportWeb Transport = "web"
	// TransportLocal is the invoking TTY.
	TransportLocal Transport = "local"
)

// ChainStep is one tool invocation of a chained bookmark.
type ChainStep struct {
	Tool   string            `json:"tool" yaml:"tool"`
	Input  string            `json:"input" yaml:"input"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Orchestration is the record of a completed orchestration run.
type Orchestration struct {
	ID          OrchestrationID `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Agent       AgentName       `json:"agent,omitempty" yaml:"agent,omitempty"`
	Brief       string          `json:"brief,omitempty" yaml:"brief,omitempty"`
	Chain       []ChainStep     `json:"chain,omitempty" yaml:"chain,omitempty"`
	CompletedAt time.Time       `json:"completed_at" yaml:"completed_at"`
}
