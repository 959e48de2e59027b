package schema

import "errors"

var (
	// ErrInvalidOrchestration indicates a malformed orchestration record.
	ErrInvalidOrchestration = errors.New("invalid orchestration")
	// ErrNoOrchestration indicates no orchestration has completed yet.
	ErrNoOrchestration = errors.New("no completed orchestration")
	// ErrExportPath indicates the export file name resolved to nothing usable.
	ErrExportPath = errors.New("invalid export path")
	// ErrSessionClosed indicates the terminal session has been disposed.
	ErrSessionClosed = errors.New("session closed")
)
