// Package orchestration keeps the record of the most recently completed
// orchestration run, shared by every terminal session.
package orchestration

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"pkt.systems/agentnexus/schema"
	"pkt.systems/pslog"
)

// Registry is a thread-safe holder of the last completed orchestration.
type Registry struct {
	mu    sync.RWMutex
	last  schema.Orchestration
	has   bool
	log   pslog.Logger
	now   func() time.Time
	newID func() schema.OrchestrationID
}

// NewRegistry constructs an empty registry.
func NewRegistry(logger pslog.Logger) *Registry {
	return &Registry{
		log: logger,
		now: time.Now,
		newID: func() schema.OrchestrationID {
			return schema.OrchestrationID(uuid.NewString())
		},
	}
}

// Complete records record as the last completed orchestration. An empty id is
// assigned and a zero completion time is stamped with the current time.
func (r *Registry) Complete(record schema.Orchestration) (schema.Orchestration, error) {
	if record.ID == "" {
		record.ID = r.newID()
	}
	if record.CompletedAt.IsZero() {
		record.CompletedAt = r.now().UTC()
	}
	record, err := schema.NormalizeOrchestration(record)
	if err != nil {
		return schema.Orchestration{}, err
	}
	record = clone(record)

	r.mu.Lock()
	r.last = record
	r.has = true
	r.mu.Unlock()

	if r.log != nil {
		r.log.Info("orchestration completed", "orchestration", record.ID, "name", record.Name, "steps", len(record.Chain))
	}
	return clone(record), nil
}

// LastCompleted returns a copy of the last completed orchestration.
func (r *Registry) LastCompleted() (schema.Orchestration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.has {
		return schema.Orchestration{}, false
	}
	return clone(r.last), true
}

// Reset forgets the last completed orchestration.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.last = schema.Orchestration{}
	r.has = false
	r.mu.Unlock()
}

func clone(record schema.Orchestration) schema.Orchestration {
	if record.Chain == nil {
		return record
	}
	chain := make([]schema.ChainStep, len(record.Chain))
	for i, step := range record.Chain {
		if step.Params != nil {
			params := make(map[string]string, len(step.Params))
			for k, v := range step.Params {
				params[k] = v
			}
			step.Params = params
		}
		chain[i] = step
	}
	record.Chain = chain
	return record
}
