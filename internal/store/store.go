// Package store holds twin definitions and instances in memory.
//
// Collections are append-only and mutated by whole-slice replacement, so
// readers always observe a consistent snapshot without holding the lock.
// Nothing is persisted; all state is process-local and volatile.
package store

import (
	"fmt"
	"sync"

	"twinops-sim/internal/twin"
)

// Store is the in-memory entity store.
type Store struct {
	mu          sync.RWMutex
	definitions []twin.Definition
	instances   []twin.Instance
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// AppendDefinition adds a definition. Definitions are immutable once
// appended; there is no update or delete path.
func (s *Store) AppendDefinition(def twin.Definition) error {
	if def.ID == "" {
		return fmt.Errorf("definition id required")
	}
	if !twin.ValidCategory(def.Category) {
		return fmt.Errorf("unknown category %q", def.Category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.definitions {
		if d.ID == def.ID {
			return fmt.Errorf("definition %s already exists", def.ID)
		}
	}
	next := make([]twin.Definition, len(s.definitions), len(s.definitions)+1)
	copy(next, s.definitions)
	s.definitions = append(next, def)
	return nil
}

// AppendInstance adds an instance after validating its definition reference
// and every initial property value against the declared schema.
func (s *Store) AppendInstance(inst twin.Instance) error {
	if inst.ID == "" {
		return fmt.Errorf("instance id required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := s.findDefinition(inst.DefinitionID)
	if !ok {
		return fmt.Errorf("instance %s references unknown definition %s", inst.ID, inst.DefinitionID)
	}
	for _, in := range s.instances {
		if in.ID == inst.ID {
			return fmt.Errorf("instance %s already exists", inst.ID)
		}
	}
	for name, val := range inst.Properties {
		spec, ok := def.Properties[name]
		if !ok {
			return fmt.Errorf("instance %s: property %q not declared by %s", inst.ID, name, def.ID)
		}
		if err := spec.Validate(val); err != nil {
			return fmt.Errorf("instance %s: property %q: %w", inst.ID, name, err)
		}
	}

	next := make([]twin.Instance, len(s.instances), len(s.instances)+1)
	copy(next, s.instances)
	s.instances = append(next, inst.Clone())
	return nil
}

// AppendAlert attaches an alert to an instance. The containing collection is
// replaced wholesale so concurrent readers keep their snapshot.
func (s *Store) AppendAlert(instanceID string, alert twin.Alert) error {
	if !twin.ValidSeverity(alert.Severity) {
		return fmt.Errorf("unknown severity %q", alert.Severity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]twin.Instance, len(s.instances))
	found := false
	for i, in := range s.instances {
		if in.ID == instanceID {
			cp := in.Clone()
			cp.Alerts = append(cp.Alerts, alert)
			next[i] = cp
			found = true
			continue
		}
		next[i] = in
	}
	if !found {
		return fmt.Errorf("instance %s not found", instanceID)
	}
	s.instances = next
	return nil
}

// UpdateInstances applies fn to a deep snapshot of the instance collection
// and installs the result, all while holding the write lock. Appends cannot
// interleave between the snapshot and the swap, so a concurrent AppendAlert
// or AppendInstance is never overwritten by the transform. fn must not call
// back into the store.
func (s *Store) UpdateInstances(fn func([]twin.Instance) []twin.Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := make([]twin.Instance, len(s.instances))
	for i, in := range s.instances {
		snap[i] = in.Clone()
	}
	s.instances = fn(snap)
}

// Definitions returns a snapshot copy of all definitions.
func (s *Store) Definitions() []twin.Definition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]twin.Definition, len(s.definitions))
	copy(out, s.definitions)
	return out
}

// Instances returns a deep snapshot of all instances.
func (s *Store) Instances() []twin.Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]twin.Instance, len(s.instances))
	for i, in := range s.instances {
		out[i] = in.Clone()
	}
	return out
}

// FindDefinition looks up a definition by id with a linear scan.
func (s *Store) FindDefinition(id string) (twin.Definition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findDefinition(id)
}

func (s *Store) findDefinition(id string) (twin.Definition, bool) {
	for _, d := range s.definitions {
		if d.ID == id {
			return d, true
		}
	}
	return twin.Definition{}, false
}

// FindInstance looks up an instance by id. A missing id yields no selection,
// never an error.
func (s *Store) FindInstance(id string) (twin.Instance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, in := range s.instances {
		if in.ID == id {
			return in.Clone(), true
		}
	}
	return twin.Instance{}, false
}
