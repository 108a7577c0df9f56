package instances

import (
	"strings"
	"sync"

	"llmlauncher/pkg/types"
)

// Store is the in-memory collection of configured instances keyed by name.
// Iteration order is insertion order, which is the order results are shown.
type Store struct {
	mu       sync.RWMutex
	hookMu   sync.Mutex
	order    []string
	items    map[string]Instance
	prompts  types.PromptPair
	onChange func(Snapshot)
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{items: make(map[string]Instance)}
}

// OnChange installs a hook invoked with a fresh snapshot after every
// successful mutation. Restore does not fire it.
func (s *Store) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Add inserts a new instance. The name must not already exist.
func (s *Store) Add(inst Instance) error {
	if err := checkInstance(inst); err != nil {
		return err
	}
	s.mu.Lock()
	if _, ok := s.items[inst.Name]; ok {
		s.mu.Unlock()
		return ErrDuplicateName(inst.Name)
	}
	s.items[inst.Name] = inst.clone()
	s.order = append(s.order, inst.Name)
	s.mu.Unlock()
	s.changed()
	return nil
}

// Update replaces the properties of an existing instance. The stored name and
// family are kept; only property values change.
func (s *Store) Update(name string, inst Instance) error {
	s.mu.Lock()
	cur, ok := s.items[name]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound(name)
	}
	next := inst.clone()
	next.Name = cur.Name
	next.Family = cur.Family
	s.items[name] = next
	s.mu.Unlock()
	s.changed()
	return nil
}

// Remove deletes an instance. Removing a missing name is a no-op.
func (s *Store) Remove(name string) {
	s.mu.Lock()
	if _, ok := s.items[name]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.items, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.changed()
}

// Get returns a copy of the named instance.
func (s *Store) Get(name string) (Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.items[name]
	if !ok {
		return Instance{}, ErrNotFound(name)
	}
	return inst.clone(), nil
}

// List returns copies of all instances in insertion order.
func (s *Store) List() []Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked()
}

// Len returns the number of stored instances.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// SetProperty overwrites a single property value of a stored instance.
// Writing the value already stored is not a mutation and fires no hook.
func (s *Store) SetProperty(name, key, value string) error {
	s.mu.Lock()
	inst, ok := s.items[name]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound(name)
	}
	if cur, had := inst.Properties[key]; had && cur == value {
		s.mu.Unlock()
		return nil
	}
	inst = inst.clone()
	inst.Properties[key] = value
	s.items[name] = inst
	s.mu.Unlock()
	s.changed()
	return nil
}

// Prompts returns the last recorded prompt pair.
func (s *Store) Prompts() types.PromptPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prompts
}

// SetPrompts records the prompt pair of the latest round.
func (s *Store) SetPrompts(p types.PromptPair) {
	s.mu.Lock()
	if s.prompts == p {
		s.mu.Unlock()
		return
	}
	s.prompts = p
	s.mu.Unlock()
	s.changed()
}

// Snapshot returns the serializable state of the store.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Instances: s.listLocked(), Prompts: s.prompts}
}

// Restore replaces the store content with snap. The snapshot is validated
// first; on error the store is left untouched.
func (s *Store) Restore(snap Snapshot) error {
	items := make(map[string]Instance, len(snap.Instances))
	order := make([]string, 0, len(snap.Instances))
	for _, inst := range snap.Instances {
		if err := checkInstance(inst); err != nil {
			return err
		}
		if _, dup := items[inst.Name]; dup {
			return invalidInstanceError{msg: "duplicate name in snapshot: " + inst.Name}
		}
		items[inst.Name] = inst.clone()
		order = append(order, inst.Name)
	}
	s.mu.Lock()
	s.items = items
	s.order = order
	s.prompts = snap.Prompts
	s.mu.Unlock()
	return nil
}

func (s *Store) listLocked() []Instance {
	out := make([]Instance, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, s.items[n].clone())
	}
	return out
}

// changed delivers a snapshot to the hook. hookMu spans both the snapshot
// and the call, so deliveries happen in order and the last one always
// carries the latest state.
func (s *Store) changed() {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn == nil {
		return
	}
	fn(s.Snapshot())
}

func checkInstance(inst Instance) error {
	if strings.TrimSpace(inst.Name) == "" {
		return invalidInstanceError{msg: "name is required"}
	}
	if strings.TrimSpace(inst.Family) == "" {
		return invalidInstanceError{msg: "family is required for " + inst.Name}
	}
	return nil
}
