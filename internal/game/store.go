// internal/game/store.go
package game

import "sync"

// Factory builds a game instance for a given name on first use.
type Factory func(name string) Instance

// Store lazily creates and caches game instances by name, one instance per
// configured game. Factories are registered at boot; unknown names stay
// unknown rather than defaulting.
type Store struct {
	mu        sync.Mutex
	factories map[string]Factory
	instances map[string]Instance
}

func NewStore() *Store {
	return &Store{
		factories: make(map[string]Factory),
		instances: make(map[string]Instance),
	}
}

// RegisterFactory makes name creatable. Registering a name twice replaces
// the factory but not an already-created instance.
func (s *Store) RegisterFactory(name string, f Factory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factories[name] = f
}

// Get returns the instance for name, creating it on first access. ok is
// false when no factory is registered for name.
func (s *Store) Get(name string) (Instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inst, ok := s.instances[name]; ok {
		return inst, true
	}
	f, ok := s.factories[name]
	if !ok {
		return nil, false
	}
	inst := f(name)
	s.instances[name] = inst
	return inst, true
}

// Names lists every registered game name.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.factories))
	for name := range s.factories {
		names = append(names, name)
	}
	return names
}

// Instances lists the instances created so far.
func (s *Store) Instances() []Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	instances := make([]Instance, 0, len(s.instances))
	for _, inst := range s.instances {
		instances = append(instances, inst)
	}
	return instances
}
