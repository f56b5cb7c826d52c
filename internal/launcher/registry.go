package launcher

import (
	"sort"
	"sync"
)

// Registry holds the programs the dispatcher may start or stop.
type Registry struct {
	programs map[string]*Program
	mu       sync.RWMutex
}

// NewRegistry creates a Registry containing programs.
func NewRegistry(programs ...Program) *Registry {
	r := &Registry{
		programs: make(map[string]*Program),
	}
	for _, p := range programs {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a program by name.
func (r *Registry) Register(p Program) {
	r.mu.Lock()
	defer r.mu.Unlock()

	program := p
	r.programs[p.Name] = &program
}

// Get returns a program by name.
// Returns ErrProgramNotFound if the program does not exist.
func (r *Registry) Get(name string) (*Program, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	program, ok := r.programs[name]
	if !ok {
		return nil, ErrProgramNotFound
	}

	return program, nil
}

// List returns all registered programs sorted by name.
func (r *Registry) List() []*Program {
	r.mu.RLock()
	defer r.mu.RUnlock()

	programs := make([]*Program, 0, len(r.programs))
	for _, p := range r.programs {
		programs = append(programs, p)
	}
	sort.Slice(programs, func(i, j int) bool {
		return programs[i].Name < programs[j].Name
	})

	return programs
}
