package orchestra

import (
	"errors"
	"fmt"
	"strings"
)

// AgentSpec describes one specialised responder: who it is (Persona), which model runs it
// (ModelRef), and the signals routers use to pick it.
//
// AgentSpec values are built once at startup and never mutated.
type AgentSpec struct {
	// Name is the unique identifier. The model-mediated router asks the controller model
	// to answer with this name.
	Name string `yaml:"name"`

	// Title is an optional display name such as "Dr. Code". Routers accept it as an
	// alias of Name.
	Title string `yaml:"title,omitempty"`

	// Persona is the system prompt of the agent.
	Persona string `yaml:"persona"`

	// ModelRef is an opaque handle resolved through a ModelSet.
	ModelRef string `yaml:"model"`

	// Keywords are matched as substrings of the lower-cased request by the keyword router.
	Keywords []string `yaml:"keywords"`

	// Specialties are listed in the controller prompt by the model-mediated router.
	Specialties []string `yaml:"specialties"`
}

// Registry is the read-only catalog of agents with a designated default.
//
// Once built, a Registry is never mutated and is safe for concurrent readers.
type Registry struct {
	agents []AgentSpec
	byName map[string]int
	byFold map[string]int
	def    int
}

// NewRegistry builds a registry from agents in catalog order. defaultName must name one
// of them; it is selected whenever a router cannot make a confident choice.
func NewRegistry(defaultName string, agents ...AgentSpec) (*Registry, error) {
	if len(agents) == 0 {
		return nil, errors.New("orchestra: registry needs at least one agent")
	}

	r := &Registry{
		agents: make([]AgentSpec, 0, len(agents)),
		byName: make(map[string]int, len(agents)),
		byFold: make(map[string]int, len(agents)*2),
		def:    -1,
	}
	for _, a := range agents {
		if strings.TrimSpace(a.Name) == "" {
			return nil, errors.New("orchestra: agent name must not be empty")
		}
		if _, dup := r.byName[a.Name]; dup {
			return nil, fmt.Errorf("orchestra: duplicate agent name %q", a.Name)
		}
		r.byName[a.Name] = len(r.agents)
		r.agents = append(r.agents, copyAgent(a))
	}
	// Names take precedence over titles, earlier agents over later ones.
	for i, a := range r.agents {
		if _, taken := r.byFold[fold(a.Name)]; !taken {
			r.byFold[fold(a.Name)] = i
		}
	}
	for i, a := range r.agents {
		if a.Title == "" {
			continue
		}
		if _, taken := r.byFold[fold(a.Title)]; !taken {
			r.byFold[fold(a.Title)] = i
		}
	}

	idx, ok := r.byName[defaultName]
	if !ok {
		return nil, fmt.Errorf("%w: default %q", ErrUnknownAgent, defaultName)
	}
	r.def = idx
	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on error.
// Use this for catalogs defined at init time.
func MustNewRegistry(defaultName string, agents ...AgentSpec) *Registry {
	r, err := NewRegistry(defaultName, agents...)
	if err != nil {
		panic(err)
	}
	return r
}

// Agents returns all agents in catalog order.
func (r *Registry) Agents() []AgentSpec {
	out := make([]AgentSpec, len(r.agents))
	for i, a := range r.agents {
		out[i] = copyAgent(a)
	}
	return out
}

// Len returns the number of agents.
func (r *Registry) Len() int {
	return len(r.agents)
}

// Lookup returns the agent with the given name.
func (r *Registry) Lookup(name string) (AgentSpec, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return AgentSpec{}, false
	}
	return copyAgent(r.agents[idx]), true
}

// Match resolves a label produced by a model to an agent. It tries the exact name
// first, then a case-insensitive comparison against names and titles. Surrounding
// whitespace, quotes, brackets and markdown emphasis are ignored.
func (r *Registry) Match(label string) (AgentSpec, bool) {
	label = strings.Trim(strings.TrimSpace(label), "[]*\"'`")
	label = strings.TrimSpace(label)
	if label == "" {
		return AgentSpec{}, false
	}
	if a, ok := r.Lookup(label); ok {
		return a, true
	}
	idx, ok := r.byFold[fold(label)]
	if !ok {
		return AgentSpec{}, false
	}
	return copyAgent(r.agents[idx]), true
}

// Default returns the designated default agent.
func (r *Registry) Default() AgentSpec {
	return copyAgent(r.agents[r.def])
}

// Names returns agent names in catalog order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.agents))
	for i, a := range r.agents {
		names[i] = a.Name
	}
	return names
}

// DisplayName returns Title when set and Name otherwise.
func (a AgentSpec) DisplayName() string {
	if a.Title != "" {
		return a.Title
	}
	return a.Name
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func copyAgent(a AgentSpec) AgentSpec {
	a.Keywords = append([]string(nil), a.Keywords...)
	a.Specialties = append([]string(nil), a.Specialties...)
	return a
}
