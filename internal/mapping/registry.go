package mapping

import (
	"strings"
	"sync/atomic"
)

// snapshot is an immutable view of every loaded configuration
type snapshot struct {
	ordered   []*Configuration
	byProject map[string][]*Configuration
}

func newSnapshot(cfgs []*Configuration) *snapshot {
	s := &snapshot{
		ordered:   cfgs,
		byProject: make(map[string][]*Configuration),
	}
	for _, c := range cfgs {
		s.byProject[c.ProjectID] = append(s.byProject[c.ProjectID], c)
	}
	return s
}

// Registry owns the loaded configurations. Reloads replace the whole set
// with one atomic swap, so rounds in flight keep reading the set they
// started with.
type Registry struct {
	current atomic.Pointer[snapshot]
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	r := &Registry{}
	r.current.Store(newSnapshot(nil))
	return r
}

// Load parses data and, when it is valid, replaces the registry contents.
// An invalid document leaves the registry untouched.
func (r *Registry) Load(data []byte) error {
	cfgs, err := Parse(data)
	if err != nil {
		return err
	}
	r.Replace(cfgs)
	return nil
}

// Replace swaps in a new set of configurations
func (r *Registry) Replace(cfgs []*Configuration) {
	r.current.Store(newSnapshot(cfgs))
}

// Configurations returns the loaded configurations in document order
func (r *Registry) Configurations() []*Configuration {
	s := r.current.Load()
	out := make([]*Configuration, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// Len returns the number of loaded configurations
func (r *Registry) Len() int {
	return len(r.current.Load().ordered)
}

func (r *Registry) lookup(projectID, issueTypeID string) (*Configuration, bool) {
	for _, c := range r.current.Load().byProject[projectID] {
		if c.AppliesTo(issueTypeID) {
			return c, true
		}
	}
	return nil, false
}

// Resolver finds the configuration that applies to an issue
type Resolver struct {
	registry *Registry
}

// NewResolver returns a resolver reading from registry
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve returns the configuration for a project and issue type. Missing
// identifiers, unconfigured pairs and configurations without any mapping all
// resolve to (nil, false); none of them is an error.
func (r *Resolver) Resolve(projectID, issueTypeID string) (*Configuration, bool) {
	if r == nil || r.registry == nil {
		return nil, false
	}
	projectID = strings.TrimSpace(projectID)
	issueTypeID = strings.TrimSpace(issueTypeID)
	if projectID == "" || issueTypeID == "" {
		return nil, false
	}
	cfg, ok := r.registry.lookup(projectID, issueTypeID)
	if !ok || !cfg.IsConfigured() {
		return nil, false
	}
	return cfg, true
}
