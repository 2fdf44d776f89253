package directive

import (
	"regexp"
	"sort"
	"sync"

	"git.home.luguber.info/inful/docmd/internal/foundation/errors"
)

// RenderFunc renders one boundary of a directive. params is the raw text that
// followed the directive name on the fence line, passed through verbatim.
// Self-closing directives are rendered once with NestingSelf.
type RenderFunc func(n Nesting, params string) string

// Definition describes a registered directive.
type Definition struct {
	Name        string
	Kind        Kind
	SelfClosing bool
	Render      RenderFunc
}

var validName = regexp.MustCompile(`^\w+$`)

// Registry maps directive names to definitions.
//
// A Registry is filled at startup and frozen when an Engine takes it; after
// that it is only read, so it can be shared by concurrent renders.
type Registry struct {
	mu     sync.RWMutex
	defs   map[string]Definition
	frozen bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// DefaultRegistry returns a registry holding the built-in directives:
// card, callout, button (self-closing), steps, collapsible and changelog.
// tabs is handled by the pane splitter and is not a registry entry.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, def := range builtinDefinitions() {
		// Built-in definitions are valid and unique.
		_ = r.Register(def)
	}
	return r
}

// Register adds a directive definition.
func (r *Registry) Register(def Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return errors.NewError(errors.CategoryValidation, "directive registry is frozen").
			WithContext("directive", def.Name).
			Build()
	}
	if !validName.MatchString(def.Name) {
		return errors.NewError(errors.CategoryValidation, "invalid directive name").
			WithContext("directive", def.Name).
			Build()
	}
	if def.Name == KindTabs.String() {
		return errors.NewError(errors.CategoryValidation, "tabs is reserved for the pane splitter").
			WithContext("directive", def.Name).
			Build()
	}
	if def.Render == nil {
		return errors.NewError(errors.CategoryValidation, "directive has no render function").
			WithContext("directive", def.Name).
			Build()
	}
	if _, exists := r.defs[def.Name]; exists {
		return errors.NewError(errors.CategoryValidation, "directive already registered").
			WithContext("directive", def.Name).
			Build()
	}
	if def.Kind == KindCustom {
		def.Kind = KindOf(def.Name)
	}
	r.defs[def.Name] = def
	return nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// Freeze rejects all further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// selfClosing reports whether name is a registered self-closing directive.
func (r *Registry) selfClosing(name string) bool {
	def, ok := r.Lookup(name)
	return ok && def.SelfClosing
}
