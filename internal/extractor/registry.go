package extractor

import (
	"fmt"
	"strings"
	"time"
)

// DefaultMatchTimeout bounds a single pattern evaluation.
const DefaultMatchTimeout = 250 * time.Millisecond

// Registry resolves inputs to descriptors. It is immutable after
// construction and safe for concurrent use.
type Registry struct {
	ordered  []*Descriptor // non-fallback descriptors in registration order
	fallback *Descriptor
	byKey    map[string]*Descriptor
	handlers map[string]Handler
}

type registryOptions struct {
	handlers       map[string]Handler
	defaultHandler Handler
	matchTimeout   time.Duration
}

// Option configures NewRegistry.
type Option func(*registryOptions)

// WithHandler binds the descriptor with the given key to h.
func WithHandler(key string, h Handler) Option {
	return func(o *registryOptions) {
		o.handlers[key] = h
	}
}

// WithDefaultHandler sets the handler for descriptors without an explicit
// binding. Defaults to SingleEntry.
func WithDefaultHandler(h Handler) Option {
	return func(o *registryOptions) {
		o.defaultHandler = h
	}
}

// WithMatchTimeout bounds each pattern evaluation.
func WithMatchTimeout(d time.Duration) Option {
	return func(o *registryOptions) {
		o.matchTimeout = d
	}
}

// NewRegistry validates descs and compiles their patterns. The fallback
// descriptor may appear anywhere in descs; it is always tried last.
func NewRegistry(descs []Descriptor, opts ...Option) (*Registry, error) {
	o := registryOptions{
		handlers:       make(map[string]Handler),
		defaultHandler: SingleEntry,
		matchTimeout:   DefaultMatchTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{
		byKey:    make(map[string]*Descriptor, len(descs)),
		handlers: make(map[string]Handler, len(descs)),
	}

	for i := range descs {
		d := descs[i]
		d.Patterns = append([]string(nil), descs[i].Patterns...)

		if strings.TrimSpace(d.Key) == "" {
			return nil, fmt.Errorf("descriptor #%d: empty key", i)
		}
		if _, dup := r.byKey[d.Key]; dup {
			return nil, fmt.Errorf("descriptor %s: duplicate key", d.Key)
		}
		if d.Returns == "" {
			d.Returns = ReturnAny
		}
		if !d.Disabled && len(d.Patterns) == 0 {
			return nil, fmt.Errorf("descriptor %s: no patterns (mark it Disabled instead)", d.Key)
		}
		if err := d.compile(o.matchTimeout); err != nil {
			return nil, err
		}

		if d.Fallback {
			if r.fallback != nil {
				return nil, fmt.Errorf("descriptor %s: second fallback (already have %s)", d.Key, r.fallback.Key)
			}
			if d.Override.Kind != OverrideDefault {
				return nil, fmt.Errorf("descriptor %s: fallback cannot carry an override", d.Key)
			}
			r.fallback = &d
		} else {
			r.ordered = append(r.ordered, &d)
		}
		r.byKey[d.Key] = &d
	}

	if r.fallback == nil {
		return nil, fmt.Errorf("registry has no fallback descriptor")
	}
	if err := r.validateOverrides(); err != nil {
		return nil, err
	}

	for key := range o.handlers {
		if _, ok := r.byKey[key]; !ok {
			return nil, fmt.Errorf("handler bound to unknown descriptor %s", key)
		}
	}
	for key := range r.byKey {
		h, ok := o.handlers[key]
		if !ok || h == nil {
			h = o.defaultHandler
		}
		if h == nil {
			return nil, fmt.Errorf("descriptor %s: no handler", key)
		}
		r.handlers[key] = h
	}

	return r, nil
}

// MustNewRegistry is NewRegistry for static tables; it panics on error.
func MustNewRegistry(descs []Descriptor, opts ...Option) *Registry {
	r, err := NewRegistry(descs, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) validateOverrides() error {
	for _, d := range r.ordered {
		if d.Override.Kind != OverrideDeferTo {
			continue
		}
		seen := map[string]bool{d.Key: true}
		target := d.Override.Target
		for {
			t, ok := r.byKey[target]
			if !ok {
				return fmt.Errorf("descriptor %s: defers to unknown descriptor %q", d.Key, target)
			}
			if seen[target] {
				return fmt.Errorf("descriptor %s: deferral cycle through %s", d.Key, target)
			}
			if t.Override.Kind != OverrideDeferTo {
				break
			}
			seen[target] = true
			target = t.Override.Target
		}
	}
	return nil
}

// Resolve returns the descriptor responsible for input. It never fails: the
// fallback is returned when nothing else claims the input.
func (r *Registry) Resolve(input string) *Descriptor {
	for _, d := range r.ordered {
		if r.suitable(d, input) {
			return d
		}
	}
	return r.fallback
}

// Suitable evaluates the predicate of the descriptor with the given key.
// Unknown keys are never suitable; the fallback is always suitable.
func (r *Registry) Suitable(key, input string) bool {
	d, ok := r.byKey[key]
	if !ok {
		return false
	}
	if d.Fallback {
		return true
	}
	return r.suitable(d, input)
}

func (r *Registry) suitable(d *Descriptor, input string) bool {
	if d.Disabled {
		return false
	}

	switch d.Override.Kind {
	case OverridePreferIfCollectionContext:
		if strings.Contains(input, CollectionMarker) && !strings.Contains(input, ItemMarker) {
			return false
		}
	case OverrideRejectIfItemInCollectionContext:
		if strings.Contains(input, CollectionMarker) && strings.Contains(input, ItemMarker) {
			return false
		}
	case OverrideDeferTo:
		if r.Suitable(d.Override.Target, input) {
			return false
		}
	}

	return d.matchBase(input)
}

// Lookup returns the descriptor with the given key.
func (r *Registry) Lookup(key string) (*Descriptor, bool) {
	d, ok := r.byKey[key]
	return d, ok
}

// Fallback returns the catch-all descriptor.
func (r *Registry) Fallback() *Descriptor {
	return r.fallback
}

// Descriptors returns every descriptor in resolution order, fallback last.
func (r *Registry) Descriptors() []*Descriptor {
	out := make([]*Descriptor, 0, len(r.ordered)+1)
	out = append(out, r.ordered...)
	return append(out, r.fallback)
}

// Handler returns the implementation bound to d.
func (r *Registry) Handler(d *Descriptor) Handler {
	if h, ok := r.handlers[d.Key]; ok {
		return h
	}
	return SingleEntry
}
