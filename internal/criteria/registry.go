package criteria

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/nao1215/a11yscan/internal/model"
)

// ErrInvalidArgument is returned when a scan is requested for an empty or
// unknown tag.
var ErrInvalidArgument = errors.New("invalid argument")

// AvailableTags is the allow-list of tags that can be scanned.
var AvailableTags = []string{"10.*", "10.1", "10.5"}

// Registry maps tags to criteria. Only allowed tags can be dispatched, even
// when a criteria is registered under another tag. A Registry is immutable
// once built.
type Registry struct {
	allowed  map[string]bool
	criteria map[string]Criteria
	tags     []string
}

// NewRegistry builds a registry restricted to the allowed tags.
func NewRegistry(allowed []string, all ...Criteria) *Registry {
	r := &Registry{
		allowed:  make(map[string]bool, len(allowed)),
		criteria: make(map[string]Criteria, len(all)),
	}
	for _, tag := range allowed {
		r.allowed[tag] = true
	}
	for _, c := range all {
		r.criteria[c.Tag()] = c
	}
	for tag := range r.allowed {
		if _, ok := r.criteria[tag]; ok {
			r.tags = append(r.tags, tag)
		}
	}
	sort.Strings(r.tags)
	return r
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the registry of the built-in criteria. It is built on
// first use and shared afterwards.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry(AvailableTags,
			NewTheme10(),
			NewPresentationMarkup(),
			NewStyleConsistency(),
		)
	})
	return defaultRegistry
}

// Tags returns the tags that can be dispatched, sorted.
func (r *Registry) Tags() []string {
	return append([]string(nil), r.tags...)
}

// TagList returns the dispatchable tags as a comma separated list.
func (r *Registry) TagList() string {
	return strings.Join(r.tags, ", ")
}

// Lookup returns the criteria dispatched for tag. The error wraps
// ErrInvalidArgument when tag is empty or not allowed.
func (r *Registry) Lookup(tag string) (Criteria, error) {
	if tag == "" {
		return nil, fmt.Errorf("%w: you must specify a criteria tag; tags available: %s", ErrInvalidArgument, r.TagList())
	}
	c, ok := r.criteria[tag]
	if !r.allowed[tag] || !ok {
		return nil, fmt.Errorf("%w: criteria %q is not implemented; tags available: %s", ErrInvalidArgument, tag, r.TagList())
	}
	return c, nil
}

// Scan invokes the criteria registered under tag.
func (r *Registry) Scan(tag string, env Env, opts ExecuteOptions) (*model.Result, error) {
	c, err := r.Lookup(tag)
	if err != nil {
		return nil, err
	}
	return Invoke(c, env, opts)
}
