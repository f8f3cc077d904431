package parser

import (
	"errors"
	"fmt"
)

// Registry maps domains to extractors. It is immutable once built and
// safe for concurrent use.
type Registry struct {
	extractors []Extractor
	byDomain   map[string]Extractor
}

// NewRegistry builds a registry from exts in order. Any invalid or
// duplicate entry fails the whole build.
func NewRegistry(exts ...Extractor) (*Registry, error) {
	r, err := NewRegistryLenient(exts...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// NewRegistryLenient builds a registry from the valid entries of exts. The
// rejected entries are reported together in the returned error; the
// registry is usable either way.
func NewRegistryLenient(exts ...Extractor) (*Registry, error) {
	r := &Registry{byDomain: make(map[string]Extractor, len(exts))}
	var errs []error
	for i, ext := range exts {
		if ext == nil {
			errs = append(errs, fmt.Errorf("%w: extractor %d is nil", ErrInvalidDescriptor, i))
			continue
		}
		d := ext.Descriptor()
		if err := d.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if prev, ok := r.byDomain[d.Domain]; ok {
			errs = append(errs, fmt.Errorf("%w: %s claimed by %q and %q",
				ErrDuplicateDomain, d.Domain, prev.Descriptor().Name, d.Name))
			continue
		}
		r.byDomain[d.Domain] = ext
		r.extractors = append(r.extractors, ext)
	}
	return r, errors.Join(errs...)
}

// Find returns the extractor registered for the domain of rawURL.
func (r *Registry) Find(rawURL string) (Extractor, bool) {
	domain, ok := ExtractDomain(rawURL)
	if !ok {
		return nil, false
	}
	ext, ok := r.byDomain[domain]
	return ext, ok
}

// Extractors returns the registered extractors in registration order.
func (r *Registry) Extractors() []Extractor {
	out := make([]Extractor, len(r.extractors))
	copy(out, r.extractors)
	return out
}

// Descriptors returns the descriptors of the registered extractors.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.extractors))
	for _, ext := range r.extractors {
		out = append(out, ext.Descriptor())
	}
	return out
}

func (r *Registry) Len() int { return len(r.extractors) }
