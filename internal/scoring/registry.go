// Package scoring holds the provider registry, the fetch orchestrator, and
// the aggregation engine that turns raw provider results into a single
// weighted, tiered index.
package scoring

import (
	"fmt"

	"github.com/Callmedas69/ssa-sub000/internal/domain"
)

// Registry is the immutable set of provider descriptors for one deployment.
// It is constructed once at process start, validated, and passed explicitly
// to the orchestrator and the aggregation engine; nothing looks providers up
// through ambient global state.
//
// Iteration order is registration order. This order is load-bearing: it
// defines breakdown ordering and, through the breakdown, the entry ordering
// of signed payloads.
type Registry struct {
	descriptors []domain.ProviderDescriptor
	byID        map[string]domain.ProviderDescriptor
}

var zeroProviderID domain.ProviderID

// NewRegistry validates the descriptor set and builds a registry from it.
// Validation failures are configuration faults and fatal at startup:
// duplicate ids, weights outside [0,1], a divide rule without a positive
// cap, dependencies on missing or disabled providers, dependency cycles,
// derived-id providers without a dependency or derived field, and enabled
// scored providers without an on-chain id.
func NewRegistry(descriptors []domain.ProviderDescriptor) (*Registry, error) {
	verr := domain.NewValidationError("provider registry")

	byID := make(map[string]domain.ProviderDescriptor, len(descriptors))
	for _, d := range descriptors {
		if d.ID == "" {
			verr.AddError("descriptor with empty id")
			continue
		}
		if _, dup := byID[d.ID]; dup {
			verr.AddError(fmt.Sprintf("duplicate provider id %q", d.ID))
			continue
		}
		byID[d.ID] = d

		if d.Weight < 0 || d.Weight > 1 {
			verr.AddError(fmt.Sprintf("provider %q: weight %v outside [0,1]", d.ID, d.Weight))
		}
		switch d.Normalization {
		case domain.NormalizeMultiply, domain.NormalizeNone:
		case domain.NormalizeDivide:
			if d.Cap <= 0 {
				verr.AddError(fmt.Sprintf("provider %q: divide rule requires cap > 0", d.ID))
			}
		default:
			verr.AddError(fmt.Sprintf("provider %q: unknown normalization %q", d.ID, d.Normalization))
		}
		switch d.InputKind {
		case domain.InputAddress:
		case domain.InputDerivedID:
			if d.DependsOn == "" {
				verr.AddError(fmt.Sprintf("provider %q: derived-id input requires dependsOn", d.ID))
			}
			if d.DerivedField == "" {
				verr.AddError(fmt.Sprintf("provider %q: derived-id input requires derivedField", d.ID))
			}
		default:
			verr.AddError(fmt.Sprintf("provider %q: unknown input kind %q", d.ID, d.InputKind))
		}
		if d.Enabled && d.IncludeInScore && d.OnChainID == zeroProviderID {
			verr.AddError(fmt.Sprintf("provider %q: enabled scored provider missing on-chain id", d.ID))
		}
	}

	for _, d := range descriptors {
		if d.DependsOn == "" {
			continue
		}
		dep, ok := byID[d.DependsOn]
		switch {
		case !ok:
			verr.AddError(fmt.Sprintf("provider %q: dependency %q not registered", d.ID, d.DependsOn))
		case d.Enabled && !dep.Enabled:
			verr.AddError(fmt.Sprintf("provider %q: dependency %q is disabled", d.ID, d.DependsOn))
		case dep.DependsOn != "":
			// Single-level chains only. Nothing in the provider set needs
			// deeper nesting, and a flat rule makes cycles impossible.
			verr.AddError(fmt.Sprintf("provider %q: dependency %q is itself dependent", d.ID, d.DependsOn))
		}
	}

	if verr.HasErrors() {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, verr)
	}

	reg := &Registry{
		descriptors: make([]domain.ProviderDescriptor, len(descriptors)),
		byID:        byID,
	}
	copy(reg.descriptors, descriptors)
	return reg, nil
}

// Descriptors returns every descriptor in registration order. The returned
// slice is a copy and safe to modify.
func (r *Registry) Descriptors() []domain.ProviderDescriptor {
	out := make([]domain.ProviderDescriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Enabled returns the enabled descriptors in registration order.
func (r *Registry) Enabled() []domain.ProviderDescriptor {
	out := make([]domain.ProviderDescriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		if d.Enabled {
			out = append(out, d)
		}
	}
	return out
}

// Scored returns the enabled descriptors that participate in the weighted
// index, in registration order.
func (r *Registry) Scored() []domain.ProviderDescriptor {
	out := make([]domain.ProviderDescriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		if d.Enabled && d.IncludeInScore {
			out = append(out, d)
		}
	}
	return out
}

// Get returns the descriptor for the given provider id.
func (r *Registry) Get(id string) (domain.ProviderDescriptor, error) {
	d, ok := r.byID[id]
	if !ok {
		return domain.ProviderDescriptor{}, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, id)
	}
	return d, nil
}
