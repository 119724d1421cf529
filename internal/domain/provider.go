// Package domain contains the pure domain models and types for the score
// attestation pipeline.
package domain

// Normalization identifies the rule that maps a provider's raw score onto
// the common 0-100 scale.
type Normalization string

// Supported normalization rules for provider descriptors.
const (
	// NormalizeMultiply scales a raw 0-1 fraction: min(raw*100, 100).
	NormalizeMultiply Normalization = "multiply"

	// NormalizeDivide scales a raw score capped at Cap: min(raw/cap*100, 100).
	NormalizeDivide Normalization = "divide"

	// NormalizeNone passes a raw score already on the 0-100 scale through,
	// clamped at 100.
	NormalizeNone Normalization = "none"
)

// InputKind identifies what a provider adapter consumes as its fetch input.
type InputKind string

const (
	// InputAddress means the adapter consumes the subject address directly.
	InputAddress InputKind = "address"

	// InputDerivedID means the adapter consumes a value extracted from
	// another provider's result metadata, such as a numeric account id.
	InputDerivedID InputKind = "derivedId"
)

// ProviderID is the 32-byte identifier registered for a provider on the
// attestation contract. The issuer must emit exactly this value for a given
// provider; a mismatch produces a payload the contract silently rejects.
type ProviderID [32]byte

// ProviderDescriptor is the immutable configuration for a single reputation
// provider. Descriptors are assembled into a Registry once at process start
// and never mutated afterwards.
type ProviderDescriptor struct {
	// ID is the stable string key for this provider, unique across the
	// registry.
	ID string

	// OnChainID is the 32-byte identifier the attestation contract knows
	// this provider by. Required for every enabled provider that
	// participates in scoring.
	OnChainID ProviderID

	// Weight is the provider's share of the weighted index, in [0,1].
	// Weights of scored providers need not sum to 1; aggregation
	// rebalances by the total weight actually observed.
	Weight float64

	// Normalization selects the rule mapping raw scores to 0-100.
	Normalization Normalization

	// Cap is the divisor used by the divide rule. Ignored otherwise.
	Cap float64

	// InputKind states whether the adapter consumes the subject address
	// or a derived value from another provider's result.
	InputKind InputKind

	// DependsOn optionally names another provider whose successful result
	// supplies this provider's derived input. Empty means independently
	// fetchable.
	DependsOn string

	// DerivedField names the metadata key on the dependency's result that
	// holds the derived input. Only meaningful when DependsOn is set.
	DerivedField string

	// IncludeInScore controls whether this provider participates in the
	// weighted index. Providers with IncludeInScore false are still
	// fetched and reported, but excluded from scoring and from signed
	// payloads; used for the sybil-resistance signal.
	IncludeInScore bool

	// Enabled toggles the provider. Disabled providers are skipped
	// entirely.
	Enabled bool
}

// Independent reports whether the provider can be fetched without waiting
// on another provider's result.
func (d ProviderDescriptor) Independent() bool { return d.DependsOn == "" }
