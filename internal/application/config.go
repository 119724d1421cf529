// Package application wires the provider registry, orchestrator,
// aggregation engine, and issuers into the service facade the HTTP layer
// calls, and owns the YAML configuration that describes one deployment.
package application

import (
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Callmedas69/ssa-sub000/internal/domain"
)

// Config is the complete deployment configuration for the attestation
// service, loaded once at startup. Provider descriptors and signing domains
// are fixed at configuration time; nothing is recomposed at runtime.
type Config struct {
	// Providers lists every provider descriptor in registry order. The
	// order is load-bearing: it defines breakdown and payload ordering.
	Providers []ProviderConfig `yaml:"providers" validate:"required,min=1,dive"`

	// Chain describes the RPC endpoint and verifying contracts.
	Chain ChainConfig `yaml:"chain" validate:"required"`

	// Signer configures the attestation signing key.
	Signer SignerConfig `yaml:"signer" validate:"required"`

	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server"`
}

// ProviderConfig is the YAML form of a provider descriptor.
type ProviderConfig struct {
	// ID is the stable registry key for this provider.
	ID string `yaml:"id" validate:"required,min=1,max=64"`

	// OnChainID is the hex-encoded 32-byte identifier the contract
	// registered for this provider. Required when the provider is
	// enabled and scored.
	OnChainID string `yaml:"on_chain_id" validate:"omitempty,len=66,hexadecimal|startswith=0x"`

	// Weight is the provider's share of the weighted index.
	Weight float64 `yaml:"weight" validate:"min=0,max=1"`

	// Normalization selects the raw-score mapping rule.
	Normalization string `yaml:"normalization" validate:"required,oneof=multiply divide none"`

	// Cap is the divisor for the divide rule.
	Cap float64 `yaml:"cap" validate:"omitempty,gt=0"`

	// InputKind states what the adapter consumes.
	InputKind string `yaml:"input_kind" validate:"required,oneof=address derivedId"`

	// DependsOn names the provider supplying the derived input.
	DependsOn string `yaml:"depends_on" validate:"omitempty,min=1"`

	// DerivedField names the metadata key holding the derived input.
	DerivedField string `yaml:"derived_field" validate:"omitempty,min=1"`

	// IncludeInScore controls participation in the weighted index.
	IncludeInScore bool `yaml:"include_in_score"`

	// Enabled toggles the provider.
	Enabled bool `yaml:"enabled"`

	// BaseURL overrides the adapter's API root.
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`

	// APIKeyEnv names the environment variable holding the adapter
	// credential. The credential itself never appears in config files.
	APIKeyEnv string `yaml:"api_key_env" validate:"omitempty,min=1"`
}

// ChainConfig describes the chain the verifying contracts live on.
type ChainConfig struct {
	// RPCURL is the JSON-RPC endpoint for contract reads.
	RPCURL string `yaml:"rpc_url" validate:"required,url"`

	// ChainID is the EVM chain id bound into every signature domain.
	ChainID int64 `yaml:"chain_id" validate:"required,gt=0"`

	// AttestatorAddress is the SocialScoreAttestator contract.
	AttestatorAddress string `yaml:"attestator_address" validate:"required,eth_addr"`

	// ProfileAddress is the ProfileSBT contract.
	ProfileAddress string `yaml:"profile_address" validate:"required,eth_addr"`
}

// SignerConfig configures the signing key source.
type SignerConfig struct {
	// PrivateKeyEnv names the environment variable holding the
	// hex-encoded signing key. A missing key is a startup fault.
	PrivateKeyEnv string `yaml:"private_key_env" validate:"required,min=1"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Listen is the address the server binds, such as ":8080".
	Listen string `yaml:"listen" validate:"omitempty,min=2"`

	// RequestsPerMinute caps per-client request rates. Zero selects a
	// default.
	RequestsPerMinute int `yaml:"requests_per_minute" validate:"omitempty,gt=0"`
}

// LoadConfig reads, decodes, and validates a configuration file.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()
	return ParseConfig(f)
}

// ParseConfig decodes and validates configuration YAML from a reader.
func ParseConfig(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	v := validator.New()
	if err := RegisterValidators(v); err != nil {
		return nil, err
	}
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}
	return &cfg, nil
}

// Descriptors converts the provider configs into domain descriptors in
// file order.
func (c *Config) Descriptors() ([]domain.ProviderDescriptor, error) {
	out := make([]domain.ProviderDescriptor, 0, len(c.Providers))
	for _, p := range c.Providers {
		var onChain domain.ProviderID
		if p.OnChainID != "" {
			decoded, err := decodeProviderID(p.OnChainID)
			if err != nil {
				return nil, fmt.Errorf("provider %q: %w", p.ID, err)
			}
			onChain = decoded
		}
		out = append(out, domain.ProviderDescriptor{
			ID:             p.ID,
			OnChainID:      onChain,
			Weight:         p.Weight,
			Normalization:  domain.Normalization(p.Normalization),
			Cap:            p.Cap,
			InputKind:      domain.InputKind(p.InputKind),
			DependsOn:      p.DependsOn,
			DerivedField:   p.DerivedField,
			IncludeInScore: p.IncludeInScore,
			Enabled:        p.Enabled,
		})
	}
	return out, nil
}
