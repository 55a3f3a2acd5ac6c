package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
	"github.com/Senpai-Sama7/Astro-sub000/internal/validation"
)

type Config struct {
	Roles     []RolePolicy   `yaml:"roles"`
	Actions   []ActionPolicy `yaml:"actions"`
	Signing   SigningConfig  `yaml:"signing"`
	Ledger    LedgerConfig   `yaml:"ledger"`
	Approvals ApprovalConfig `yaml:"approvals"`
}

// RolePolicy grants a set of capabilities to a role.
type RolePolicy struct {
	Role         core.Role         `yaml:"role"`
	Capabilities []core.Capability `yaml:"capabilities"`
}

// ActionPolicy configures a single governed action.
type ActionPolicy struct {
	Action           string         `yaml:"action"`
	AllowedRoles     []core.Role    `yaml:"allowed_roles"`
	Classification   core.RiskClass `yaml:"classification"`
	RequiresApproval bool           `yaml:"requires_approval"`
	MaxConcurrent    int            `yaml:"max_concurrent"`
	MaxPerWindow     int            `yaml:"max_per_window"`
	Window           time.Duration  `yaml:"window"`
}

func (a ActionPolicy) Core() core.ActionPolicy {
	return core.ActionPolicy{
		Action:           a.Action,
		AllowedRoles:     a.AllowedRoles,
		Classification:   a.Classification,
		RequiresApproval: a.RequiresApproval,
		MaxConcurrent:    a.MaxConcurrent,
		MaxPerWindow:     a.MaxPerWindow,
		Window:           a.Window,
	}
}

// SigningConfig holds the HMAC keys for the audit ledger. The active
// key signs new entries; retired keys remain available for verifying
// entries written before a rotation.
type SigningConfig struct {
	Active  SigningKey   `yaml:"active"`
	Retired []SigningKey `yaml:"retired,omitempty"`
}

type SigningKey struct {
	ID     string `yaml:"id"`
	Secret string `yaml:"secret"`
}

func (s *SigningConfig) Validate() error {
	if s.Active.ID == "" {
		return fmt.Errorf("signing.active.id is required")
	}
	if s.Active.Secret == "" {
		return fmt.Errorf("signing.active.secret is required")
	}
	seen := map[string]struct{}{s.Active.ID: {}}
	for idx, k := range s.Retired {
		if k.ID == "" || k.Secret == "" {
			return fmt.Errorf("retired key at index %d is incomplete", idx)
		}
		if _, ok := seen[k.ID]; ok {
			return fmt.Errorf("duplicate signing key id %q", k.ID)
		}
		seen[k.ID] = struct{}{}
	}
	return nil
}

// LedgerConfig holds configuration for the audit ledger.
type LedgerConfig struct {
	// Capacity bounds the in-memory ring. Zero means the default.
	Capacity int `yaml:"capacity"`

	// Archive selects where evicted entries go: "file", "sqlite" or
	// "" for memory-only.
	Archive string `yaml:"archive"`
	Path    string `yaml:"path"`

	// OnFailure selects the persistence failure policy: "closed"
	// (default) denies the action when the ledger cannot be written,
	// "open" lets low and medium classifications proceed.
	OnFailure string `yaml:"on_failure"`

	NotifyBuffer int `yaml:"notify_buffer"`
}

func (l *LedgerConfig) Validate() error {
	switch l.Archive {
	case "", "file", "sqlite":
	default:
		return fmt.Errorf("unknown ledger archive %q (expected file, sqlite or empty)", l.Archive)
	}
	if l.Archive != "" && l.Path == "" {
		return fmt.Errorf("ledger.path is required for archive %q", l.Archive)
	}
	switch l.OnFailure {
	case "", "closed", "open":
	default:
		return fmt.Errorf("unknown ledger failure policy %q (expected closed or open)", l.OnFailure)
	}
	if l.Capacity < 0 {
		return fmt.Errorf("ledger.capacity must not be negative")
	}
	return nil
}

// ApprovalConfig holds configuration for pending approvals.
type ApprovalConfig struct {
	// TTL after which an unresolved approval is denied. Zero means
	// the default of 24h.
	TTL time.Duration `yaml:"ttl"`

	// SweepInterval controls how often the expiry task runs.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// Load reads and parses the configuration file at the given path.
// It returns a Config struct or an error if loading/parsing/validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	knownRoles := make(map[core.Role]struct{})
	for idx, r := range c.Roles {
		if r.Role == "" {
			return fmt.Errorf("role at index %d has empty name", idx)
		}
		if _, ok := knownRoles[r.Role]; ok {
			return fmt.Errorf("duplicate role %q", r.Role)
		}
		knownRoles[r.Role] = struct{}{}
	}

	policies := make([]core.ActionPolicy, len(c.Actions))
	for i, a := range c.Actions {
		policies[i] = a.Core()
	}
	if err := validation.ValidateActionPolicies(policies, knownRoles); err != nil {
		return fmt.Errorf("validating actions: %w", err)
	}

	if err := c.Signing.Validate(); err != nil {
		return err
	}
	if err := c.Ledger.Validate(); err != nil {
		return err
	}
	if c.Approvals.TTL < 0 {
		return fmt.Errorf("approvals.ttl must not be negative")
	}
	return nil
}
