package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Scope modes controlling how seen-announcement ledgers are partitioned.
const (
	// ScopeModeGlobal keeps a single shared ledger for all batches.
	ScopeModeGlobal = "global"

	// ScopeModePerBatch keeps one ledger per tracked batch.
	ScopeModePerBatch = "per-batch"
)

// Ledger driver names.
const (
	LedgerDriverFile     = "file"
	LedgerDriverPostgres = "postgres"
)

// Duration is a time.Duration that (un)marshals as a human-readable string
// ("90s", "5m") in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	if parsed < 0 {
		return fmt.Errorf("duration must be >= 0, got %q", raw)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// RuntimeConfig is the user-editable configuration file. It is reloaded at
// the start of every poll cycle, so edits to the pause flag or the tracked
// batch selection take effect without a restart. Interval changes require a
// restart because the schedule is registered once at startup.
type RuntimeConfig struct {
	// Token is the bearer token used against the learning platform API.
	// Placeholder values (empty or starting with "YOUR_") fail startup.
	Token string `yaml:"token"`

	// TokenExpiresAtMS is an optional advisory expiry for the token, in
	// Unix epoch milliseconds. Zero disables the expiry estimate logging.
	TokenExpiresAtMS int64 `yaml:"token_expires_at_ms,omitempty"`

	// Interval is the delay between poll cycles. Default: 90s.
	Interval Duration `yaml:"interval"`

	// Paused skips poll cycles without stopping the process.
	Paused bool `yaml:"paused"`

	// SelectedBatchIDs is the set of batch IDs to watch. An empty
	// selection fails startup; the batches helper command prints the
	// purchased catalog to choose from.
	SelectedBatchIDs []string `yaml:"selected_batch_ids"`

	// ScopeMode is "global" (one shared seen ledger) or "per-batch"
	// (one ledger per tracked batch). Default: per-batch.
	ScopeMode string `yaml:"scope_mode"`

	Ledger   LedgerConfig   `yaml:"ledger"`
	API      APIConfig      `yaml:"api"`
	Discord  DiscordConfig  `yaml:"discord"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// LedgerConfig selects and configures the seen-announcement store.
type LedgerConfig struct {
	// Driver is "file" or "postgres". Default: file.
	Driver string `yaml:"driver"`

	// Dir is the state directory for the file driver. Default: ./state.
	Dir string `yaml:"dir"`

	// DSN is the connection string for the postgres driver.
	DSN string `yaml:"dsn"`
}

// APIConfig overrides the learning platform API endpoints. All fields are
// optional; zero values fall back to the production endpoints.
type APIConfig struct {
	BaseURL string   `yaml:"base_url"`
	Referer string   `yaml:"referer"`
	Timeout Duration `yaml:"timeout"`
}

// DiscordConfig configures the Discord webhook sink.
type DiscordConfig struct {
	Enabled    bool     `yaml:"enabled"`
	WebhookURL string   `yaml:"webhook_url"`
	Timeout    Duration `yaml:"timeout"`
}

// TelegramConfig configures the Telegram bot sink.
type TelegramConfig struct {
	Enabled  bool     `yaml:"enabled"`
	BotToken string   `yaml:"bot_token"`
	ChatID   int64    `yaml:"chat_id"`
	Timeout  Duration `yaml:"timeout"`
}

// Default values applied by applyDefaults.
const (
	defaultInterval    = 90 * time.Second
	defaultSinkTimeout = 10 * time.Second
	defaultLedgerDir   = "state"
)

// applyDefaults fills in zero values with production defaults.
func (c *RuntimeConfig) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = Duration(defaultInterval)
	}
	if c.ScopeMode == "" {
		c.ScopeMode = ScopeModePerBatch
	}
	if c.Ledger.Driver == "" {
		c.Ledger.Driver = LedgerDriverFile
	}
	if c.Ledger.Dir == "" {
		c.Ledger.Dir = defaultLedgerDir
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = Duration(defaultSinkTimeout)
	}
	if c.Discord.Timeout <= 0 {
		c.Discord.Timeout = Duration(defaultSinkTimeout)
	}
	if c.Telegram.Timeout <= 0 {
		c.Telegram.Timeout = Duration(defaultSinkTimeout)
	}
}

// Validate checks invariants that should reject the whole file, not just a
// single cycle. Credential and selection checks are handled separately at
// bootstrap so their failures produce operator guidance instead of a parse
// error.
func (c *RuntimeConfig) Validate() error {
	switch c.ScopeMode {
	case ScopeModeGlobal, ScopeModePerBatch:
	default:
		return fmt.Errorf("scope_mode must be %q or %q, got %q", ScopeModeGlobal, ScopeModePerBatch, c.ScopeMode)
	}

	switch c.Ledger.Driver {
	case LedgerDriverFile:
	case LedgerDriverPostgres:
		if strings.TrimSpace(c.Ledger.DSN) == "" {
			return fmt.Errorf("ledger.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("ledger.driver must be %q or %q, got %q", LedgerDriverFile, LedgerDriverPostgres, c.Ledger.Driver)
	}

	if c.Interval.Std() < time.Second {
		return fmt.Errorf("interval must be at least 1s, got %s", c.Interval.Std())
	}

	return nil
}
