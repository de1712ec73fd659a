// Package config loads and validates the engine configuration from a
// TOML file with environment-variable overrides for secrets.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"shipment-sync/internal/status"
)

// Config is the full engine configuration. Validation failures are
// fatal: they abort the run before any order is touched.
type Config struct {
	Shopify Shopify `toml:"shopify"`
	Carrier Carrier `toml:"carrier"`
	Sync    Sync    `toml:"sync"`
}

// Shopify holds the order-source coordinates.
type Shopify struct {
	Store      string `toml:"store"`
	Token      string `toml:"token"`
	APIVersion string `toml:"api_version"`
	PageLimit  int    `toml:"page_limit"`
}

// Carrier holds the tracking provider coordinates.
type Carrier struct {
	Name            string `toml:"name"`
	URL             string `toml:"url"`
	AccessKey       string `toml:"access_key"`
	TrackingURLBase string `toml:"tracking_url_base"`
}

// Sync holds the reconciliation policy.
type Sync struct {
	Workers        int      `toml:"workers"`
	NotifyCustomer bool     `toml:"notify_customer"`
	AttachStatuses []string `toml:"attach_statuses"`
	NumberSource   string   `toml:"number_source"` // "fulfillment" or "note_attribute:<name>"
	TestOrderID    int64    `toml:"test_order_id"` // >0 selects the simulated tracking source
	MetricsAddr    string   `toml:"metrics_addr"`
}

// Load reads the file at path (skipped when path is empty), applies
// environment overrides, fills defaults, and validates.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides file values with the environment. Secrets are
// expected to arrive this way in scheduled runs.
func applyEnv(cfg *Config) {
	setString(&cfg.Shopify.Store, "SHOPIFY_STORE")
	setString(&cfg.Shopify.Token, "SHOPIFY_TOKEN")
	setString(&cfg.Shopify.APIVersion, "SHOPIFY_API_VERSION")
	setString(&cfg.Carrier.URL, "PALLETFORCE_URL")
	setString(&cfg.Carrier.AccessKey, "PALLETFORCE_ACCESS_KEY")

	if v := os.Getenv("TEST_ORDER_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Sync.TestOrderID = id
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Shopify.APIVersion == "" {
		cfg.Shopify.APIVersion = "2024-07"
	}
	if cfg.Shopify.PageLimit <= 0 {
		cfg.Shopify.PageLimit = 50
	}
	if cfg.Carrier.Name == "" {
		cfg.Carrier.Name = "Palletforce"
	}
	if cfg.Carrier.TrackingURLBase == "" {
		cfg.Carrier.TrackingURLBase = "https://www.palletforce.com/track/"
	}
	if cfg.Sync.Workers <= 0 {
		cfg.Sync.Workers = 1
	}
	if len(cfg.Sync.AttachStatuses) == 0 {
		cfg.Sync.AttachStatuses = []string{"in_transit", "delivered"}
	}
	if cfg.Sync.NumberSource == "" {
		cfg.Sync.NumberSource = "fulfillment"
	}
}

func validate(cfg Config) error {
	if cfg.Shopify.Store == "" {
		return fmt.Errorf("config: shopify store is required")
	}
	if cfg.Shopify.Token == "" {
		return fmt.Errorf("config: shopify token is required")
	}
	if cfg.Sync.TestOrderID <= 0 {
		if cfg.Carrier.URL == "" {
			return fmt.Errorf("config: carrier url is required")
		}
		if cfg.Carrier.AccessKey == "" {
			return fmt.Errorf("config: carrier access key is required")
		}
	}
	if _, err := cfg.AttachOn(); err != nil {
		return err
	}
	return nil
}

// AttachOn parses the configured attach statuses into canonical ones.
func (c Config) AttachOn() ([]status.Status, error) {
	out := make([]status.Status, 0, len(c.Sync.AttachStatuses))
	for _, name := range c.Sync.AttachStatuses {
		st, ok := status.Parse(name)
		if !ok {
			return nil, fmt.Errorf("config: unknown attach status %q", name)
		}
		out = append(out, st)
	}
	return out, nil
}
