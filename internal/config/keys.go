package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"nathanbeddoewebdev/xostats/internal/util"
	"nathanbeddoewebdev/xostats/internal/xoapi"
)

// maxConcurrency bounds the concurrency key.
const maxConcurrency = 64

// KeySpec describes a single configuration key.
type KeySpec struct {
	// Name is the CLI-facing key name (e.g. "server-url").
	Name string

	// Description is a short human-readable explanation shown in help text.
	Description string

	// Get returns the current value for this key from a loaded Config.
	Get func(cfg *Config) string

	// Set applies a value for this key to the given Config (in memory only;
	// the caller is responsible for calling Save). The value must already
	// have passed Validate.
	Set func(cfg *Config, value string)

	// Validate rejects values Set cannot store. Empty values are always
	// accepted and reset the key to its default.
	Validate func(value string) error
}

// Keys is the authoritative list of all supported configuration keys.
// To add a new option: add a field to Config and append a KeySpec here.
var Keys = []KeySpec{
	{
		Name:        "server-url",
		Description: "Xen Orchestra address (https://xo.example.com or wss://.../api/)",
		Get:         func(cfg *Config) string { return cfg.ServerURL },
		Set:         func(cfg *Config, v string) { cfg.ServerURL = v },
		Validate: func(v string) error {
			_, err := xoapi.Endpoint(v)
			return err
		},
	},
	{
		Name:        "concurrency",
		Description: fmt.Sprintf("Maximum parallel stats fetches (default %d)", DefaultConcurrency),
		Get:         func(cfg *Config) string { return intValue(cfg.Concurrency) },
		Set:         func(cfg *Config, v string) { cfg.Concurrency, _ = strconv.Atoi(v) },
		Validate: func(v string) error {
			_, err := util.ParsePositiveInt(v, maxConcurrency)
			return err
		},
	},
	{
		Name:        "retry-attempts",
		Description: fmt.Sprintf("Attempts per stats fetch on transient errors (default %d)", DefaultRetryAttempts),
		Get:         func(cfg *Config) string { return intValue(cfg.RetryAttempts) },
		Set:         func(cfg *Config, v string) { cfg.RetryAttempts, _ = strconv.Atoi(v) },
		Validate: func(v string) error {
			_, err := util.ParsePositiveInt(v, 10)
			return err
		},
	},
	{
		Name:        "timezone",
		Description: "IANA timezone used to lay out heatmaps (default local)",
		Get:         func(cfg *Config) string { return cfg.Timezone },
		Set:         func(cfg *Config, v string) { cfg.Timezone = v },
		Validate: func(v string) error {
			_, err := time.LoadLocation(v)
			return err
		},
	},
}

func intValue(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// Lookup returns the KeySpec for the given name, or nil if not found.
// The name is matched case-insensitively after trimming whitespace.
func Lookup(name string) *KeySpec {
	normalized := util.NormalizeKey(name)
	for i := range Keys {
		if Keys[i].Name == normalized {
			return &Keys[i]
		}
	}
	return nil
}

// Apply validates value and stores it under the key.
func (k *KeySpec) Apply(cfg *Config, value string) error {
	value = strings.TrimSpace(value)
	if value != "" && k.Validate != nil {
		if err := k.Validate(value); err != nil {
			return fmt.Errorf("invalid value for %s: %w", k.Name, err)
		}
	}
	k.Set(cfg, value)
	return nil
}

// KeyNames returns the names of all registered keys.
func KeyNames() []string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	return names
}

// KeysHelp builds a formatted block listing all available keys and their
// descriptions, suitable for inclusion in Cobra Long help text.
func KeysHelp() string {
	if len(Keys) == 0 {
		return ""
	}

	// Find the longest key name for alignment.
	maxLen := 0
	for _, k := range Keys {
		if len(k.Name) > maxLen {
			maxLen = len(k.Name)
		}
	}

	var b strings.Builder
	b.WriteString("Available keys:\n")
	for _, k := range Keys {
		fmt.Fprintf(&b, "  %-*s   %s\n", maxLen, k.Name, k.Description)
	}
	return b.String()
}
