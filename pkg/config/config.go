// Package config loads engine-wide defaults from a TOML file, grounded on
// Pieczasz-smf's internal/parser/toml schema parser (BurntSushi/toml,
// os.Open -> toml.NewDecoder -> Decode, errors wrapped with
// fmt.Errorf("...: %w", err)).
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the engine-wide defaults that spec.md leaves to the
// embedding caller: where database files live, how long a blocked
// operation should be retried before surfacing lock-conflict (the engine
// itself never blocks; this is advisory for an embedding caller's own
// retry loop), and the label written into journal/log lines.
type Config struct {
	DataDir      string `toml:"data_dir"`
	BusyTimeout  int    `toml:"busy_timeout_ms"`
	JournalLabel string `toml:"journal_label"`
}

// Default returns the zero-configuration defaults.
func Default() Config {
	return Config{
		DataDir:      ".",
		BusyTimeout:  0,
		JournalLabel: "embeddb",
	}
}

// Load reads and decodes a Config from path, filling any field the file
// omits with Default's value.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}
