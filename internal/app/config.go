package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"vaultferry/internal/migrate"
)

// EnvConfig names the environment variable that overrides the config
// file location.
const EnvConfig = "VAULTFERRY_CONFIG"

// Duration is a time.Duration that unmarshals from a Go duration string
// like "90s" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("bad duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds runtime wiring options for building the app.
type Config struct {
	// DB is the SQLite credential database path.
	DB string `yaml:"db"`

	// HandoffDir is the shared-directory transport root. Used when
	// Relay is empty.
	HandoffDir string `yaml:"handoff_dir"`

	// Relay selects the relay transport when non-empty, e.g.
	// "http://127.0.0.1:8438".
	Relay string `yaml:"relay"`

	// Timeout bounds the wait for counterpart artifacts.
	Timeout Duration `yaml:"timeout"`

	// Verbose enables debug logging on stderr.
	Verbose bool `yaml:"verbose"`
}

// DefaultConfigPath resolves the configuration file location: the
// VAULTFERRY_CONFIG environment variable when set, otherwise
// config.yaml under the user's vaultferry config directory.
func DefaultConfigPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "vaultferry", "config.yaml"), nil
}

// LoadConfig reads the YAML config at path. A missing or empty file is
// not an error; defaults apply. Unknown keys are rejected, so a typo in
// the file surfaces instead of silently falling back.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields with the standard locations under
// the user's vaultferry directory.
func (c *Config) ApplyDefaults() error {
	base, err := os.UserConfigDir()
	if err != nil {
		return err
	}
	home := filepath.Join(base, "vaultferry")
	if c.DB == "" {
		c.DB = filepath.Join(home, "vault.db")
	}
	if c.HandoffDir == "" {
		c.HandoffDir = filepath.Join(home, "handoff")
	}
	if c.Timeout <= 0 {
		c.Timeout = Duration(migrate.DefaultTimeout)
	}
	return nil
}
