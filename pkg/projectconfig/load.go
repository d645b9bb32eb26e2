package projectconfig

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/mhanyc/orgkit/pkg/identity"
	"github.com/pkg/errors"
)

// DefaultFile is the project config file orgkit looks for in the working
// directory.
const DefaultFile = "orgkit.toml"

// DefaultRegistry is the registry path used when the config does not set one.
const DefaultRegistry = "accounts.json"

// Config is the orgkit.toml project configuration.
type Config struct {
	Name             string `toml:"name"`
	GitHubRepository string `toml:"github_repository"`
	Region           string `toml:"region"`
	// Registry is the path of the account registry file, relative to the
	// config file's directory.
	Registry string `toml:"registry"`
	// Environment optionally pins a default environment filter for sweeps.
	Environment string `toml:"environment"`
}

// LoadFile reads and validates an orgkit.toml.
func LoadFile(filepath string) (Config, error) {
	var cfg Config

	f, err := os.Open(filepath)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	if _, err := dec.Decode(&cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parsing %s", filepath)
	}

	if cfg.Environment != "" && !identity.ValidEnvironment(cfg.Environment) {
		return Config{}, errors.Errorf("%s: environment %q is not a known tier or test environment", filepath, cfg.Environment)
	}
	return cfg, nil
}

// Identity builds the validated project identity from the config.
func (c Config) Identity() (identity.Project, error) {
	return identity.New(c.GitHubRepository, c.Name, c.Region)
}

// RegistryPath returns the configured registry file path, defaulting to
// accounts.json next to the config.
func (c Config) RegistryPath() string {
	if c.Registry == "" {
		return DefaultRegistry
	}
	return c.Registry
}
