package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".docker-build.yml"

// Config is the top-level docker-build configuration.
type Config struct {
	Docker DockerConfig `yaml:"docker" toml:"docker"`
	Build  BuildConfig  `yaml:"build" toml:"build"`
	Cache  CacheConfig  `yaml:"cache" toml:"cache"`
	Labels LabelsConfig `yaml:"labels" toml:"labels"`
}

// Load reads configuration from a YAML or TOML file.
// If path is empty, it tries the default file.
// Returns defaults if the file doesn't exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return defaults(), nil
		}
		return nil, err
	}

	cfg := defaults()
	if err := decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// decode picks the parser from the file extension. Anything that is not
// .toml is read as YAML.
func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return defaults()
}

func defaults() *Config {
	return &Config{
		Docker: DefaultDockerConfig(),
		Build:  DefaultBuildConfig(),
		Cache:  DefaultCacheConfig(),
	}
}
