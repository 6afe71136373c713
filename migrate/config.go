package migrate

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/jmig/internal"
	tt "github.com/gnolang/jmig/internal/types"
)

const (
	// DefaultConfigFile is the configuration file looked up when none is given.
	DefaultConfigFile = ".jmig.yaml"
	// DefaultCacheDir holds the unchanged-file cache, relative to the root.
	DefaultCacheDir = ".jmig-cache"
)

// Config represents the overall configuration: recipe overrides, ignored
// paths and the cache.
type Config struct {
	Name    string                     `yaml:"name"`
	Recipes map[string]tt.RecipeConfig `yaml:"recipes"`
	Ignore  []string                   `yaml:"ignore,omitempty"`
	Cache   CacheConfig                `yaml:"cache"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir,omitempty"`
	MaxAge  time.Duration `yaml:"max-age,omitempty"`
}

// DefaultConfig lists every built-in recipe with its default parameters.
func DefaultConfig() Config {
	config := Config{
		Name:    "jmig",
		Recipes: make(map[string]tt.RecipeConfig),
	}
	for _, def := range internal.BuiltinRecipes() {
		enabled := true
		rc := tt.RecipeConfig{
			Enabled:     &enabled,
			Description: def.Description,
			Legacy:      def.Legacy.String(),
			Replacement: def.Replacement.String(),
		}
		rc.MatcherFactories = append(rc.MatcherFactories, def.MatcherFactories...)
		if len(def.Overloads) > 0 {
			rc.Overloads = make(map[int]string, len(def.Overloads))
			for arity, s := range def.Overloads {
				rc.Overloads[arity] = s.String()
			}
		}
		config.Recipes[def.Name] = rc
	}
	return config
}

// LoadConfig reads the configuration at path. An empty path or a missing
// file yields an empty configuration, which keeps the built-in recipes.
func LoadConfig(path string) (Config, error) {
	var config Config
	if path == "" {
		return config, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("error parsing %s: %w", path, err)
	}

	return config, nil
}

// WriteConfig stores config as YAML at path, replacing any existing file.
func WriteConfig(path string, config Config) error {
	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(d)
	return err
}
