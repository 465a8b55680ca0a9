package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the getdocs configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the getdocs configuration directory
const ConfigDirName = ".getdocs"

// Config holds all getdocs configuration
type Config struct {
	Extract ExtractConfig `yaml:"extract"`
	Output  OutputConfig  `yaml:"output"`
}

// ExtractConfig holds configuration for finding and extracting source files
type ExtractConfig struct {
	Languages []string `yaml:"languages" validate:"required,min=1,dive,oneof=javascript typescript"`
	Include   []string `yaml:"include"`
	Exclude   []string `yaml:"exclude"`
	Workers   int      `yaml:"workers" validate:"min=1,max=64"`
	Cache     *bool    `yaml:"cache,omitempty"`
}

// CacheEnabled reports whether extraction results may be cached.
func (c ExtractConfig) CacheEnabled() bool {
	return c.Cache == nil || *c.Cache
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	Format  string `yaml:"format" validate:"oneof=yaml json"`
	Density string `yaml:"density" validate:"oneof=sparse medium dense"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their YAML key so messages match the file.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads config from .getdocs/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		// No config dir found, return defaults
		return DefaultConfig(), nil
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())

	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// FindConfigDir locates the .getdocs directory by walking up from startDir.
// Returns the path to the .getdocs directory if found.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .getdocs directory if it doesn't exist.
// Returns the path to the .getdocs directory.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// Validate checks that config values are valid.
// Returns an error wrapping ErrInvalidConfig naming the first bad field.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			ve := verrs[0]
			return fmt.Errorf("%w: %s failed %q check, got %v",
				ErrInvalidConfig, fieldPath(ve.Namespace()), ve.Tag(), ve.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	for _, pattern := range append(append([]string{}, cfg.Extract.Include...), cfg.Extract.Exclude...) {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("%w: empty glob pattern", ErrInvalidConfig)
		}
	}

	return nil
}

// fieldPath turns "Config.extract.workers" into "extract.workers".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// SaveDefault writes the default configuration to .getdocs/config.yaml in
// workDir. Creates the .getdocs directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# getdocs configuration\n# Globs are matched against slash-separated paths relative to the project root.\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}
