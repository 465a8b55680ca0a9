package config

import "runtime"

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Extract: ExtractConfig{
			Languages: []string{"javascript", "typescript"},
			Include:   []string{"**"},
			Exclude: []string{
				"**/*.min.js",
				"**/*.d.ts",
				"**/coverage/**",
			},
			Workers: defaultWorkers(),
			Cache:   boolPtr(true),
		},
		Output: OutputConfig{
			Format:  "yaml",
			Density: "medium",
		},
	}
}

func boolPtr(b bool) *bool { return &b }

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n > 8 {
		n = 8
	}
	return n
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	return &Config{
		Extract: mergeExtractConfig(loaded.Extract, defaults.Extract),
		Output:  mergeOutputConfig(loaded.Output, defaults.Output),
	}
}

func mergeExtractConfig(loaded, defaults ExtractConfig) ExtractConfig {
	result := ExtractConfig{}

	if len(loaded.Languages) > 0 {
		result.Languages = loaded.Languages
	} else {
		result.Languages = defaults.Languages
	}

	if len(loaded.Include) > 0 {
		result.Include = loaded.Include
	} else {
		result.Include = defaults.Include
	}

	if len(loaded.Exclude) > 0 {
		result.Exclude = loaded.Exclude
	} else {
		result.Exclude = defaults.Exclude
	}

	if loaded.Workers != 0 {
		result.Workers = loaded.Workers
	} else {
		result.Workers = defaults.Workers
	}

	// Cache is a pointer so an explicit "cache: false" survives the merge.
	if loaded.Cache != nil {
		result.Cache = loaded.Cache
	} else {
		result.Cache = defaults.Cache
	}

	return result
}

func mergeOutputConfig(loaded, defaults OutputConfig) OutputConfig {
	result := OutputConfig{}

	if loaded.Format != "" {
		result.Format = loaded.Format
	} else {
		result.Format = defaults.Format
	}

	if loaded.Density != "" {
		result.Density = loaded.Density
	} else {
		result.Density = defaults.Density
	}

	return result
}

// ValidDensities lists the valid values for output density
var ValidDensities = []string{"sparse", "medium", "dense"}

// IsValidDensity checks if the given density value is valid
func IsValidDensity(density string) bool {
	for _, valid := range ValidDensities {
		if density == valid {
			return true
		}
	}
	return false
}
