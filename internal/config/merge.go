package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names used for shallow merge.
const (
	keyGrid     = "grid"
	keyProvider = "provider"
	keyCache    = "cache"
	keyBulk     = "bulk"
	keyOutput   = "output"
	keyLogging  = "logging"
)

// knownTopLevelKeys lists the YAML keys that correspond to exported Config fields.
// Keys not in this list are silently ignored during merge.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var knownTopLevelKeys = map[string]bool{
	keyGrid:     true,
	keyProvider: true,
	keyCache:    true,
	keyBulk:     true,
	keyOutput:   true,
	keyLogging:  true,
}

// ShallowMergeYAML loads a YAML file and merges its top-level keys onto
// the target Config. Keys present in the overlay replace entire sections
// in the target. Keys absent in the overlay are left unchanged.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]any
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	// Empty or comment-only file: nothing to merge.
	if len(overlay) == 0 {
		return nil
	}

	for key, value := range overlay {
		if !knownTopLevelKeys[key] {
			continue
		}

		sectionBytes, marshalErr := yaml.Marshal(value)
		if marshalErr != nil {
			return fmt.Errorf("re-marshalling overlay section %q: %w", key, marshalErr)
		}

		if err = unmarshalSection(target, key, sectionBytes); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}

	return nil
}

// unmarshalSection decodes data into a fresh value and replaces the section
// named key. Fields the overlay leaves out become zero values.
func unmarshalSection(target *Config, key string, data []byte) error {
	switch key {
	case keyGrid:
		return replace(&target.Grid, data)
	case keyProvider:
		return replace(&target.Provider, data)
	case keyCache:
		return replace(&target.Cache, data)
	case keyBulk:
		return replace(&target.Bulk, data)
	case keyOutput:
		return replace(&target.Output, data)
	case keyLogging:
		return replace(&target.Logging, data)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
}

func replace[S any](dst *S, data []byte) error {
	var v S
	if err := yaml.Unmarshal(data, &v); err != nil {
		return err
	}
	*dst = v
	return nil
}
