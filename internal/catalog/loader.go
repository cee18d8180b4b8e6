package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads a catalog file (yaml, json or toml, picked by extension) with a top-level
// "features" list. An empty path or a missing file yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("stat catalog file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var defs []FeatureDefinition
	if err := v.UnmarshalKey("features", &defs); err != nil {
		return nil, fmt.Errorf("decode catalog file: %w", err)
	}
	return New(defs)
}
