package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// LoadFile reads a JSON, YAML or TOML config file on top of the defaults for
// its directory. Keys missing from the file keep their default values.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfigWithRoot(filepath.Dir(path))
	if err := loadConfigFromFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFromFile(path string, cfg *Config) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	// Lists replace the default instead of merging element by element.
	if v.IsSet("tracked_items") {
		cfg.TrackedItems = nil
	}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

// apply sets one dotted key (e.g. "endpoint.base_url") on a copy of cfg.
func apply(cfg Config, key, value string) (Config, error) {
	key = strings.ToLower(strings.TrimSpace(key))

	raw, err := json.Marshal(cfg)
	if err != nil {
		return Config{}, fmt.Errorf("encode config: %w", err)
	}
	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if !v.IsSet(key) {
		return Config{}, fmt.Errorf("unknown config key %q", key)
	}

	if key == "tracked_items" {
		items, err := ParseTrackedItems(value)
		if err != nil {
			return Config{}, err
		}
		cfg.TrackedItems = items
		return cfg, nil
	}

	v.Set(key, value)
	var out Config
	if err := v.Unmarshal(&out); err != nil {
		return Config{}, fmt.Errorf("set %s: %w", key, err)
	}
	return out, nil
}
