package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ResponseFormatText = "text"
	ResponseFormatJSON = "json"
)

// Endpoint locates the depot API. Deployed instances expect the access code
// as a query parameter on every request.
type Endpoint struct {
	BaseURL         string `json:"base_url" mapstructure:"base_url"`
	AccessCode      string `json:"access_code" mapstructure:"access_code"`
	AccessCodeParam string `json:"access_code_param" mapstructure:"access_code_param"`
}

type UploadConfig struct {
	ShowProgressMessage bool   `json:"show_progress_message" mapstructure:"show_progress_message"`
	ResponseFormat      string `json:"response_format" mapstructure:"response_format"`
}

// TrackedItem pairs an inventory item with the display target its stock
// level is rendered into.
type TrackedItem struct {
	Item   string `json:"item" mapstructure:"item"`
	Target string `json:"target" mapstructure:"target"`
}

type Config struct {
	Endpoint Endpoint `json:"endpoint" mapstructure:"endpoint"`

	OrderPath   string `json:"order_path" mapstructure:"order_path"`
	AccountPath string `json:"account_path" mapstructure:"account_path"`
	UploadPath  string `json:"upload_path" mapstructure:"upload_path"`

	Upload       UploadConfig  `json:"upload" mapstructure:"upload"`
	TrackedItems []TrackedItem `json:"tracked_items" mapstructure:"tracked_items"`

	RequestTimeout time.Duration `json:"request_timeout" mapstructure:"request_timeout"`

	DataDir        string `json:"data_dir" mapstructure:"data_dir"`
	HistoryEnabled bool   `json:"history_enabled" mapstructure:"history_enabled"`
	Debug          bool   `json:"debug" mapstructure:"debug"`
}

// DefaultTrackedItems is the stock board shown on the order page.
func DefaultTrackedItems() []TrackedItem {
	return []TrackedItem{
		{Item: "Rations", Target: "stock_rations"},
		{Item: "laser_crystals", Target: "stock_laser_crystals"},
		{Item: "droid_silicon", Target: "stock_droid_silicon"},
		{Item: "capacitors", Target: "stock_capacitors"},
		{Item: "fuel", Target: "stock_fuel"},
	}
}

// DefaultConfig returns the local development configuration with .env and
// DEPOT_* environment overrides applied.
func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()
	cfg := DefaultConfigWithRoot(currentDir)

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()

	return cfg
}

// ApplyEnv applies .env and DEPOT_* overrides on top of c.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()
	c.loadFromEnv()
}

// DefaultConfigWithRoot returns the built-in defaults with DataDir under root.
func DefaultConfigWithRoot(root string) *Config {
	return &Config{
		Endpoint: Endpoint{
			BaseURL:         "http://localhost:7071",
			AccessCodeParam: "code",
		},
		OrderPath:   "/api/Order",
		AccountPath: "/api/Account",
		UploadPath:  "/api/FileUpload",
		Upload: UploadConfig{
			ShowProgressMessage: true,
			ResponseFormat:      ResponseFormatText,
		},
		TrackedItems:   DefaultTrackedItems(),
		DataDir:        filepath.Join(root, "data"),
		HistoryEnabled: true,
	}
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("DEPOT_BASE_URL"); val != "" {
		c.Endpoint.BaseURL = val
	}
	if val := os.Getenv("DEPOT_ACCESS_CODE"); val != "" {
		c.Endpoint.AccessCode = val
	}
	if val := os.Getenv("DEPOT_ACCESS_CODE_PARAM"); val != "" {
		c.Endpoint.AccessCodeParam = val
	}

	if val := os.Getenv("DEPOT_ORDER_PATH"); val != "" {
		c.OrderPath = val
	}
	if val := os.Getenv("DEPOT_ACCOUNT_PATH"); val != "" {
		c.AccountPath = val
	}
	if val := os.Getenv("DEPOT_UPLOAD_PATH"); val != "" {
		c.UploadPath = val
	}

	if val := os.Getenv("DEPOT_UPLOAD_RESPONSE_FORMAT"); val != "" {
		c.Upload.ResponseFormat = strings.ToLower(val)
	}
	if val := os.Getenv("DEPOT_UPLOAD_PROGRESS"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Upload.ShowProgressMessage = enabled
		}
	}

	if val := os.Getenv("DEPOT_TRACKED_ITEMS"); val != "" {
		if items, err := ParseTrackedItems(val); err == nil {
			c.TrackedItems = items
		}
	}

	if val := os.Getenv("DEPOT_REQUEST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.RequestTimeout = d
		}
	}

	if val := os.Getenv("DEPOT_DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := os.Getenv("DEPOT_HISTORY"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.HistoryEnabled = enabled
		}
	}
	if val := os.Getenv("DEPOT_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
}

// ParseTrackedItems parses "Item=target,Item2=target2". An entry without a
// target gets the one derived from its name.
func ParseTrackedItems(s string) ([]TrackedItem, error) {
	var items []TrackedItem
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		item, target, found := strings.Cut(part, "=")
		item = strings.TrimSpace(item)
		target = strings.TrimSpace(target)
		if item == "" {
			return nil, fmt.Errorf("tracked item %q has no name", part)
		}
		if !found || target == "" {
			target = StockTarget(item)
		}
		items = append(items, TrackedItem{Item: item, Target: target})
	}
	if len(items) == 0 {
		return nil, errors.New("no tracked items")
	}
	return items, nil
}

// StockTarget derives the display target for an item: "stock_" followed by
// the lower-cased name with spaces replaced by underscores.
func StockTarget(item string) string {
	return "stock_" + strings.ReplaceAll(strings.ToLower(item), " ", "_")
}

// Validate checks that the configuration can address the depot API.
func (c Config) Validate() error {
	base := strings.TrimSpace(c.Endpoint.BaseURL)
	if base == "" {
		return errors.New("endpoint base_url is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("endpoint base_url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("endpoint base_url %q must be an absolute URL", base)
	}
	if c.Endpoint.AccessCode != "" && strings.TrimSpace(c.Endpoint.AccessCodeParam) == "" {
		return errors.New("endpoint access_code_param is required when access_code is set")
	}

	for name, path := range map[string]string{
		"order_path":   c.OrderPath,
		"account_path": c.AccountPath,
		"upload_path":  c.UploadPath,
	} {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("%s %q must start with /", name, path)
		}
	}

	switch c.Upload.ResponseFormat {
	case ResponseFormatText, ResponseFormatJSON:
	default:
		return fmt.Errorf("upload response_format %q must be %q or %q",
			c.Upload.ResponseFormat, ResponseFormatText, ResponseFormatJSON)
	}

	if c.RequestTimeout < 0 {
		return errors.New("request_timeout cannot be negative")
	}

	seen := make(map[string]string, len(c.TrackedItems))
	for _, item := range c.TrackedItems {
		if strings.TrimSpace(item.Item) == "" {
			return errors.New("tracked item name cannot be empty")
		}
		if strings.TrimSpace(item.Target) == "" {
			return fmt.Errorf("tracked item %s has no target", item.Item)
		}
		if prev, ok := seen[item.Target]; ok {
			return fmt.Errorf("tracked items %s and %s share target %s", prev, item.Item, item.Target)
		}
		seen[item.Target] = item.Item
	}
	return nil
}

func (c *Config) EnsureDirectories() error {
	path := strings.TrimSpace(c.DataDir)
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// HistoryPath is where the interaction journal lives.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.db")
}
