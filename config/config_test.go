package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfigWithRoot(t.TempDir())
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if len(cfg.TrackedItems) != 5 {
		t.Fatalf("expected 5 tracked items, got %d", len(cfg.TrackedItems))
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DEPOT_BASE_URL", "https://depot.example.com")
	t.Setenv("DEPOT_ACCESS_CODE", "abc==")
	t.Setenv("DEPOT_UPLOAD_PATH", "/api/fileupload")
	t.Setenv("DEPOT_UPLOAD_PROGRESS", "false")
	t.Setenv("DEPOT_UPLOAD_RESPONSE_FORMAT", "JSON")
	t.Setenv("DEPOT_REQUEST_TIMEOUT", "5s")
	t.Setenv("DEPOT_TRACKED_ITEMS", "Fuel")
	t.Setenv("DEPOT_HISTORY", "not-a-bool")

	cfg := DefaultConfigWithRoot(t.TempDir())
	cfg.loadFromEnv()

	if cfg.Endpoint.BaseURL != "https://depot.example.com" || cfg.Endpoint.AccessCode != "abc==" {
		t.Fatalf("endpoint not overridden: %+v", cfg.Endpoint)
	}
	if cfg.UploadPath != "/api/fileupload" || cfg.Upload.ShowProgressMessage || cfg.Upload.ResponseFormat != ResponseFormatJSON {
		t.Fatalf("upload settings not overridden: %s %+v", cfg.UploadPath, cfg.Upload)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %s", cfg.RequestTimeout)
	}
	if len(cfg.TrackedItems) != 1 || cfg.TrackedItems[0].Target != "stock_fuel" {
		t.Fatalf("unexpected tracked items: %+v", cfg.TrackedItems)
	}
	if !cfg.HistoryEnabled {
		t.Fatalf("malformed DEPOT_HISTORY should be ignored")
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"relative base url":  func(c *Config) { c.Endpoint.BaseURL = "depot.local" },
		"empty base url":     func(c *Config) { c.Endpoint.BaseURL = " " },
		"bad format":         func(c *Config) { c.Upload.ResponseFormat = "html" },
		"negative timeout":   func(c *Config) { c.RequestTimeout = -time.Second },
		"path without slash": func(c *Config) { c.OrderPath = "api/Order" },
		"empty item":         func(c *Config) { c.TrackedItems = []TrackedItem{{Item: "", Target: "stock_x"}} },
		"duplicate target": func(c *Config) {
			c.TrackedItems = []TrackedItem{{Item: "fuel", Target: "stock_fuel"}, {Item: "Fuel", Target: "stock_fuel"}}
		},
		"code without param": func(c *Config) {
			c.Endpoint.AccessCode = "abc"
			c.Endpoint.AccessCodeParam = ""
		},
	}
	for name, mutate := range cases {
		cfg := DefaultConfigWithRoot(t.TempDir())
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestStockTarget(t *testing.T) {
	cases := map[string]string{
		"Fuel":           "stock_fuel",
		"laser_crystals": "stock_laser_crystals",
		"Droid Silicon":  "stock_droid_silicon",
		"Big Hull Plate": "stock_big_hull_plate",
	}
	for item, want := range cases {
		if got := StockTarget(item); got != want {
			t.Fatalf("StockTarget(%q) = %q, want %q", item, got, want)
		}
	}
}

func TestLoadFileFormats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"depot.yaml": "endpoint:\n  base_url: https://yaml.example.com\nupload:\n  response_format: json\n",
		"depot.toml": "upload_path = \"/api/fileupload\"\n[endpoint]\nbase_url = \"https://toml.example.com\"\n",
		"depot.json": `{"endpoint":{"base_url":"https://json.example.com"},"request_timeout":"2s"}`,
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		cfg, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile(%s): %v", name, err)
		}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("%s: loaded config invalid: %v", name, err)
		}
		if len(cfg.TrackedItems) != 5 {
			t.Fatalf("%s: defaults lost, tracked items %+v", name, cfg.TrackedItems)
		}
	}

	cfg, _ := LoadFile(filepath.Join(dir, "depot.yaml"))
	if cfg.Endpoint.BaseURL != "https://yaml.example.com" || cfg.Upload.ResponseFormat != ResponseFormatJSON {
		t.Fatalf("yaml values not applied: %+v", cfg)
	}
	if !cfg.Upload.ShowProgressMessage || cfg.Endpoint.AccessCodeParam != "code" {
		t.Fatalf("nested defaults lost: %+v", cfg)
	}
	cfg, _ = LoadFile(filepath.Join(dir, "depot.json"))
	if cfg.RequestTimeout != 2*time.Second {
		t.Fatalf("expected 2s timeout from json, got %s", cfg.RequestTimeout)
	}
}

func TestLoadFileReplacesTrackedItems(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"one.json": `{"tracked_items":[{"item":"hull","target":"stock_hull"}]}`,
		"one.yaml": "tracked_items:\n  - item: hull\n    target: stock_hull\n",
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		cfg, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile(%s): %v", name, err)
		}
		if len(cfg.TrackedItems) != 1 || cfg.TrackedItems[0] != (TrackedItem{Item: "hull", Target: "stock_hull"}) {
			t.Fatalf("%s: expected only the listed item, got %+v", name, cfg.TrackedItems)
		}
	}
}
