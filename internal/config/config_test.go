package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Window.Height)
	}
	if !cfg.Window.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Asset.Worker != WorkerOff {
		t.Errorf("expected worker mode off, got %s", cfg.Asset.Worker)
	}

	if cfg.Camera.FOV != 75 {
		t.Errorf("expected fov 75, got %f", cfg.Camera.FOV)
	}
	if cfg.Camera.Position != [3]float32{-10, 15, 30} {
		t.Errorf("unexpected initial camera position %v", cfg.Camera.Position)
	}
	if cfg.Camera.DampingFactor != 0.05 {
		t.Errorf("expected damping factor 0.05, got %f", cfg.Camera.DampingFactor)
	}

	if cfg.Picking.Prefix != "Base" {
		t.Errorf("expected picking prefix Base, got %s", cfg.Picking.Prefix)
	}
	if cfg.Picking.Messages["Base001"] != "Gotinha 1" {
		t.Errorf("expected Base001 message, got %q", cfg.Picking.Messages["Base001"])
	}

	if cfg.MQTT.ConnectTimeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", cfg.MQTT.ConnectTimeout)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true
  background: "#000000"

asset:
  path: "models/robot.glb"
  worker: mqtt

camera:
  fov: 50
  position: [1, 2, 3]
  damping: false

picking:
  messages:
    Base003: "Gotinha 3"

mqtt:
  broker: "tcp://broker:1883"
  connect_timeout: 5s

screenshot:
  format: png

logging:
  level: "debug"
  log_file: "viewer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	// Relative asset paths resolve against the config file.
	if want := filepath.Join(tmpDir, "models", "robot.glb"); cfg.Asset.Path != want {
		t.Errorf("expected asset path %s, got %s", want, cfg.Asset.Path)
	}
	if cfg.Asset.Worker != WorkerMQTT {
		t.Errorf("expected worker mqtt, got %s", cfg.Asset.Worker)
	}
	if cfg.Camera.FOV != 50 {
		t.Errorf("expected fov 50, got %f", cfg.Camera.FOV)
	}
	if cfg.Camera.Position != [3]float32{1, 2, 3} {
		t.Errorf("expected position [1 2 3], got %v", cfg.Camera.Position)
	}
	if cfg.Camera.Damping {
		t.Error("expected damping to be false")
	}
	// Defaults not mentioned in the file survive.
	if cfg.Camera.Near != 0.1 {
		t.Errorf("expected near 0.1 kept from defaults, got %f", cfg.Camera.Near)
	}
	if cfg.Picking.Messages["Base003"] != "Gotinha 3" {
		t.Errorf("expected Base003 message, got %q", cfg.Picking.Messages["Base003"])
	}
	if cfg.MQTT.Broker != "tcp://broker:1883" {
		t.Errorf("expected broker tcp://broker:1883, got %s", cfg.MQTT.Broker)
	}
	if cfg.MQTT.ConnectTimeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.MQTT.ConnectTimeout)
	}
	if cfg.Screenshot.Format != "png" {
		t.Errorf("expected png screenshots, got %s", cfg.Screenshot.Format)
	}
	if cfg.Logging.LogFile != "viewer.log" {
		t.Errorf("expected log file 'viewer.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"empty asset", func(c *Config) { c.Asset.Path = "" }},
		{"unknown worker", func(c *Config) { c.Asset.Worker = "thread" }},
		{"fov zero", func(c *Config) { c.Camera.FOV = 0 }},
		{"fov 180", func(c *Config) { c.Camera.FOV = 180 }},
		{"far before near", func(c *Config) { c.Camera.Far = 0.01 }},
		{"damping above one", func(c *Config) { c.Camera.DampingFactor = 2 }},
		{"bad screenshot format", func(c *Config) { c.Screenshot.Format = "bmp" }},
		{"bad colour", func(c *Config) { c.Lights.Hemisphere.Sky = "sky-blue" }},
		{"msaa too high", func(c *Config) { c.Window.MSAA = 32 }},
		{"too many lights", func(c *Config) {
			c.Lights.Directional = make([]DirectionalLight, MaxDirectionalLights+1)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff0000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != [3]float32{1, 0, 0} {
		t.Errorf("expected red, got %v", c)
	}

	if c, err := ParseColor(""); err != nil || c != [3]float32{} {
		t.Errorf("expected black for empty colour, got %v (%v)", c, err)
	}

	if _, err := ParseColor("red"); err == nil {
		t.Error("expected error for non-hex colour")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "glbstage.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find glbstage.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name: "asset and worker flags",
			setup: func() {
				*flagAsset = "scene.glb"
				*flagWorker = WorkerInline
			},
			verify: func(cfg *Config) {
				if cfg.Asset.Path != "scene.glb" {
					t.Errorf("expected asset scene.glb, got %s", cfg.Asset.Path)
				}
				if cfg.Asset.Worker != WorkerInline {
					t.Errorf("expected inline worker, got %s", cfg.Asset.Worker)
				}
			},
			teardown: func() {
				*flagAsset = ""
				*flagWorker = ""
			},
		},
		{
			name:  "broker flag",
			setup: func() { *flagBroker = "tcp://mq:1883" },
			verify: func(cfg *Config) {
				if cfg.MQTT.Broker != "tcp://mq:1883" {
					t.Errorf("expected broker tcp://mq:1883, got %s", cfg.MQTT.Broker)
				}
			},
			teardown: func() { *flagBroker = "" },
		},
		{
			name:  "fov flag",
			setup: func() { *flagFOV = 60 },
			verify: func(cfg *Config) {
				if cfg.Camera.FOV != 60 {
					t.Errorf("expected fov 60, got %f", cfg.Camera.FOV)
				}
			},
			teardown: func() { *flagFOV = 0 },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(cfg *Config) {
				if !cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Asset.Path = "saved.glb"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if want := filepath.Join(filepath.Dir(path), "saved.glb"); loaded.Asset.Path != want {
		t.Errorf("expected %s after reload, got %s", want, loaded.Asset.Path)
	}
}

func TestLoadFromFileUnknownKey(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "typo.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  widht: 800\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error for unknown key, got nil")
	}
}

func TestLoadFromFileKeepsAbsoluteAndDefaultAsset(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	abs := filepath.Join(dir, "abs", "model.glb")
	if err := os.WriteFile(configPath, []byte("asset:\n  path: "+abs+"\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Asset.Path != abs {
		t.Errorf("expected absolute path kept, got %s", cfg.Asset.Path)
	}

	// An empty file leaves the default untouched.
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	cfg = Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load empty config: %v", err)
	}
	if cfg.Asset.Path != Default().Asset.Path {
		t.Errorf("expected default asset path, got %s", cfg.Asset.Path)
	}
}

func TestLoadFromEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "env.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  height: 777\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv(EnvConfig, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Window.Height != 777 {
		t.Errorf("expected height 777 from env config, got %d", cfg.Window.Height)
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}
