// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// Worker modes for the optional background parsing path.
const (
	WorkerOff    = "off"
	WorkerInline = "inline"
	WorkerMQTT   = "mqtt"
)

// Config holds all viewer settings.
type Config struct {
	Window     WindowConfig     `yaml:"window"`
	Asset      AssetConfig      `yaml:"asset"`
	Camera     CameraConfig     `yaml:"camera"`
	Lights     LightsConfig     `yaml:"lights"`
	Picking    PickingConfig    `yaml:"picking"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	Screenshot ScreenshotConfig `yaml:"screenshot"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	MSAA       int    `yaml:"msaa"`       // multisample count, 0 disables
	Background string `yaml:"background"` // hex colour
}

// AssetConfig selects the model and how it is parsed.
type AssetConfig struct {
	Path   string `yaml:"path"`
	Worker string `yaml:"worker"` // off, inline or mqtt
}

// CameraConfig holds the initial camera pose and orbit control settings.
type CameraConfig struct {
	FOV           float32    `yaml:"fov"` // vertical, degrees
	Near          float32    `yaml:"near"`
	Far           float32    `yaml:"far"`
	Position      [3]float32 `yaml:"position"`
	Target        [3]float32 `yaml:"target"`
	Damping       bool       `yaml:"damping"`
	DampingFactor float32    `yaml:"damping_factor"`
	RotateSpeed   float32    `yaml:"rotate_speed"`
	ZoomSpeed     float32    `yaml:"zoom_speed"`
}

// MaxDirectionalLights is the number of directional lights the shader supports.
const MaxDirectionalLights = 4

// LightsConfig describes the fixed scene lighting.
type LightsConfig struct {
	Directional []DirectionalLight `yaml:"directional"`
	Ambient     AmbientLight       `yaml:"ambient"`
	Hemisphere  HemisphereLight    `yaml:"hemisphere"`
}

// DirectionalLight is a light shining from Position towards the origin.
type DirectionalLight struct {
	Color     string     `yaml:"color"`
	Intensity float32    `yaml:"intensity"`
	Position  [3]float32 `yaml:"position"`
}

// AmbientLight is a uniform light term.
type AmbientLight struct {
	Color     string  `yaml:"color"`
	Intensity float32 `yaml:"intensity"`
}

// HemisphereLight blends between a sky and a ground colour by normal direction.
type HemisphereLight struct {
	Sky       string  `yaml:"sky"`
	Ground    string  `yaml:"ground"`
	Intensity float32 `yaml:"intensity"`
}

// PickingConfig maps picked node names to popup messages.
type PickingConfig struct {
	Prefix   string            `yaml:"prefix"`
	Messages map[string]string `yaml:"messages"`
}

// MQTTConfig holds the remote worker broker settings.
type MQTTConfig struct {
	Broker         string        `yaml:"broker"`
	ClientID       string        `yaml:"client_id"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	RequestTopic   string        `yaml:"request_topic"`
	ReplyTopic     string        `yaml:"reply_topic"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// ScreenshotConfig controls debug screenshot output.
type ScreenshotConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // webp or png
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "glbstage",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			MSAA:       4,
			Background: "#1a1a26",
		},
		Asset: AssetConfig{
			Path:   "file/PAEC2.glb",
			Worker: WorkerOff,
		},
		Camera: CameraConfig{
			FOV:           75,
			Near:          0.1,
			Far:           1000,
			Position:      [3]float32{-10, 15, 30},
			Damping:       true,
			DampingFactor: 0.05,
			RotateSpeed:   0.005,
			ZoomSpeed:     0.1,
		},
		Lights: LightsConfig{
			Directional: []DirectionalLight{
				{Color: "#ffffff", Intensity: 0.4, Position: [3]float32{3.1, 0, 1.1}},
				{Color: "#ffffff", Intensity: 0.5, Position: [3]float32{0, 5, 1}},
			},
			Ambient: AmbientLight{Color: "#ffffff", Intensity: 0.4},
			Hemisphere: HemisphereLight{
				Sky:       "#b1e1ff",
				Ground:    "#b97a20",
				Intensity: 0.6,
			},
		},
		Picking: PickingConfig{
			Prefix: "Base",
			Messages: map[string]string{
				"Base001": "Gotinha 1",
				"Base002": "Gotinha 2",
			},
		},
		MQTT: MQTTConfig{
			Broker:         "tcp://127.0.0.1:1883",
			ClientID:       "glbstage",
			RequestTopic:   "glbstage/worker/load",
			ReplyTopic:     "glbstage/worker/loaded",
			ConnectTimeout: 10 * time.Second,
		},
		Screenshot: ScreenshotConfig{
			Dir:    "screenshots",
			Format: "webp",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Window.MSAA < 0 || c.Window.MSAA > 16 {
		return fmt.Errorf("msaa %d must be in [0, 16]", c.Window.MSAA)
	}
	if c.Asset.Path == "" {
		return errors.New("asset path is empty")
	}
	switch c.Asset.Worker {
	case WorkerOff, WorkerInline, WorkerMQTT:
	default:
		return fmt.Errorf("unknown worker mode %q", c.Asset.Worker)
	}
	if len(c.Lights.Directional) > MaxDirectionalLights {
		return fmt.Errorf("%d directional lights configured, at most %d are supported", len(c.Lights.Directional), MaxDirectionalLights)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("camera fov %.1f must be in (0, 180)", c.Camera.FOV)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera clip range [%g, %g] is invalid", c.Camera.Near, c.Camera.Far)
	}
	if c.Camera.DampingFactor < 0 || c.Camera.DampingFactor > 1 {
		return fmt.Errorf("damping factor %g must be in [0, 1]", c.Camera.DampingFactor)
	}
	switch c.Screenshot.Format {
	case "webp", "png":
	default:
		return fmt.Errorf("unknown screenshot format %q", c.Screenshot.Format)
	}

	colours := []string{c.Window.Background, c.Lights.Ambient.Color, c.Lights.Hemisphere.Sky, c.Lights.Hemisphere.Ground}
	for _, l := range c.Lights.Directional {
		colours = append(colours, l.Color)
	}
	for _, hex := range colours {
		if _, err := ParseColor(hex); err != nil {
			return err
		}
	}
	return nil
}

// ParseColor converts a "#rrggbb" string into sRGB floats in [0, 1].
// An empty string is black.
func ParseColor(hex string) ([3]float32, error) {
	if hex == "" {
		return [3]float32{}, nil
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return [3]float32{}, fmt.Errorf("colour %q: %w", hex, err)
	}
	return [3]float32{float32(c.R), float32(c.G), float32(c.B)}, nil
}

// MustColor is ParseColor for values already checked by Validate.
func MustColor(hex string) [3]float32 {
	c, err := ParseColor(hex)
	if err != nil {
		return [3]float32{}
	}
	return c
}
