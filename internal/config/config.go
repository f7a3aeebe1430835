// Package config loads vine.yaml.
package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/vine/pkg/domain"
	"github.com/aretw0/vine/pkg/persistence/middleware"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "vine.yaml"

// Store kinds.
const (
	StoreNone   = ""
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the host configuration.
type Config struct {
	Script       string        `mapstructure:"script" yaml:"script"`
	EntryPoint   string        `mapstructure:"entry_point" yaml:"entry_point"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	AutoReload   bool          `mapstructure:"auto_reload" yaml:"auto_reload"`
	StrictArgs   bool          `mapstructure:"strict_args" yaml:"strict_args"`
	FPS          int           `mapstructure:"fps" yaml:"fps"`
	LogLevel     string        `mapstructure:"log_level" yaml:"log_level"`
	Viewport     domain.Vec2   `mapstructure:"viewport" yaml:"viewport"`
	Shape        ShapeConfig   `mapstructure:"shape" yaml:"shape"`
	Background   domain.Color  `mapstructure:"background" yaml:"background"`
	Store        StoreConfig   `mapstructure:"store" yaml:"store"`
	HTTP         HTTPConfig    `mapstructure:"http" yaml:"http"`
}

// ShapeConfig is the initial managed shape.
type ShapeConfig struct {
	Kind     string       `mapstructure:"kind" yaml:"kind"`
	Position domain.Vec2  `mapstructure:"position" yaml:"position"`
	Size     float64      `mapstructure:"size" yaml:"size"`
	Color    domain.Color `mapstructure:"color" yaml:"color"`
}

// StoreConfig selects where host snapshots are kept.
type StoreConfig struct {
	Kind     string        `mapstructure:"kind" yaml:"kind"`
	Key      string        `mapstructure:"key" yaml:"key"`
	Path     string        `mapstructure:"path" yaml:"path"`
	Address  string        `mapstructure:"address" yaml:"address"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`

	// EncryptionKey is a base64 AES-256 key. When set, snapshots are sealed.
	EncryptionKey string   `mapstructure:"encryption_key" yaml:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys" yaml:"fallback_keys"`
}

// Encryption decodes the configured keys. It returns nil when encryption
// is off.
func (s StoreConfig) Encryption() (*middleware.EncryptionConfig, error) {
	if s.EncryptionKey == "" {
		if len(s.FallbackKeys) > 0 {
			return nil, fmt.Errorf("store.fallback_keys requires store.encryption_key")
		}
		return nil, nil
	}
	active, err := base64.StdEncoding.DecodeString(s.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("store.encryption_key: %w", err)
	}
	enc := &middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range s.FallbackKeys {
		key, err := base64.StdEncoding.DecodeString(k)
		if err != nil {
			return nil, fmt.Errorf("store.fallback_keys[%d]: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return enc, enc.Validate()
}

// HTTPConfig configures the control server. An empty Addr disables it.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Script:       "gui.lua",
		EntryPoint:   "draw_gui",
		PollInterval: domain.DefaultPollInterval,
		AutoReload:   true,
		FPS:          60,
		LogLevel:     "info",
		Viewport:     domain.Vec2{X: 800, Y: 600},
		Shape: ShapeConfig{
			Kind:     domain.ShapeSquare,
			Position: domain.Vec2{X: 150, Y: 150},
			Size:     50,
			Color:    domain.RGB(1, 0, 0),
		},
		Background: domain.DefaultBackground,
		Store: StoreConfig{
			Key: "host",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
// JSON is accepted for .json files, YAML otherwise.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	raw := make(map[string]any)
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	if err := Decode(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Decode applies a loosely typed map onto cfg. Durations may be strings
// ("250ms"); colours and vectors may be arrays. Unknown keys are rejected.
func Decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			domain.DecodeHook,
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Validate checks values the host cannot work with.
func (c Config) Validate() error {
	if c.Script == "" {
		return fmt.Errorf("script is required")
	}
	if c.EntryPoint == "" {
		return fmt.Errorf("entry_point cannot be empty")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.Viewport.X <= 0 || c.Viewport.Y <= 0 {
		return fmt.Errorf("viewport must be positive, got %vx%v", c.Viewport.X, c.Viewport.Y)
	}
	if _, err := domain.NewShape(c.Shape.Kind); err != nil {
		return err
	}
	switch c.Store.Kind {
	case StoreNone, StoreMemory, StoreFile:
	case StoreRedis:
		if c.Store.Address == "" {
			return fmt.Errorf("store.address is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown store kind %q", c.Store.Kind)
	}
	if _, err := c.Store.Encryption(); err != nil {
		return err
	}
	return nil
}

// Scene builds the initial scene described by the config.
func (c Config) Scene() (*domain.Scene, error) {
	shape, err := domain.NewShape(c.Shape.Kind)
	if err != nil {
		return nil, err
	}
	shape.SetPosition(c.Shape.Position.X, c.Shape.Position.Y)
	shape.SetSize(c.Shape.Size)
	shape.SetColor(c.Shape.Color)
	return domain.NewScene(shape, c.Background), nil
}
