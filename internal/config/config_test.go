package config_test

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/vine/internal/config"
	"github.com/aretw0/vine/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "vine.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "vine.yaml", `
script: scripts/gui.lua
entry_point: render
poll_interval: 250ms
auto_reload: false
strict_args: true
fps: 30
log_level: debug
viewport: [1024, 768]
shape:
  kind: circle
  position: {x: 10, y: 20}
  size: 40
  color: [0, 1, 0]
background: [0.1, 0.1, 0.1, 1]
store:
  kind: redis
  address: localhost:6379
  db: 2
  prefix: "test:"
  ttl: 1h
http:
  addr: ":8080"
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "scripts/gui.lua", cfg.Script)
	assert.Equal(t, "render", cfg.EntryPoint)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.False(t, cfg.AutoReload)
	assert.True(t, cfg.StrictArgs)
	assert.Equal(t, 30, cfg.FPS)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, domain.Vec2{X: 1024, Y: 768}, cfg.Viewport)
	assert.Equal(t, domain.ShapeCircle, cfg.Shape.Kind)
	assert.Equal(t, domain.Vec2{X: 10, Y: 20}, cfg.Shape.Position)
	assert.Equal(t, 40.0, cfg.Shape.Size)
	assert.Equal(t, domain.RGB(0, 1, 0), cfg.Shape.Color)
	assert.Equal(t, domain.RGBA(0.1, 0.1, 0.1, 1), cfg.Background)
	assert.Equal(t, config.StoreRedis, cfg.Store.Kind)
	assert.Equal(t, "localhost:6379", cfg.Store.Address)
	assert.Equal(t, 2, cfg.Store.DB)
	assert.Equal(t, "test:", cfg.Store.Prefix)
	assert.Equal(t, time.Hour, cfg.Store.TTL)
	// Untouched keys keep their defaults
	assert.Equal(t, "host", cfg.Store.Key)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "vine.json", `{"script": "a.lua", "fps": 120, "store": {"kind": "file", "path": "/tmp/snaps"}}`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "a.lua", cfg.Script)
	assert.Equal(t, 120, cfg.FPS)
	assert.Equal(t, config.StoreFile, cfg.Store.Kind)
	assert.Equal(t, "/tmp/snaps", cfg.Store.Path)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "scirpt: gui.lua"},
		{"bad duration", "poll_interval: soon"},
		{"bad colour", "background: [1, 2]"},
		{"bad yaml", "script: [unterminated"},
		{"unknown store", "store: {kind: s3}"},
		{"redis without address", "store: {kind: redis}"},
		{"unknown shape", "shape: {kind: hexagon}"},
		{"zero fps", "fps: 0"},
		{"empty entry point", `entry_point: ""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, "vine.yaml", tt.content))
			assert.Error(t, err)
		})
	}
}

func TestConfig_Scene(t *testing.T) {
	cfg := config.Default()
	scene, err := cfg.Scene()
	require.NoError(t, err)

	shape := scene.Shape()
	require.NotNil(t, shape)
	assert.Equal(t, domain.ShapeSquare, shape.Kind())
	assert.Equal(t, domain.Vec2{X: 150, Y: 150}, shape.Position())
	assert.Equal(t, 50.0, shape.Size())
	assert.Equal(t, domain.RGB(1, 0, 0), shape.Color())
	assert.Equal(t, domain.DefaultBackground, scene.BackgroundColor())
}

func TestStoreConfig_Encryption(t *testing.T) {
	enc, err := config.StoreConfig{}.Encryption()
	require.NoError(t, err)
	assert.Nil(t, enc)

	key := base64.StdEncoding.EncodeToString(make([]byte, 32))
	enc, err = config.StoreConfig{EncryptionKey: key, FallbackKeys: []string{key}}.Encryption()
	require.NoError(t, err)
	assert.Len(t, enc.ActiveKey, 32)
	assert.Len(t, enc.FallbackKeys, 1)

	for name, sc := range map[string]config.StoreConfig{
		"not base64":       {EncryptionKey: "%%%"},
		"short key":        {EncryptionKey: "c2hvcnQ="},
		"fallback only":    {FallbackKeys: []string{key}},
		"bad fallback key": {EncryptionKey: key, FallbackKeys: []string{"c2hvcnQ="}},
	} {
		_, err := sc.Encryption()
		assert.Error(t, err, name)
	}

	path := writeFile(t, "vine.yaml", "store:\n  kind: memory\n  encryption_key: \"%%%\"\n")
	_, err = config.Load(path)
	assert.Error(t, err)
}
