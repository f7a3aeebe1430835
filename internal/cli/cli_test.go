package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/vine"
	"github.com/aretw0/vine/internal/config"
	"github.com/aretw0/vine/internal/presentation/tui"
	"github.com/aretw0/vine/pkg/adapters/memory"
	"github.com/aretw0/vine/pkg/gui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want *Command
	}{
		{"", nil},
		{"r", &Command{Kind: CmdKey, Key: vine.KeyF5}},
		{"reload", &Command{Kind: CmdKey, Key: vine.KeyF5}},
		{"F5", &Command{Kind: CmdKey, Key: vine.KeyF5}},
		{"ctrl+r", &Command{Kind: CmdKey, Key: vine.KeyCtrlR}},
		{"auto", &Command{Kind: CmdKey, Key: vine.KeyF6}},
		{"f6", &Command{Kind: CmdKey, Key: vine.KeyF6}},
		{"status", &Command{Kind: CmdStatus}},
		{"frame", &Command{Kind: CmdFrame}},
		{"save", &Command{Kind: CmdSave}},
		{"quit", &Command{Kind: CmdQuit}},
		{"click Click me!", &Command{Kind: CmdInteract, Interaction: gui.Interaction{Action: gui.ActionClick, Label: "Click me!"}}},
		{"set Value 0.25", &Command{Kind: CmdInteract, Interaction: gui.Interaction{Action: gui.ActionSet, Label: "Value", Value: 0.25}}},
		{"set Auto-reload false", &Command{Kind: CmdInteract, Interaction: gui.Interaction{Action: gui.ActionSet, Label: "Auto-reload", Value: false}}},
		{"set Name hello", &Command{Kind: CmdInteract, Interaction: gui.Interaction{Action: gui.ActionSet, Label: "Name", Value: "hello"}}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"click", "set Value", "dance"} {
		_, err := ParseCommand(bad)
		assert.Error(t, err, bad)
	}
}

func TestConsole(t *testing.T) {
	src := memory.NewSourceWith("gui.lua", `function draw_gui() Gui.Text("hi") end`)
	host, err := vine.New(vine.WithScriptSource(src))
	require.NoError(t, err)
	defer host.Close(context.Background())

	var out bytes.Buffer
	quit := false
	console := NewConsole(host, &out, tui.PlainRenderer, func() { quit = true })
	ctx := context.Background()

	assert.False(t, console.Exec(ctx, "frame"))
	assert.Contains(t, out.String(), "no frame drawn yet")

	host.Frame(ctx, console.Input())
	assert.False(t, console.Exec(ctx, "frame"))
	assert.Contains(t, out.String(), "hi")

	assert.False(t, console.Exec(ctx, "r"))
	assert.False(t, console.Exec(ctx, "f6"))
	assert.Equal(t, []vine.Key{vine.KeyF5, vine.KeyF6}, console.Input().Keys)
	assert.Empty(t, console.Input().Keys)

	out.Reset()
	console.Exec(ctx, "status")
	assert.Contains(t, out.String(), "gui.lua running")

	out.Reset()
	console.Exec(ctx, "save")
	assert.Contains(t, out.String(), "no snapshot store configured")

	out.Reset()
	console.Exec(ctx, "bogus")
	assert.Contains(t, out.String(), "unknown command")

	assert.True(t, console.Exec(ctx, "q"))
	assert.True(t, quit)
}

func TestConsole_ServeStopsOnQuit(t *testing.T) {
	host, err := vine.New(vine.WithScriptSource(memory.NewSource("gui.lua")))
	require.NoError(t, err)
	defer host.Close(context.Background())

	var out bytes.Buffer
	console := NewConsole(host, &out, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = console.Serve(ctx, strings.NewReader("help\nquit\nstatus\n"))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Commands:")
	assert.NotContains(t, out.String(), "gui.lua")
}

func TestCreateStore(t *testing.T) {
	for _, kind := range []string{config.StoreMemory, config.StoreFile} {
		store, closeFn, err := createStore(config.StoreConfig{Kind: kind, Path: t.TempDir()})
		require.NoError(t, err, kind)
		assert.NotNil(t, store, kind)
		assert.NoError(t, closeFn())
	}

	store, closeFn, err := createStore(config.StoreConfig{})
	require.NoError(t, err)
	assert.Nil(t, store)
	assert.NoError(t, closeFn())

	_, _, err = createStore(config.StoreConfig{Kind: "s3"})
	assert.Error(t, err)
}

func TestCreateStore_Encrypted(t *testing.T) {
	dir := t.TempDir()
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
	ctx := context.Background()

	store, closeFn, err := createStore(config.StoreConfig{Kind: config.StoreFile, Path: dir, EncryptionKey: key})
	require.NoError(t, err)
	defer closeFn()

	snap := vine.DefaultScene().Snapshot()
	require.NoError(t, store.Save(ctx, "host", &snap))

	raw, err := os.ReadFile(filepath.Join(dir, "host.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"sealed"`)
	assert.NotContains(t, string(raw), `"shape"`)

	loaded, err := store.Load(ctx, "host")
	require.NoError(t, err)
	assert.Equal(t, snap.Shape, loaded.Shape)

	_, _, err = createStore(config.StoreConfig{Kind: config.StoreMemory, EncryptionKey: "c2hvcnQ="})
	assert.Error(t, err)
}

func TestCreateStore_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	store, closeFn, err := createStore(config.StoreConfig{
		Kind:    config.StoreRedis,
		Address: mr.Addr(),
		Prefix:  "test:",
		TTL:     time.Minute,
	})
	require.NoError(t, err)
	defer closeFn()

	snap := vine.DefaultScene().Snapshot()
	require.NoError(t, store.Save(context.Background(), "host", &snap))
	assert.True(t, mr.Exists("test:host"))
}

func TestCreateHostOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Script = "gui.lua"

	opts, err := createHostOptions(cfg, nil, nil)
	require.NoError(t, err)
	host, err := vine.New(opts...)
	require.NoError(t, err)
	defer host.Close(context.Background())

	st := host.Status()
	assert.Equal(t, "gui.lua", st.Script)
	assert.True(t, st.AutoReload)

	cfg.Shape.Kind = "hexagon"
	_, err = createHostOptions(cfg, nil, nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}
	ctx := context.Background()

	t.Run("complete script", func(t *testing.T) {
		path := write("ok.lua", `
function draw_gui() end
function OnHostShapePositionUpdated(x, y) end
`)
		report := Validate(ctx, path, "", false)
		assert.True(t, report.Loaded)
		assert.True(t, report.HasEntryPoint)
		assert.True(t, report.HasCallback)

		var out bytes.Buffer
		require.NoError(t, PrintValidateReport(&out, report, ""))
		assert.Contains(t, out.String(), "draw_gui(): defined")
	})

	t.Run("no entry point", func(t *testing.T) {
		report := Validate(ctx, write("empty.lua", `x = 1`), "", false)
		assert.True(t, report.Loaded)
		assert.False(t, report.HasEntryPoint)

		var out bytes.Buffer
		require.NoError(t, PrintValidateReport(&out, report, ""))
		assert.Contains(t, out.String(), "fallback GUI")
	})

	t.Run("syntax error", func(t *testing.T) {
		report := Validate(ctx, write("bad.lua", `function draw_gui(`), "", false)
		assert.False(t, report.Loaded)
		assert.Error(t, PrintValidateReport(&bytes.Buffer{}, report, ""))
	})

	t.Run("missing file", func(t *testing.T) {
		report := Validate(ctx, filepath.Join(dir, "nope.lua"), "", false)
		assert.False(t, report.Loaded)
		assert.Error(t, PrintValidateReport(&bytes.Buffer{}, report, ""))
	})
}

func TestPrintCapabilities(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, PrintCapabilities(&out, tui.PlainRenderer))
	assert.Contains(t, out.String(), "Gui.Begin")
	assert.Contains(t, out.String(), "App.SetPosition")
}

func TestRun_Headless(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "gui.lua")
	require.NoError(t, os.WriteFile(script, []byte(`function draw_gui() end`), 0644))

	cfg := config.Default()
	cfg.Script = script
	cfg.Store = config.StoreConfig{Kind: config.StoreFile, Path: filepath.Join(dir, "snaps"), Key: "test"}

	// The console quits the host after reading stdin
	var out bytes.Buffer
	err := Run(RunOptions{
		Config: cfg,
		Quiet:  true,
		Stdin:  strings.NewReader("quit\n"),
		Stdout: &out,
	})
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "snaps", "test.json"))
	assert.NoError(t, err, "the snapshot is saved on exit")
}

func TestExampleScriptAndConfig(t *testing.T) {
	cfg, err := config.Load(filepath.Join("..", "..", "examples", "basic", "vine.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.StoreFile, cfg.Store.Kind)

	report := Validate(context.Background(), filepath.Join("..", "..", "examples", "basic", cfg.Script), cfg.EntryPoint, true)
	require.NoError(t, report.Err)
	assert.True(t, report.HasEntryPoint)
	assert.True(t, report.HasCallback)
}
