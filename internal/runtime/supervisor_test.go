package runtime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/vine/internal/runtime"
	"github.com/aretw0/vine/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	buttonScript = `
		local counter = 0
		function draw_gui()
			if Gui.Button("Increment") then counter = counter + 1 end
			Gui.Text("v1 " .. counter)
		end
	`
	v2Script = `
		function draw_gui()
			Gui.Text("v2")
		end
	`
	brokenScript = `
		function draw_gui(
			Gui.Text("broken")
		end
	`
	pastInterval = domain.DefaultPollInterval + time.Millisecond
)

func TestSupervisor_ScenarioA_NoScript(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	assert.Equal(t, runtime.OutcomeUnavailable, h.sup.Start(ctx))
	assert.Nil(t, h.sup.Active())

	for i := 0; i < 3; i++ {
		h.clock.Advance(pastInterval)
		_, outcome := h.frame(t)
		assert.Equal(t, runtime.OutcomeUnavailable, outcome)
	}
	assert.Nil(t, h.sup.Active())
	assert.Equal(t, 1, h.logs.Count("script not found, keeping current session"), "missing script is logged once")
	assert.Empty(t, h.hooks.rolledBack)
	assert.Empty(t, h.hooks.committed)

	st := h.sup.Status()
	assert.False(t, st.Loaded)
	assert.Equal(t, uint64(0), st.Generation)
	assert.NoError(t, st.LastError)
}

func TestSupervisor_ScenarioB_ValidScript(t *testing.T) {
	h := newHarness(t, buttonScript)
	require.Equal(t, runtime.OutcomeCommitted, h.sup.Start(context.Background()))
	require.Len(t, h.hooks.committed, 1)
	assert.Equal(t, uint64(1), h.hooks.committed[0].Generation)

	f, _ := h.frame(t)
	assert.Equal(t, []string{"v1 0"}, f.Texts())
	f, _ = h.frame(t, click("Increment"))
	assert.Equal(t, []string{"v1 1"}, f.Texts())
	f, _ = h.frame(t, click("Increment"))
	assert.Equal(t, []string{"v1 2"}, f.Texts())
}

func TestSupervisor_ScenarioC_SyntaxErrorRollsBack(t *testing.T) {
	h := newHarness(t, buttonScript)
	require.Equal(t, runtime.OutcomeCommitted, h.sup.Start(context.Background()))
	h.frame(t, click("Increment"))
	active := h.sup.Active()
	stamp := h.sup.Status().Stamp

	h.src.Write(brokenScript)

	// Not due yet
	h.clock.Advance(domain.DefaultPollInterval / 2)
	f, outcome := h.frame(t)
	assert.Equal(t, runtime.OutcomeNone, outcome)
	assert.Equal(t, []string{"v1 1"}, f.Texts())

	h.clock.Advance(domain.DefaultPollInterval)
	f, outcome = h.frame(t)
	assert.Equal(t, runtime.OutcomeRolledBack, outcome)
	assert.Same(t, active, h.sup.Active(), "a broken script never replaces the active session")
	assert.False(t, active.Closed())
	assert.Equal(t, []string{"v1 1"}, f.Texts(), "previous draw_gui keeps running with its state")
	assert.Equal(t, stamp, h.sup.Status().Stamp)
	assert.Equal(t, 1, h.logs.Count("reload failed, keeping previous session"))

	st := h.sup.Status()
	var loadErr *domain.ScriptLoadError
	require.ErrorAs(t, st.LastError, &loadErr)
	assert.Equal(t, "parse", loadErr.Phase)
	assert.Equal(t, h.clock.Now(), st.LastErrorAt)
	require.Len(t, h.hooks.rolledBack, 1)
	assert.Equal(t, uint64(2), h.hooks.rolledBack[0].Generation)
	require.Len(t, h.hooks.errors, 1)
	assert.Equal(t, domain.KindScriptLoad, h.hooks.errors[0].Kind)

	// The same broken stamp is not validated again by polling
	h.clock.Advance(pastInterval)
	_, outcome = h.frame(t)
	assert.Equal(t, runtime.OutcomeUnchanged, outcome)
	assert.Len(t, h.hooks.rolledBack, 1)

	// A force reload always re-validates
	assert.Equal(t, runtime.OutcomeRolledBack, h.sup.ForceReload(context.Background()))
	assert.Len(t, h.hooks.rolledBack, 2)
	assert.Same(t, active, h.sup.Active())
}

func TestSupervisor_ScenarioD_ValidEditCommits(t *testing.T) {
	h := newHarness(t, buttonScript)
	require.Equal(t, runtime.OutcomeCommitted, h.sup.Start(context.Background()))
	old := h.sup.Active()

	h.src.Write(v2Script)
	h.clock.Advance(pastInterval)
	f, outcome := h.frame(t)

	assert.Equal(t, runtime.OutcomeCommitted, outcome)
	assert.Equal(t, []string{"v2"}, f.Texts(), "the new draw_gui runs in the frame that committed it")
	assert.NotSame(t, old, h.sup.Active())
	assert.True(t, old.Closed(), "the previous session is disposed")

	stamp, err := h.src.Stat()
	require.NoError(t, err)
	st := h.sup.Status()
	assert.Equal(t, stamp, st.Stamp)
	assert.Equal(t, uint64(2), st.Generation)
	assert.Equal(t, runtime.OutcomeCommitted, st.LastOutcome)
	assert.Equal(t, runtime.StateIdle, st.State)

	f, _ = h.frame(t)
	assert.Equal(t, []string{"v2"}, f.Texts())
}

func TestSupervisor_RecoversAfterBrokenEdit(t *testing.T) {
	h := newHarness(t, buttonScript)
	h.sup.Start(context.Background())

	h.src.Write(brokenScript)
	h.clock.Advance(pastInterval)
	_, outcome := h.frame(t)
	require.Equal(t, runtime.OutcomeRolledBack, outcome)

	h.src.Write(v2Script)
	h.clock.Advance(pastInterval)
	f, outcome := h.frame(t)
	assert.Equal(t, runtime.OutcomeCommitted, outcome)
	assert.Equal(t, []string{"v2"}, f.Texts())
	assert.NoError(t, h.sup.Status().LastError)
}

func TestSupervisor_BrokenAtStartupThenFixed(t *testing.T) {
	h := newHarness(t, brokenScript)
	assert.Equal(t, runtime.OutcomeRolledBack, h.sup.Start(context.Background()))
	assert.Nil(t, h.sup.Active())
	assert.Equal(t, 1, h.logs.Count("script failed to load, showing fallback"))

	h.src.Write(v2Script)
	h.clock.Advance(pastInterval)
	f, outcome := h.frame(t)
	assert.Equal(t, runtime.OutcomeCommitted, outcome)
	assert.Equal(t, []string{"v2"}, f.Texts())
	assert.Equal(t, uint64(1), h.sup.Status().Generation)
}

func TestSupervisor_ForceReloadIsIdempotent(t *testing.T) {
	h := newHarness(t, buttonScript)
	ctx := context.Background()
	require.Equal(t, runtime.OutcomeCommitted, h.sup.Start(ctx))
	active := h.sup.Active()

	assert.Equal(t, runtime.OutcomeUnchanged, h.sup.ForceReload(ctx))
	assert.Equal(t, runtime.OutcomeUnchanged, h.sup.ForceReload(ctx))
	assert.Same(t, active, h.sup.Active())
	assert.False(t, active.Closed())
	assert.Equal(t, uint64(1), h.sup.Status().Generation)
	assert.Len(t, h.hooks.committed, 1)

	// A no-op poll leaves it alone as well
	h.clock.Advance(pastInterval)
	_, outcome := h.frame(t)
	assert.Equal(t, runtime.OutcomeUnchanged, outcome)
	assert.Same(t, active, h.sup.Active())
}

func TestSupervisor_AutoReloadDisabled(t *testing.T) {
	h := newHarness(t, buttonScript, runtime.WithPolicy(domain.ReloadPolicy{AutoReload: false}))
	require.Equal(t, runtime.OutcomeCommitted, h.sup.Start(context.Background()))
	assert.Equal(t, domain.DefaultPollInterval, h.sup.Policy().PollInterval)

	h.src.Write(v2Script)
	h.clock.Advance(10 * pastInterval)
	f, outcome := h.frame(t)
	assert.Equal(t, runtime.OutcomeNone, outcome)
	assert.Equal(t, []string{"v1 0"}, f.Texts())

	// Toggling does not reload by itself
	assert.True(t, h.sup.ToggleAutoReload())
	assert.True(t, h.sup.Status().AutoReload)
	assert.Equal(t, 1, h.logs.Count("auto-reload changed"))
	h.sup.SetAutoReload(false)

	// A requested reload bypasses the flag and the interval
	h.sup.RequestReload()
	assert.True(t, h.sup.ReloadPending())
	f, outcome = h.frame(t)
	assert.Equal(t, runtime.OutcomeCommitted, outcome)
	assert.False(t, h.sup.ReloadPending())
	assert.Equal(t, []string{"v2"}, f.Texts())
	assert.True(t, h.hooks.committed[1].Forced)
}

func TestSupervisor_CustomPollInterval(t *testing.T) {
	h := newHarness(t, buttonScript, runtime.WithPolicy(domain.ReloadPolicy{AutoReload: true, PollInterval: 2 * time.Second}))
	h.sup.Start(context.Background())
	h.src.Write(v2Script)

	h.clock.Advance(time.Second)
	_, outcome := h.frame(t)
	assert.Equal(t, runtime.OutcomeNone, outcome)

	// Exactly the interval is not enough
	h.clock.Advance(time.Second)
	_, outcome = h.frame(t)
	assert.Equal(t, runtime.OutcomeNone, outcome)

	h.clock.Advance(time.Millisecond)
	_, outcome = h.frame(t)
	assert.Equal(t, runtime.OutcomeCommitted, outcome)
}

func TestSupervisor_FilesystemQueryError(t *testing.T) {
	h := newHarness(t, buttonScript)
	h.sup.Start(context.Background())
	active := h.sup.Active()

	h.src.Write(v2Script)
	h.src.FailStat(errors.New("input/output error"))
	h.clock.Advance(pastInterval)
	f, outcome := h.frame(t)

	assert.Equal(t, runtime.OutcomeUnavailable, outcome)
	assert.Same(t, active, h.sup.Active())
	assert.Equal(t, []string{"v1 0"}, f.Texts())
	require.Len(t, h.hooks.errors, 1)
	assert.Equal(t, domain.KindFilesystemQuery, h.hooks.errors[0].Kind)
	assert.Equal(t, 1, h.logs.Count("failed to query script"))

	h.src.FailStat(nil)
	h.clock.Advance(pastInterval)
	_, outcome = h.frame(t)
	assert.Equal(t, runtime.OutcomeCommitted, outcome)
}

func TestSupervisor_DeletedScriptKeepsRunning(t *testing.T) {
	h := newHarness(t, buttonScript)
	h.sup.Start(context.Background())
	active := h.sup.Active()

	h.src.Remove()
	for i := 0; i < 2; i++ {
		h.clock.Advance(pastInterval)
		f, outcome := h.frame(t)
		assert.Equal(t, runtime.OutcomeUnavailable, outcome)
		assert.Equal(t, []string{"v1 0"}, f.Texts())
	}
	assert.Same(t, active, h.sup.Active())
	assert.Equal(t, 1, h.logs.Count("script not found, keeping current session"))

	// Recreating it, even with the same content, reloads
	h.src.Write(buttonScript)
	h.clock.Advance(pastInterval)
	_, outcome := h.frame(t)
	assert.Equal(t, runtime.OutcomeCommitted, outcome)
	assert.NotSame(t, active, h.sup.Active())
	assert.Equal(t, 1, h.logs.Count("script found"))
}

func TestSupervisor_CommitAppliesStagedWrites(t *testing.T) {
	h := newHarness(t, `App.SetPosition(5, 6)`)
	require.Equal(t, runtime.OutcomeCommitted, h.sup.Start(context.Background()))
	assert.Equal(t, domain.Vec2{X: 5, Y: 6}, h.scene.Shape().Position())

	h.src.Write(`App.SetPosition(7, 8) error("nope")`)
	h.clock.Advance(pastInterval)
	_, outcome := h.frame(t)
	require.Equal(t, runtime.OutcomeRolledBack, outcome)
	assert.Equal(t, domain.Vec2{X: 5, Y: 6}, h.scene.Shape().Position(), "a rolled back candidate leaves no trace in host state")
}

func TestSupervisor_Close(t *testing.T) {
	h := newHarness(t, buttonScript)
	h.sup.Start(context.Background())
	active := h.sup.Active()

	require.NoError(t, h.sup.Close())
	assert.True(t, active.Closed())
	assert.Nil(t, h.sup.Active())
	assert.NoError(t, h.sup.Close())
}
