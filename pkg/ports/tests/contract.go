package tests

import (
	"errors"
	"testing"

	"github.com/aretw0/vine/pkg/domain"
	"github.com/aretw0/vine/pkg/ports"
)

// SourceFixture wraps a ScriptSource with the hooks the contract needs to
// change what the source serves.
type SourceFixture struct {
	Source ports.ScriptSource
	Write  func(t *testing.T, content string)
	Remove func(t *testing.T)
}

// ScriptSourceContractTest is a reusable test suite that verifies if an adapter complies with ports.ScriptSource.
// The fixture must start with no script present.
func ScriptSourceContractTest(t *testing.T, fx SourceFixture) {
	t.Helper()

	// 1. Missing script
	t.Run("Missing", func(t *testing.T) {
		if _, err := fx.Source.Stat(); !isNotFound(err) {
			t.Fatalf("expected ErrScriptNotFound from Stat, got %v", err)
		}
		if _, _, err := fx.Source.Read(); !isNotFound(err) {
			t.Fatalf("expected ErrScriptNotFound from Read, got %v", err)
		}
	})

	// 2. Read matches Stat
	t.Run("Read_Stamp", func(t *testing.T) {
		fx.Write(t, "function draw_gui() end")

		content, stamp, err := fx.Source.Read()
		if err != nil {
			t.Fatalf("unexpected error reading: %v", err)
		}
		if string(content) != "function draw_gui() end" {
			t.Errorf("content mismatch. got %q", content)
		}
		statStamp, err := fx.Source.Stat()
		if err != nil {
			t.Fatalf("unexpected error from Stat: %v", err)
		}
		if statStamp != stamp {
			t.Errorf("stamp mismatch. Stat %v, Read %v", statStamp, stamp)
		}
		if stamp.IsZero() {
			t.Error("expected a non-zero stamp for an existing script")
		}
	})

	// 3. A change yields a different stamp
	t.Run("Change_Stamp", func(t *testing.T) {
		before, err := fx.Source.Stat()
		if err != nil {
			t.Fatalf("unexpected error from Stat: %v", err)
		}
		fx.Write(t, "function draw_gui() Gui.Text('changed') end")

		after, err := fx.Source.Stat()
		if err != nil {
			t.Fatalf("unexpected error from Stat: %v", err)
		}
		if before == after {
			t.Errorf("expected stamp to change, still %v", after)
		}
	})

	// 4. Removal
	t.Run("Remove", func(t *testing.T) {
		fx.Remove(t)
		if _, err := fx.Source.Stat(); !isNotFound(err) {
			t.Fatalf("expected ErrScriptNotFound after removal, got %v", err)
		}
	})
}

func isNotFound(err error) bool {
	return err != nil && errors.Is(err, domain.ErrScriptNotFound)
}
