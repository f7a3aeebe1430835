package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/vine"
	"github.com/aretw0/vine/internal/runtime"
	"github.com/aretw0/vine/pkg/adapters/file"
	"github.com/aretw0/vine/pkg/domain"
	"github.com/aretw0/vine/pkg/gui"
)

// ValidateReport describes a script checked without running a frame.
type ValidateReport struct {
	Path          string
	Loaded        bool
	Err           error
	HasEntryPoint bool
	HasCallback   bool
}

// Validate loads the script at path into a throwaway session. Load-time
// writes to host state are discarded, so validating never has side effects.
func Validate(ctx context.Context, path, entryPoint string, strict bool) ValidateReport {
	if entryPoint == "" {
		entryPoint = runtime.DefaultEntryPoint
	}
	rec := gui.NewRecorder()
	session := runtime.Construct(ctx, runtime.SessionConfig{
		Source:   file.NewSource(path),
		GUI:      rec,
		State:    vine.DefaultScene(),
		Viewport: vine.DefaultViewport,
		Strict:   strict,
	})
	defer func() {
		session.Discard()
		_ = session.Dispose()
	}()

	return ValidateReport{
		Path:          path,
		Loaded:        session.Loaded(),
		Err:           session.LoadErr(),
		HasEntryPoint: session.HasFunction(entryPoint),
		HasCallback:   session.HasFunction(runtime.ShapeMovedCallback),
	}
}

// PrintValidateReport writes a human readable report and returns an error
// when the script would not load.
func PrintValidateReport(w io.Writer, r ValidateReport, entryPoint string) error {
	if entryPoint == "" {
		entryPoint = runtime.DefaultEntryPoint
	}
	if !r.Loaded {
		fmt.Fprintf(w, "%s: does not load\n", r.Path)
		var unavailable *domain.ScriptUnavailableError
		if errors.As(r.Err, &unavailable) {
			return fmt.Errorf("script unavailable: %w", r.Err)
		}
		return r.Err
	}
	fmt.Fprintf(w, "%s: loads\n", r.Path)
	fmt.Fprintf(w, "  %s(): %s\n", entryPoint, present(r.HasEntryPoint))
	fmt.Fprintf(w, "  %s(x, y): %s\n", runtime.ShapeMovedCallback, present(r.HasCallback))
	if !r.HasEntryPoint {
		fmt.Fprintln(w, "  the host will show its fallback GUI")
	}
	return nil
}

func present(ok bool) string {
	if ok {
		return "defined"
	}
	return "missing"
}

// PrintCapabilities renders the capability reference.
func PrintCapabilities(w io.Writer, render func(string) (string, error)) error {
	out, err := render(runtime.DefaultTable().Reference())
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
