package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/aretw0/vine"
	"github.com/aretw0/vine/internal/config"
	"github.com/aretw0/vine/internal/presentation/tui"
	vinehttp "github.com/aretw0/vine/pkg/adapters/http"
	"github.com/aretw0/vine/pkg/domain"
	"github.com/aretw0/vine/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	Config   config.Config
	Headless bool // no console, signals only
	Debug    bool
	Quiet    bool
	Fresh    bool // drop the stored snapshot before starting
	Stdin    io.Reader
	Stdout   io.Writer
}

// Run starts a host and drives it until interrupted.
func Run(opts RunOptions) error {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return err
	}
	level := cfg.LogLevel
	if opts.Debug {
		level = "debug"
	}
	logger, err := createLogger(level, opts.Quiet)
	if err != nil {
		return err
	}

	interactive := !opts.Headless && isTerminal(opts.Stdout)
	if interactive && !opts.Quiet {
		tui.PrintBanner(opts.Stdout, vine.Version)
	}

	store, closeStore, err := createStore(cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	if opts.Fresh && store != nil {
		if err := store.Delete(sigCtx, cfg.Store.Key); err != nil {
			logger.Warn("failed to drop snapshot", "key", cfg.Store.Key, "err", err)
		}
	}

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	hooks := []domain.LifecycleHooks{metrics.Hooks()}
	if opts.Debug {
		hooks = append(hooks, createDebugHooks(logger))
	}

	var server *vinehttp.Server
	if cfg.HTTP.Addr != "" {
		server = vinehttp.NewServer(nil, vinehttp.WithLogger(logger), vinehttp.WithMetrics(metrics.Handler()))
		hooks = append(hooks, server.Hooks())
	}

	hostOpts, err := createHostOptions(cfg, logger, store, hooks...)
	if err != nil {
		return err
	}
	host, err := vine.New(hostOpts...)
	if err != nil {
		return fmt.Errorf("error initializing host: %w", err)
	}

	var wg sync.WaitGroup
	if server != nil {
		server.Host = host
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := vinehttp.ListenAndServe(sigCtx, cfg.HTTP.Addr, server.Handler(), logger); err != nil {
				logger.Error("control server failed", "err", err)
			}
		}()
	}

	var input vine.InputFunc
	if !opts.Headless {
		render := tui.PlainRenderer
		if interactive {
			if r, err := tui.NewRenderer(0); err == nil {
				render = r
			}
		}
		console := NewConsole(host, opts.Stdout, render, sigCtx.Cancel)
		input = console.Input
		go func() {
			if err := console.Serve(sigCtx, opts.Stdin); err != nil && !isInterrupted(err) {
				logger.Warn("console stopped", "err", err)
			}
		}()
		if !opts.Quiet {
			printSystemMessage(opts.Stdout, "Running %s. Type 'help' for commands.", cfg.Script)
		}
	}

	err = handleExecutionError(host.Run(sigCtx, cfg.FPS, input))
	sigCtx.Cancel()
	wg.Wait()

	if !opts.Quiet {
		switch sig := sigCtx.Signal(); {
		case sig == os.Interrupt:
			printSystemMessage(opts.Stdout, "Interrupted.")
		case sig != nil:
			printSystemMessage(opts.Stdout, "Terminated.")
		default:
			printSystemMessage(opts.Stdout, "Stopped.")
		}
	}
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
