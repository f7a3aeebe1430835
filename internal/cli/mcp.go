package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/vine"
	"github.com/aretw0/vine/internal/config"
	"github.com/aretw0/vine/pkg/adapters/mcp"
	"github.com/aretw0/vine/pkg/domain"
)

// MCPOptions configures the mcp command.
type MCPOptions struct {
	Config    config.Config
	Transport string // stdio or sse
	Port      int
	Debug     bool
}

// RunMCP drives a headless host and exposes it as MCP tools.
func RunMCP(opts MCPOptions) error {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return err
	}
	level := cfg.LogLevel
	if opts.Debug {
		level = "debug"
	}
	// Logs go to stderr, stdout carries JSON-RPC
	logger, err := createLogger(level, false)
	if err != nil {
		return err
	}

	store, closeStore, err := createStore(cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	var hooks []domain.LifecycleHooks
	if opts.Debug {
		hooks = append(hooks, createDebugHooks(logger))
	}
	hostOpts, err := createHostOptions(cfg, logger, store, hooks...)
	if err != nil {
		return err
	}
	host, err := vine.New(hostOpts...)
	if err != nil {
		return fmt.Errorf("error initializing host: %w", err)
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := handleExecutionError(host.Run(sigCtx, cfg.FPS, nil)); err != nil {
			logger.Error("frame loop failed", "err", err)
		}
	}()
	defer wg.Wait()
	defer sigCtx.Cancel()

	srv := mcp.NewServer(host, logger)
	switch opts.Transport {
	case "", "stdio":
		logger.Info("Starting vine MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		logger.Info("Starting vine MCP server (SSE)", "port", opts.Port)
		return srv.ServeSSE(sigCtx, opts.Port)
	default:
		return fmt.Errorf("unknown transport %q, supported: stdio, sse", opts.Transport)
	}
}
