package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	wl "github.com/ehrlich-b/go-wl"
)

func main() {
	var (
		display  = flag.String("display", "", "WAYLAND_DISPLAY name to listen on (default: wayland-1)")
		verbose  = flag.Bool("v", false, "Verbose output")
		showStat = flag.Duration("stats", 0, "Print metrics at this interval (0 disables)")
		extFile  = flag.String("extensions", "", "YAML catalog of extension interfaces")
		extName  = flag.String("advertise", "", "Extension interface from the catalog to advertise, as name@version (e.g. wl_shm@1)")
	)
	flag.Parse()

	if *display != "" {
		os.Setenv("WAYLAND_DISPLAY", *display)
	}

	// Set up logging
	logConfig := &wl.LogConfig{Level: wl.LevelInfo, Output: os.Stderr}
	if *verbose {
		logConfig.Level = wl.LevelDebug
	}
	logger := wl.NewLogger(logConfig)
	wl.SetDefaultLogger(logger)

	metrics := wl.NewMetrics()

	hooks := wl.Hooks{
		OnClientConnected: func(cs *wl.ClientState) {
			logger.Info("client connected", "client", cs.ID())
		},
		OnClientDisconnected: func(cs *wl.ClientState) {
			logger.Info("client disconnected", "client", cs.ID())
		},
		OnSurfaceCreated: func(cs *wl.ClientState, surfaceID uint32) {
			logger.Info("surface created", "client", cs.ID(), "surface", surfaceID)
		},
		OnSurfaceDestroyed: func(cs *wl.ClientState, surfaceID uint32) {
			logger.Info("surface destroyed", "client", cs.ID(), "surface", surfaceID)
		},
	}

	catalog := wl.NewCatalog()
	if *extFile != "" {
		if err := catalog.LoadYAMLFile(*extFile); err != nil {
			logger.Error("failed to load extension catalog", "error", err)
			os.Exit(1)
		}
	}

	srv := wl.NewServer(wl.ServerOptions{
		Logger:   logger,
		Catalog:  catalog,
		Hooks:    hooks,
		Observer: wl.NewMetricsObserver(metrics),
	})
	srv.AddCompositorGlobal(6)

	if *extName != "" {
		name, version, err := parseAdvertise(*extName)
		if err != nil {
			logger.Error("bad -advertise value", "error", err)
			os.Exit(1)
		}
		if _, err := srv.AddGlobalFromCatalog(name, version); err != nil {
			logger.Error("failed to advertise extension", "error", err)
			os.Exit(1)
		}
		logger.Info("advertising extension", "interface", name, "version", version)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- wl.ListenAndServe(ctx, srv)
	}()

	fmt.Printf("Compositor listening (WAYLAND_DISPLAY defaults to %s)\n", wl.DefaultServerDisplay)
	fmt.Printf("Press Ctrl+C to stop...\n")
	fmt.Printf("Send SIGUSR1 (kill -USR1 %d) to dump goroutine stacks\n", os.Getpid())

	// Set up SIGUSR1 handler for stack trace dumps
	stackDumpCh := make(chan os.Signal, 1)
	signal.Notify(stackDumpCh, syscall.SIGUSR1)
	go func() {
		for range stackDumpCh {
			buf := make([]byte, 1<<20)
			n := runtime.Stack(buf, true)
			fmt.Fprintf(os.Stderr, "\n=== FULL GOROUTINE STACK DUMP ===\n%s\n=== END STACK DUMP ===\n\n", buf[:n])

			filename := fmt.Sprintf("wl-stacks-%d.txt", time.Now().Unix())
			if f, err := os.Create(filename); err == nil {
				fmt.Fprintf(f, "Goroutine stack dump at %s\n", time.Now().Format(time.RFC3339))
				fmt.Fprintf(f, "Process ID: %d\n\n", os.Getpid())
				f.Write(buf[:n])
				fmt.Fprintf(f, "\n\n=== GOROUTINE PROFILE ===\n")
				pprof.Lookup("goroutine").WriteTo(f, 2)
				f.Close()
				logger.Info("stack trace written to file", "file", filename)
			}
		}
	}()

	var statTick <-chan time.Time
	if *showStat > 0 {
		t := time.NewTicker(*showStat)
		defer t.Stop()
		statTick = t.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal")
			cancel()
			if err := <-serveErr; err != nil && err != context.Canceled {
				logger.Error("serve error during shutdown", "error", err)
				os.Exit(1)
			}
			metrics.Stop()
			snap := metrics.Snapshot()
			logger.Info("final stats",
				"sent", snap.MessagesSent,
				"received", snap.MessagesReceived,
				"binds", snap.Binds,
				"roundtrips_observed", snap.Roundtrips)
			return
		case err := <-serveErr:
			if err != nil && err != context.Canceled {
				logger.Error("serve error", "error", err)
				os.Exit(1)
			}
			return
		case <-statTick:
			snap := metrics.Snapshot()
			logger.Info("stats",
				"sent", snap.MessagesSent,
				"received", snap.MessagesReceived,
				"drops", snap.Drops,
				"binds", snap.Binds)
		}
	}
}

// parseAdvertise splits a name@version flag value like "wl_shm@1".
func parseAdvertise(s string) (string, uint32, error) {
	name, verStr, ok := strings.Cut(s, "@")
	if !ok || name == "" {
		return "", 0, fmt.Errorf("want name@version, got %q", s)
	}
	v, err := strconv.ParseUint(verStr, 10, 32)
	if err != nil {
		return "", 0, fmt.Errorf("bad version in %q: %v", s, err)
	}
	return name, uint32(v), nil
}
