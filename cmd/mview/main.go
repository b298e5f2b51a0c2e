// mview displays a markdown file in a long-lived localhost viewer. The
// first invocation becomes the daemon; later invocations hand their file
// path to it over a unix socket and exit immediately.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/b/mview/pkg/config"
	"github.com/b/mview/pkg/daemon"
	"github.com/b/mview/pkg/document"
	"github.com/b/mview/pkg/events"
	"github.com/b/mview/pkg/paths"
	"github.com/b/mview/pkg/preview"
	"github.com/b/mview/pkg/viewer"
)

// Build info (set via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	noTruncate  = pflag.Bool("no-truncate", false, "Render entire file regardless of size")
	showVersion = pflag.BoolP("version", "v", false, "Show version information")
	port        = pflag.Int("port", 0, "Preview server port (overrides config)")
)

func usage() {
	fmt.Fprintf(os.Stderr, "mview - a minimal markdown viewer\n\n")
	fmt.Fprintf(os.Stderr, "Usage: mview [options] [file.md]\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	pflag.PrintDefaults()
}

func main() {
	pflag.Usage = usage
	pflag.Parse()

	if *showVersion {
		fmt.Printf("mview %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}

	cfg, err := config.LoadConfigOrDefault(config.DefaultConfigPath())
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	// CLI wins on conflict; true from either side disables truncation.
	noTrunc := *noTruncate || cfg.NoTruncate

	statePath := config.StateFilePath()
	fileArg := pflag.Arg(0)
	if fileArg == "" {
		// Bare invocation reopens the last viewed file, like a window
		// restoring its previous contents.
		fileArg = config.LoadState(statePath).LastFile
	}

	var initialPath string
	if fileArg != "" {
		abs, err := filepath.Abs(fileArg)
		if err != nil {
			log.Fatalf("Error resolving path: %v", err)
		}
		if _, err := os.Stat(abs); err != nil {
			log.Fatalf("Error: file not found: %s", fileArg)
		}
		if canonical, err := filepath.EvalSymlinks(abs); err == nil {
			abs = canonical
		}

		// Peer handoff: if a daemon is already running it takes the file
		// and this process is done.
		if daemon.SendToPeer(paths.SocketPath(), abs) {
			return
		}
		initialPath = abs
	}

	if _, err := paths.EnsureRuntimeDir(); err != nil {
		log.Fatalf("Error: %v", err)
	}

	bus := events.NewChannel(16)
	ctrl := viewer.New(document.LoadOptions{
		LargeFileThreshold: cfg.LargeFileThreshold,
		NoTruncate:         noTrunc,
	}, bus)

	if initialPath != "" {
		if err := ctrl.Load(initialPath); err != nil {
			log.Fatalf("Error: %v", err)
		}
	}

	srv := daemon.NewServer(paths.SocketPath(), ctrl.HandlePeerPath)
	if err := srv.Start(); err != nil {
		// Lost the startup race: another process bound the socket between
		// our handshake attempt and now. Hand the file over instead.
		if initialPath != "" && daemon.SendToPeer(paths.SocketPath(), initialPath) {
			return
		}
		log.Fatalf("Error starting daemon listener: %v", err)
	}

	pv := preview.NewServer(ctrl, cfg.Extensions.PlantUML)
	go pv.Forward(bus.Events())

	previewPort := cfg.Preview.Port
	if *port > 0 {
		previewPort = *port
	}
	addr := fmt.Sprintf("localhost:%d", previewPort)
	httpSrv := pv.NewHTTPServer(addr)

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigint
		log.Println("shutting down")

		srv.Stop()
		ctrl.Close()

		if doc, ok := ctrl.Snapshot(); ok {
			st := config.ViewerState{LastFile: doc.Path, Port: previewPort}
			if err := config.SaveState(statePath, st); err != nil {
				log.Printf("cannot persist viewer state: %v", err)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(ctx); err != nil {
			log.Printf("server shutdown error: %v", err)
		}
	}()

	fmt.Printf("mview at http://%s\n", addr)
	if initialPath != "" {
		fmt.Printf("Viewing %s\n", initialPath)
	}
	fmt.Println("Press Ctrl+C to quit")

	if err := httpSrv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
