package app

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/atotto/clipboard"

	"devserve/config"
	"devserve/log"
	"devserve/web"
)

// Run is the main entrypoint into the application. It serves until one of the
// shutdown signals arrives or ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, web.ShutdownSignals...)
	defer stop()
	return run(ctx, cfg, os.Stdout)
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	root := cfg.Root
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	if _, err := os.Stat(root); err != nil {
		return err
	}

	server := web.NewServer(cfg)
	ln, err := server.Listen()
	if err != nil {
		return err
	}

	log.InfoLog.Printf("listening on %s, serving %s", ln.Addr(), root)
	printBanner(out, root, server.URL())

	if cfg.CopyURL {
		if err := clipboard.WriteAll(server.URL()); err != nil {
			log.WarningLog.Printf("could not copy URL to clipboard: %v", err)
		}
	}

	if err := server.Serve(ctx, ln); err != nil {
		log.ErrorLog.Printf("server error: %v", err)
		return err
	}

	printStopped(out)
	return nil
}
