package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"mural/internal/config"
	"mural/internal/daemon"
	"mural/internal/engine"
	"mural/internal/ipc"
	"mural/internal/journal"
	"mural/internal/logging"
	"mural/internal/notifications"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "murald.pid")
	if err := writePIDFile(pidPath); err != nil {
		logging.WarnWithContext(logger, "unable to write pid file", err,
			logging.String("path", pidPath))
	} else {
		defer os.Remove(pidPath)
	}

	store, err := journal.Open(cfg)
	if err != nil {
		logging.WarnWithContext(logger, "journal unavailable", err,
			logging.String(logging.FieldImpact, "runs will not appear in history"))
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	eng := engine.New(cfg, logger, store, notifications.NewService(cfg))

	d, err := daemon.New(cfg, eng, logger)
	if err != nil {
		logging.ErrorWithContext(logger, "create daemon", err)
		os.Exit(1)
	}

	ipcServer, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, d, cancel, logger)
	if err != nil {
		logging.ErrorWithContext(logger, "start IPC server", err)
		os.Exit(1)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(ctx); err != nil {
		logging.ErrorWithContext(logger, "daemon start", err,
			logging.String(logging.FieldErrorHint, "is another murald instance running?"))
		os.Exit(1)
	}
	defer d.Stop()

	<-ctx.Done()
	logger.Info("murald shutting down")
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
