package ipc_test

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"mural/internal/daemon"
	"mural/internal/engine"
	"mural/internal/ipc"
	"mural/internal/logging"
	"mural/internal/testsupport"
)

type stubRunner struct {
	runs atomic.Int64
}

func (s *stubRunner) RunOnce(context.Context) (engine.Status, error) {
	s.runs.Add(1)
	return engine.StatusApplied, nil
}

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Schedule.RunOnStartup = false
	cfg.Schedule.IntervalValue = time.Hour
	logger := logging.NewNop()

	runner := &stubRunner{}
	d, err := daemon.New(cfg, runner, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(d.Stop)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, d, nil, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(cfg.Paths.SocketPath)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running {
		t.Fatal("expected Running=true")
	}
	if status.PID == 0 {
		t.Fatal("expected a PID in the status")
	}

	runResp, err := client.RunNow()
	if err != nil {
		t.Fatalf("RunNow RPC failed: %v", err)
	}
	if !runResp.Triggered {
		t.Fatalf("expected Triggered=true, message=%s", runResp.Message)
	}

	deadline := time.After(2 * time.Second)
	for runner.runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("triggered run never happened")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// Topic unset: the test endpoint reports without sending.
	notifyResp, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification RPC failed: %v", err)
	}
	if notifyResp.Sent {
		t.Fatal("expected Sent=false without a configured topic")
	}

	stopResp, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop RPC failed: %v", err)
	}
	if !stopResp.Stopped {
		t.Fatal("expected Stopped=true")
	}
}

func TestStopInvokesShutdownCallback(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Schedule.RunOnStartup = false
	logger := logging.NewNop()

	d, err := daemon.New(cfg, &stubRunner{}, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var stopped atomic.Bool
	srv, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, d, func() { stopped.Store(true) }, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(cfg.Paths.SocketPath)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	if _, err := client.Stop(); err != nil {
		t.Fatalf("Stop RPC failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for !stopped.Load() {
		select {
		case <-deadline:
			t.Fatal("shutdown callback never invoked")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
