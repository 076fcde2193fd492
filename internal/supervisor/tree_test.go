// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSupervisorTree_Defaults(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("root supervisor should not be nil")
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want defaults", tree.config)
	}

	custom, _ := NewSupervisorTree(quietLogger(), TreeConfig{FailureThreshold: 2, ShutdownTimeout: time.Second})
	if custom.config.FailureThreshold != 2 || custom.config.ShutdownTimeout != time.Second {
		t.Errorf("explicit values overwritten: %+v", custom.config)
	}
	if custom.config.FailureDecay != 30 || custom.config.FailureBackoff != 15*time.Second {
		t.Errorf("zero values not defaulted: %+v", custom.config)
	}
}

func TestSupervisorTree_StartsEveryLayer(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})

	janitor := newMockService("stats-cache-janitor")
	hub := newMockService("websocket-hub")
	server := newMockService("http-server")
	tree.AddBackgroundService(janitor)
	tree.AddMessagingService(hub)
	tree.AddAPIService(server)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	for _, svc := range []*mockService{janitor, hub, server} {
		waitFor(t, svc.String()+" start", func() bool { return svc.starts() == 1 })
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down in time")
	}
	if _, open := <-errCh; open {
		t.Error("error channel not closed after the result")
	}

	for _, svc := range []*mockService{janitor, hub, server} {
		if svc.stops() != 1 {
			t.Errorf("%s stops = %d", svc, svc.stops())
		}
	}
}

func TestSupervisorTree_RestartsFailingServiceInIsolation(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	scheduler := newMockService("scheduler")
	scheduler.setFailCount(2)
	server := newMockService("http-server")
	tree.AddBackgroundService(scheduler)
	tree.AddAPIService(server)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	waitFor(t, "scheduler restarts", func() bool { return scheduler.starts() >= 3 })
	if server.starts() != 1 {
		t.Errorf("http server restarted %d times by a background failure", server.starts())
	}

	cancel()
	<-errCh
}

func TestSupervisorTree_RemoveBackgroundService(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	scheduler := newMockService("scheduler")
	token := tree.AddBackgroundService(scheduler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	waitFor(t, "scheduler start", func() bool { return scheduler.starts() == 1 })
	if err := tree.RemoveBackgroundService(token); err != nil {
		t.Fatalf("RemoveBackgroundService: %v", err)
	}
	waitFor(t, "scheduler stop", func() bool { return scheduler.stops() == 1 })

	cancel()
	<-errCh
	if report, err := tree.UnstoppedServiceReport(); err != nil || len(report) != 0 {
		t.Errorf("unstopped = %v, %v", report, err)
	}
}

func TestSupervisorTree_DoNotRestart(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureBackoff:  10 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})
	oneShot := newMockService("one-shot")
	oneShot.setError(suture.ErrDoNotRestart)
	tree.AddBackgroundService(oneShot)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	waitFor(t, "one-shot start", func() bool { return oneShot.starts() == 1 })
	time.Sleep(50 * time.Millisecond)
	if oneShot.starts() != 1 {
		t.Errorf("ErrDoNotRestart service started %d times", oneShot.starts())
	}

	cancel()
	<-errCh
}
