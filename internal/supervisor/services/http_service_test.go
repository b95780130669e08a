// Snapkeep - Online SQLite Backup, Retention and Restore
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeep

package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// fakeServer blocks in ListenAndServe until Shutdown, unless listenErr is set.
type fakeServer struct {
	listenErr   error
	shutdownErr error

	listens   atomic.Int32
	shutdowns atomic.Int32
	listening chan struct{}
	stop      chan struct{}
	once      sync.Once
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		listening: make(chan struct{}, 1),
		stop:      make(chan struct{}),
	}
}

func (f *fakeServer) ListenAndServe() error {
	f.listens.Add(1)
	select {
	case f.listening <- struct{}{}:
	default:
	}
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	f.once.Do(func() { close(f.stop) })
	return f.shutdownErr
}

func TestHTTPServerService_Interface(t *testing.T) {
	var _ suture.Service = (*HTTPServerService)(nil)
}

func TestNewHTTPServerService_Timeout(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want time.Duration
	}{
		{30 * time.Second, 30 * time.Second},
		{0, 10 * time.Second},
		{-time.Second, 10 * time.Second},
	}
	for _, tt := range tests {
		if got := NewHTTPServerService(newFakeServer(), tt.in).shutdownTimeout; got != tt.want {
			t.Errorf("NewHTTPServerService(%v) timeout = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHTTPServerService_Serve(t *testing.T) {
	serve := func(t *testing.T, f *fakeServer) (context.CancelFunc, <-chan error) {
		t.Helper()
		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- NewHTTPServerService(f, time.Second).Serve(ctx) }()
		select {
		case <-f.listening:
		case <-time.After(time.Second):
			t.Fatal("server did not start")
		}
		return cancel, errCh
	}

	t.Run("graceful shutdown", func(t *testing.T) {
		f := newFakeServer()
		cancel, errCh := serve(t, f)
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return")
		}
		if f.shutdowns.Load() != 1 {
			t.Errorf("Shutdown calls = %d, want 1", f.shutdowns.Load())
		}
	})

	t.Run("listen failure", func(t *testing.T) {
		f := newFakeServer()
		f.listenErr = errors.New("bind: address already in use")
		err := NewHTTPServerService(f, time.Second).Serve(context.Background())
		if !errors.Is(err, f.listenErr) {
			t.Fatalf("Serve() error = %v, want listen error", err)
		}
	})

	t.Run("shutdown failure", func(t *testing.T) {
		f := newFakeServer()
		f.shutdownErr = errors.New("drain timeout")
		cancel, errCh := serve(t, f)
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, f.shutdownErr) {
				t.Errorf("expected shutdown error, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return")
		}
	})
}

func TestHTTPServerService_UnderSupervisor(t *testing.T) {
	f := newFakeServer()
	sup := suture.New("test-sup", suture.Spec{
		FailureBackoff: 10 * time.Millisecond,
		Timeout:        2 * time.Second,
	})
	sup.Add(NewHTTPServerService(f, time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	select {
	case <-f.listening:
	case <-time.After(time.Second):
		t.Fatal("server did not start")
	}
	cancel()
	<-errCh

	if f.shutdowns.Load() < 1 {
		t.Error("Shutdown was not called")
	}
	if name := NewHTTPServerService(f, 0).String(); name != "http-server" {
		t.Errorf("String() = %q", name)
	}
}
