package server

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestServer_StartShutdown(t *testing.T) {
	srv, _ := testServer(t)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Give the listener a moment to bind before draining it.
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			t.Errorf("Start() = %v, want http.ErrServerClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Start() did not return after Shutdown")
	}
}
