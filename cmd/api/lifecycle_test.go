package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type closeLog struct {
	mu    sync.Mutex
	names []string
}

func (c *closeLog) closer(name string) func() error {
	return func() error {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.names = append(c.names, name)
		return nil
	}
}

func (c *closeLog) got() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.names...)
}

func TestLifecycleClosesInReverseOrder(t *testing.T) {
	lc := newLifecycle(context.Background(), time.Minute)
	var cl closeLog
	lc.track("infra", cl.closer("infra"))
	lc.track("container", cl.closer("container"))
	lc.initFinished()

	lc.shutdown(context.Background(), zap.NewNop())

	got := cl.got()
	if len(got) != 2 || got[0] != "container" || got[1] != "infra" {
		t.Fatalf("closed = %v, want [container infra]", got)
	}
}

func TestLifecycleShutdownDuringInitClosesLateResources(t *testing.T) {
	lc := newLifecycle(context.Background(), time.Minute)
	var cl closeLog

	done := make(chan struct{})
	go func() {
		lc.shutdown(context.Background(), zap.NewNop())
		close(done)
	}()

	select {
	case <-lc.initCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("shutdown did not cancel init")
	}

	// init was still building when the signal arrived
	lc.track("infra", cl.closer("infra"))
	lc.track("container", cl.closer("container"))
	lc.initFinished()
	<-done

	got := cl.got()
	if len(got) != 2 || got[0] != "container" || got[1] != "infra" {
		t.Fatalf("closed = %v, want [container infra]", got)
	}

	lc.track("catalog_refresh", cl.closer("catalog_refresh"))
	if got := cl.got(); len(got) != 3 || got[2] != "catalog_refresh" {
		t.Fatalf("closed = %v, want late tracker closed immediately", got)
	}
}
