package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type trackedCloser struct {
	name  string
	close func() error
}

// lifecycle owns what the background init opens. Shutdown cancels init, waits
// for it to return, then closes everything in reverse open order. Anything
// tracked after shutdown has drained is closed on the spot.
type lifecycle struct {
	initCtx    context.Context
	cancelInit context.CancelFunc
	initDone   chan struct{}
	doneOnce   sync.Once

	mu      sync.Mutex
	closers []trackedCloser
	closed  bool
	log     *zap.Logger
}

func newLifecycle(parent context.Context, initTimeout time.Duration) *lifecycle {
	ctx, cancel := context.WithTimeout(parent, initTimeout)
	return &lifecycle{
		initCtx:    ctx,
		cancelInit: cancel,
		initDone:   make(chan struct{}),
		log:        zap.NewNop(),
	}
}

func (l *lifecycle) track(name string, fn func() error) {
	l.mu.Lock()
	if !l.closed {
		l.closers = append(l.closers, trackedCloser{name: name, close: fn})
		l.mu.Unlock()
		return
	}
	log := l.log
	l.mu.Unlock()

	if err := fn(); err != nil {
		log.Warn("close error", zap.String("resource", name), zap.Error(err))
	}
}

func (l *lifecycle) initFinished() {
	l.doneOnce.Do(func() { close(l.initDone) })
}

func (l *lifecycle) shutdown(ctx context.Context, log *zap.Logger) {
	l.cancelInit()
	select {
	case <-l.initDone:
	case <-ctx.Done():
		log.Warn("background init still running at shutdown")
	}

	l.mu.Lock()
	closers := l.closers
	l.closers = nil
	l.closed = true
	l.log = log
	l.mu.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].close(); err != nil {
			log.Warn("close error", zap.String("resource", closers[i].name), zap.Error(err))
		}
	}
}
