package service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// WaitTimeout is the maximum time a client can wait for notifications
	WaitTimeout = 25 * time.Second

	// WaitChannelBuffer size for notification channels
	WaitChannelBuffer = 1
)

// WaitRegistry manages long-polling clients waiting for session changes
type WaitRegistry struct {
	mu       sync.RWMutex
	waiters  map[string][]*WaitRequest // sessionID → waiting clients
	shutdown chan struct{}
	closed   bool
	timeout  time.Duration
	wg       sync.WaitGroup
}

// WaitRequest represents a single client waiting for session updates
type WaitRequest struct {
	MoveCount int
	Notify    chan struct{}
	Timer     *time.Timer
	Context   context.Context
	SessionID string
	done      chan struct{}
	once      sync.Once
}

// wake delivers at most one notification and releases the watcher goroutine
func (r *WaitRequest) wake() {
	r.once.Do(func() {
		if r.Timer != nil {
			r.Timer.Stop()
		}
		select {
		case r.Notify <- struct{}{}:
		default:
		}
		close(r.done)
	})
}

// NewWaitRegistry creates a new wait registry, timeout <= 0 uses WaitTimeout
func NewWaitRegistry(timeout time.Duration) *WaitRegistry {
	if timeout <= 0 {
		timeout = WaitTimeout
	}
	return &WaitRegistry{
		waiters:  make(map[string][]*WaitRequest),
		shutdown: make(chan struct{}),
		timeout:  timeout,
	}
}

// RegisterWait registers a client to wait for a session's history length to change.
// The returned channel receives once on change, timeout or shutdown.
func (w *WaitRegistry) RegisterWait(ctx context.Context, sessionID string, moveCount int) <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()

	req := &WaitRequest{
		MoveCount: moveCount,
		Notify:    make(chan struct{}, WaitChannelBuffer),
		Context:   ctx,
		SessionID: sessionID,
		done:      make(chan struct{}),
	}

	if w.closed {
		req.wake()
		return req.Notify
	}

	req.Timer = time.AfterFunc(w.timeout, func() {
		w.handleTimeout(req)
	})

	w.waiters[sessionID] = append(w.waiters[sessionID], req)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		select {
		case <-ctx.Done():
			w.removeWaiter(sessionID, req)
		case <-req.done:
		case <-w.shutdown:
			w.removeWaiter(sessionID, req)
			req.wake()
		}
	}()

	return req.Notify
}

// NotifySession notifies clients whose known move count differs from the current one
func (w *WaitRegistry) NotifySession(sessionID string, currentMoveCount int) {
	w.mu.Lock()
	waitList := w.waiters[sessionID]
	var remaining []*WaitRequest
	var notified []*WaitRequest
	for _, req := range waitList {
		if req.MoveCount != currentMoveCount {
			notified = append(notified, req)
		} else {
			remaining = append(remaining, req)
		}
	}
	if len(remaining) == 0 {
		delete(w.waiters, sessionID)
	} else {
		w.waiters[sessionID] = remaining
	}
	w.mu.Unlock()

	for _, req := range notified {
		req.wake()
	}
}

// RemoveSession wakes and drops every waiter of a session that is being replaced
func (w *WaitRegistry) RemoveSession(sessionID string) {
	w.mu.Lock()
	waitList := w.waiters[sessionID]
	delete(w.waiters, sessionID)
	w.mu.Unlock()

	for _, req := range waitList {
		req.wake()
	}
}

// Waiting returns the number of registered waiters for a session
func (w *WaitRegistry) Waiting(sessionID string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.waiters[sessionID])
}

// Shutdown releases every waiter and waits for their goroutines
func (w *WaitRegistry) Shutdown(timeout time.Duration) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.shutdown)
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("wait registry shutdown timed out")
	}
}

// handleTimeout wakes a waiter whose deadline passed
func (w *WaitRegistry) handleTimeout(req *WaitRequest) {
	w.removeWaiter(req.SessionID, req)
	req.wake()
}

// removeWaiter removes a specific waiter from the registry
func (w *WaitRegistry) removeWaiter(sessionID string, req *WaitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	waitList := w.waiters[sessionID]
	for i, waiter := range waitList {
		if waiter == req {
			w.waiters[sessionID] = append(waitList[:i:i], waitList[i+1:]...)
			break
		}
	}

	if len(w.waiters[sessionID]) == 0 {
		delete(w.waiters, sessionID)
	}
}
