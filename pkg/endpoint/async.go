package endpoint

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// AsyncHandle is the externally observable state of a background call. It is
// returned immediately by CallAsync; only the background goroutine mutates it,
// and it reaches exactly one terminal state. Callers must check IsSucceeded
// before trusting GetResponse: a failed call encodes its error as data rather
// than raising it across the goroutine boundary.
type AsyncHandle struct {
	complete  atomic.Bool
	succeeded atomic.Bool
	status    atomic.Int64
	elapsed   atomic.Int64

	mu       sync.Mutex
	response string
	queue    []Fragment
}

// IsComplete reports whether the background call reached a terminal state.
func (h *AsyncHandle) IsComplete() bool { return h.complete.Load() }

// IsSucceeded reports whether the call completed with a 200 response. Only
// meaningful once IsComplete returns true.
func (h *AsyncHandle) IsSucceeded() bool { return h.succeeded.Load() }

// GetHTTPStatusCode returns the response status code, or 0 if the transport
// failed before a status was received.
func (h *AsyncHandle) GetHTTPStatusCode() int { return int(h.status.Load()) }

// GetResponseTimeMillis returns the elapsed time of the completed call.
func (h *AsyncHandle) GetResponseTimeMillis() int64 { return h.elapsed.Load() }

// GetResponse returns the aggregated response text, or a "[FAILED] ..." marker
// when the call failed.
func (h *AsyncHandle) GetResponse() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.response
}

// TryNext pops the oldest undelivered fragment without blocking.
func (h *AsyncHandle) TryNext() (Fragment, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.queue) == 0 {
		return Fragment{}, false
	}
	frag := h.queue[0]
	h.queue = h.queue[1:]
	return frag, true
}

// Drain pops every queued fragment in arrival order.
func (h *AsyncHandle) Drain() []Fragment {
	h.mu.Lock()
	defer h.mu.Unlock()
	drained := h.queue
	h.queue = nil
	return drained
}

func (h *AsyncHandle) push(f Fragment) {
	h.mu.Lock()
	h.queue = append(h.queue, f)
	h.mu.Unlock()
}

// finish publishes the terminal state. The completion flag is set last so a
// reader observing IsComplete sees the final response, status and timing.
func (h *AsyncHandle) finish(response string, succeeded bool, status int, elapsedMillis int64) {
	h.mu.Lock()
	h.response = response
	h.mu.Unlock()
	h.status.Store(int64(status))
	h.elapsed.Store(elapsedMillis)
	h.succeeded.Store(succeeded)
	h.complete.Store(true)
}

// CallAsync runs the same protocol as CallSync on a background goroutine and
// returns a handle right away. Every decoded fragment, error lines included,
// is pushed onto the handle's queue as it arrives. There is no cancellation
// beyond the transport timeouts: once started, the call runs to completion
// or failure.
func (c *Caller) CallAsync(ctx context.Context, payload any) *AsyncHandle {
	handle := &AsyncHandle{}

	go func() {
		result, err := c.run(ctx, payload, handle.push)
		if err != nil {
			var protoErr *ProtocolError
			status := 0
			if errors.As(err, &protoErr) {
				status = protoErr.StatusCode
			}
			c.log.Warnf("background call to %s failed: %v", c.desc.Suffix, err)
			handle.finish("[FAILED] "+err.Error(), false, status, 0)
			return
		}
		handle.finish(result.Response, true, result.HTTPStatusCode, result.ResponseTimeMillis)
	}()

	return handle
}
