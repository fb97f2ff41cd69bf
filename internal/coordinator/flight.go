package coordinator

import (
	"context"
	"sync"

	"github.com/productbazar/bazar/internal/apierr"
)

// flight is one shared in-flight request. Subscribers come and go; the wire
// request is aborted only when the last one leaves.
type flight struct {
	done   chan struct{}
	resp   *Response
	err    error
	subs   int
	cancel context.CancelFunc
}

// flightGroup dedupes identical in-flight GETs by canonical key.
type flightGroup struct {
	mu      sync.Mutex
	flights map[string]*flight
}

func newFlightGroup() *flightGroup {
	return &flightGroup{flights: make(map[string]*flight)}
}

// do joins the in-flight request for key, starting it when absent. Every
// subscriber receives the same response. A subscriber whose ctx fires gets a
// Cancelled error immediately; the underlying request keeps running for the
// others and is aborted once the subscriber count hits zero.
func (g *flightGroup) do(ctx context.Context, key string, fn func(context.Context) (*Response, error)) (*Response, error) {
	g.mu.Lock()
	f, ok := g.flights[key]
	if !ok {
		// The wire request must not die with the first caller, so it runs
		// on its own context.
		wireCtx, cancel := context.WithCancel(context.Background())
		f = &flight{done: make(chan struct{}), cancel: cancel}
		g.flights[key] = f
		go func() {
			f.resp, f.err = fn(wireCtx)
			g.mu.Lock()
			delete(g.flights, key)
			g.mu.Unlock()
			close(f.done)
			cancel()
		}()
	}
	f.subs++
	g.mu.Unlock()

	select {
	case <-f.done:
		g.mu.Lock()
		f.subs--
		g.mu.Unlock()
		return f.resp, f.err
	case <-ctx.Done():
		g.mu.Lock()
		f.subs--
		abandon := f.subs == 0
		g.mu.Unlock()
		if abandon {
			f.cancel()
		}
		return nil, apierr.Wrap(apierr.KindCancelled, "caller withdrew", ctx.Err())
	}
}
