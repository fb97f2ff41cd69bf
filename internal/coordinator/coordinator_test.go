package coordinator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/productbazar/bazar/internal/apierr"
	"github.com/productbazar/bazar/internal/logger"
)

func newTestCoordinator(t *testing.T, handler http.Handler, opts Options) (*Coordinator, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	opts.BaseURL = ts.URL
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.RetryBase == 0 {
		opts.RetryBase = time.Millisecond
	}
	return New(opts, NewTokenHolder(), logger.Nop()), ts
}

func TestDedupSharesOneRequest(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	c, _ := newTestCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte(`{"success":true,"data":[1,2,3]}`))
	}), Options{})

	const callers = 5
	var wg sync.WaitGroup
	bodies := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := c.Do(context.Background(), Request{Path: "/products/trending", Params: url.Values{"limit": {"6"}}})
			errs[i] = err
			if err == nil {
				bodies[i] = string(resp.Body)
			}
		}(i)
	}

	// Let all callers subscribe before the upstream answers.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load(), "identical in-flight GETs must share one wire request")
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, bodies[0], bodies[i], "all subscribers get byte-identical payloads")
	}
}

func TestDedupSurvivesOneCancellation(t *testing.T) {
	release := make(chan struct{})
	c, _ := newTestCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{"ok":true}`))
	}), Options{})

	ctx1, cancel1 := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Do(ctx1, Request{Path: "/shared"})
		errCh <- err
	}()

	okCh := make(chan error, 1)
	go func() {
		_, err := c.Do(context.Background(), Request{Path: "/shared"})
		okCh <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel1()

	err := <-errCh
	assert.True(t, apierr.Cancelled(err), "cancelled caller gets Cancelled, got %v", err)

	close(release)
	assert.NoError(t, <-okCh, "surviving subscriber still receives the result")
}

func TestDedupAbortsWhenAllCancel(t *testing.T) {
	aborted := make(chan struct{})
	c, _ := newTestCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		close(aborted)
	}), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Do(ctx, Request{Path: "/lonely"})
		errCh <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	require.True(t, apierr.Cancelled(<-errCh))

	select {
	case <-aborted:
	case <-time.After(2 * time.Second):
		t.Fatal("wire request was not aborted after the last subscriber left")
	}
}

func TestRetryOnTransientFailure(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}), Options{})

	_, err := c.Do(context.Background(), Request{Path: "/flaky"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestRetryBudgetExhausted(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}), Options{})

	_, err := c.Do(context.Background(), Request{Path: "/down", RetryCount: 2})
	require.Error(t, err)
	assert.True(t, apierr.IsKind(err, apierr.KindServer))
	assert.Equal(t, int32(3), hits.Load(), "attempts = RetryCount + 1")
}

func TestNonIdempotentNeverRetries(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}), Options{})

	_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/upvote", RetryCount: 3})
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load(), "POST must never retry")
}

func TestRateLimitHonoursRetryAfter(t *testing.T) {
	var hits atomic.Int32
	var first, second time.Time
	c, _ := newTestCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch hits.Add(1) {
		case 1:
			first = time.Now()
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			second = time.Now()
			_, _ = w.Write([]byte(`{}`))
		}
	}), Options{})

	_, err := c.Do(context.Background(), Request{Path: "/limited"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, second.Sub(first), 900*time.Millisecond, "Retry-After must be honoured")
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind apierr.Kind
	}{
		{name: "401", status: 401, body: `{"success":false,"message":"token expired"}`, wantKind: apierr.KindUnauthenticated},
		{name: "403", status: 403, body: `{"success":false}`, wantKind: apierr.KindForbidden},
		{name: "404", status: 404, body: `{}`, wantKind: apierr.KindNotFound},
		{name: "400 with field errors", status: 400, body: `{"success":false,"fieldErrors":{"title":"required"}}`, wantKind: apierr.KindBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}), Options{})

			_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/x"})
			require.Error(t, err)
			assert.True(t, apierr.IsKind(err, tt.wantKind), "got %v", err)
			if tt.wantKind == apierr.KindBadRequest {
				var ae *apierr.Error
				require.ErrorAs(t, err, &ae)
				assert.Equal(t, "required", ae.FieldErrors["title"])
			}
		})
	}
}

func TestAuthHeaderAttached(t *testing.T) {
	var got string
	c, _ := newTestCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}), Options{})

	c.Tokens().Set("tok-123")
	_, err := c.Do(context.Background(), Request{Path: "/me"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", got)
}

func TestTimeoutSurfacesNetwork(t *testing.T) {
	c, _ := newTestCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}), Options{Timeout: 30 * time.Millisecond})

	_, err := c.Do(context.Background(), Request{Path: "/slow", RetryCount: 0})
	require.Error(t, err)
	assert.True(t, apierr.IsKind(err, apierr.KindNetwork), "timeout maps to Network, got %v", err)
}

func TestPriorityBypassesQueuedWork(t *testing.T) {
	block := make(chan struct{})
	started := make(chan string, 3)
	c, _ := newTestCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/occupier" {
			started <- "occupier"
			<-block
		} else {
			started <- r.URL.Path
		}
		_, _ = w.Write([]byte(`{}`))
	}), Options{MaxConcurrent: 1})

	var wg sync.WaitGroup
	run := func(path string, prio Priority) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Do(context.Background(), Request{Path: path, Priority: prio})
		}()
	}

	run("/occupier", PriorityNormal)
	require.Equal(t, "occupier", <-started)

	run("/low", PriorityLow)
	time.Sleep(50 * time.Millisecond) // make sure low is queued first
	run("/high", PriorityHigh)
	time.Sleep(50 * time.Millisecond)

	close(block)
	wg.Wait()

	assert.Equal(t, "/high", <-started, "high priority must overtake a queued low request")
	assert.Equal(t, "/low", <-started)
}

func TestCanonicalParamsOrderIndependent(t *testing.T) {
	a := url.Values{}
	a.Set("page", "1")
	a.Set("limit", "10")
	a.Add("pricing_type", "free")
	a.Add("pricing_type", "paid")

	b := url.Values{}
	b.Add("pricing_type", "paid")
	b.Add("pricing_type", "free")
	b.Set("limit", "10")
	b.Set("page", "1")

	assert.Equal(t, canonicalParams(a), canonicalParams(b))
	assert.Equal(t,
		canonicalKey(http.MethodGet, "/jobs", a),
		canonicalKey(http.MethodGet, "/jobs", b))
}

func TestFallbackChain(t *testing.T) {
	t.Run("first non-empty wins", func(t *testing.T) {
		c, _ := newTestCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/recommendations/new":
				w.WriteHeader(http.StatusInternalServerError)
			case "/products/recent":
				_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
			case "/products/trending":
				_, _ = w.Write([]byte(`{"success":true,"data":[{"_id":"p1"}]}`))
			}
		}), Options{})

		accept := func(r *Response) bool { return len(r.Body) > 30 }
		resp, err := c.FallbackChain(context.Background(), accept,
			Request{Path: "/recommendations/new"},
			Request{Path: "/products/recent"},
			Request{Path: "/products/trending"},
		)
		require.NoError(t, err)
		assert.Contains(t, string(resp.Body), "p1")
	})

	t.Run("unauthenticated stops the chain", func(t *testing.T) {
		var hits atomic.Int32
		c, _ := newTestCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		}), Options{})

		_, err := c.FallbackChain(context.Background(), nil,
			Request{Path: "/a"},
			Request{Path: "/b"},
		)
		require.Error(t, err)
		assert.True(t, apierr.IsKind(err, apierr.KindUnauthenticated))
		assert.Equal(t, int32(1), hits.Load())
	})
}
