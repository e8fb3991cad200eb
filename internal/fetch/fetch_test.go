package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"

	"github.com/sells-group/sitefinder/internal/model"
)

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, "<html><title>Acme</title><body>Acme Corp</body></html>")
	}))
	defer srv.Close()

	f := New(Options{}, nil)
	body := f.Fetch(context.Background(), srv.URL)
	assert.Contains(t, body, "Acme Corp")
}

func TestFetch_CustomUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, r.Header.Get("User-Agent"))
	}))
	defer srv.Close()

	f := New(Options{UserAgent: "sitefinder-test"}, nil)
	assert.Equal(t, "sitefinder-test", f.Fetch(context.Background(), srv.URL))
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusForbidden, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
				_, _ = fmt.Fprint(w, "error page body")
			}))
			defer srv.Close()

			assert.Empty(t, New(Options{}, nil).Fetch(context.Background(), srv.URL))
		})
	}
}

func TestFetch_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	addr := srv.URL
	srv.Close()

	assert.Empty(t, New(Options{}, nil).Fetch(context.Background(), addr))
}

func TestFetch_InvalidURL(t *testing.T) {
	assert.Empty(t, New(Options{}, nil).Fetch(context.Background(), "://bad"))
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f := New(Options{Timeout: 50 * time.Millisecond}, nil)
	start := time.Now()
	assert.Empty(t, f.Fetch(context.Background(), srv.URL))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestFetch_BodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = fmt.Fprint(w, strings.Repeat("a", 4096))
	}))
	defer srv.Close()

	f := New(Options{MaxBodyBytes: 100}, nil)
	assert.Len(t, f.Fetch(context.Background(), srv.URL), 100)
}

func TestFetch_DecodesShiftJIS(t *testing.T) {
	encoded, err := japanese.ShiftJIS.NewEncoder().String("<html><body>会社概要</body></html>")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=Shift_JIS")
		_, _ = w.Write([]byte(encoded))
	}))
	defer srv.Close()

	body := New(Options{}, nil).Fetch(context.Background(), srv.URL)
	assert.Contains(t, body, "会社概要")
}

func TestFetch_RateLimited(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	f := New(Options{RateLimitRPS: 1000}, nil)
	require.NotNil(t, f.limiter)
	for range 3 {
		assert.Equal(t, "ok", f.Fetch(context.Background(), srv.URL))
	}
	assert.Equal(t, int32(3), hits.Load())
}

func TestFetch_TooManyRequestsSlowsLimiter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := New(Options{RateLimitRPS: 1000}, nil)
	assert.Empty(t, f.Fetch(context.Background(), srv.URL))
	assert.InDelta(t, 500.0, float64(f.limiter.rate()), 1e-9)
}

func TestDecode_MetaCharset(t *testing.T) {
	encoded, err := japanese.EUCJP.NewEncoder().String(`<html><head><meta charset="euc-jp"></head><body>会社案内</body></html>`)
	require.NoError(t, err)
	assert.Contains(t, decode([]byte(encoded), "text/html"), "会社案内")
	assert.Equal(t, "plain", decode([]byte("plain"), ""))
}

func TestFetchAll_PreservesOrderAndFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/slow":
			time.Sleep(50 * time.Millisecond)
			_, _ = fmt.Fprint(w, "slow page")
		case "/fast":
			_, _ = fmt.Fprint(w, "fast page")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	results := []model.SearchResult{
		{Title: "Slow", URL: srv.URL + "/slow"},
		{Title: "Missing", URL: srv.URL + "/missing"},
		{Title: "Fast", URL: srv.URL + "/fast", Snippet: "quick"},
	}

	pages := New(Options{MaxConcurrent: 3}, nil).FetchAll(context.Background(), results)
	require.Len(t, pages, 3)

	assert.Equal(t, "Slow", pages[0].Title)
	assert.Equal(t, "slow page", pages[0].Content)
	assert.Equal(t, "Missing", pages[1].Title)
	assert.False(t, pages[1].HasContent())
	assert.Equal(t, "Fast", pages[2].Title)
	assert.Equal(t, "quick", pages[2].Snippet)
	assert.Equal(t, "fast page", pages[2].Content)
}

func TestFetchAll_RunsConcurrently(t *testing.T) {
	var inFlight, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		inFlight.Add(-1)
		_, _ = fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	results := make([]model.SearchResult, 6)
	for i := range results {
		results[i] = model.SearchResult{URL: fmt.Sprintf("%s/p%d", srv.URL, i)}
	}

	pages := New(Options{MaxConcurrent: 2}, nil).FetchAll(context.Background(), results)
	require.Len(t, pages, 6)
	for _, p := range pages {
		assert.Equal(t, "ok", p.Content)
	}
	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.GreaterOrEqual(t, peak.Load(), int32(1))
}

func TestFetchAll_Empty(t *testing.T) {
	pages := New(Options{}, nil).FetchAll(context.Background(), nil)
	assert.Empty(t, pages)
}
