package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tweetscraper/pkg/config"
	errs "tweetscraper/pkg/errors"
	"tweetscraper/pkg/logger"
	"tweetscraper/pkg/report"
	"tweetscraper/pkg/workload"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/alice/status/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<div class="permalink-container"></div>`))
	})
	mux.HandleFunc("/gone/status/2", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/account/suspended", http.StatusFound)
	})
	mux.HandleFunc("/account/suspended", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("suspended"))
	})
	mux.HandleFunc("/missing/status/3", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/empty/status/4", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/slow/status/5", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})
	mux.HandleFunc("/latin/status/6", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write([]byte{'c', 'a', 'f', 0xe9})
	})
	mux.HandleFunc("/rt/status/7", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/bob/status/70", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/bob/status/70", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/media/pic.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpegdata"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(server *httptest.Server, reporter report.Reporter) *Client {
	fetch := config.DefaultConfig().Fetch
	fetch.Timeout = 200 * time.Millisecond
	fetch.SuspendedURL = server.URL + "/account/suspended"
	return NewClient(fetch, config.TwitterConfig{}, reporter, logger.NewTestLogger())
}

func item(i int, link string) workload.WorkItem {
	return workload.WorkItem{Index: i, Kind: workload.KindOriginal, Link: link}
}

func TestFetchBatchClassification(t *testing.T) {
	server := newTestServer(t)
	reporter := report.NewMemoryReporter()
	client := newTestClient(server, reporter)

	items := []workload.WorkItem{
		item(0, server.URL+"/alice/status/1"),
		item(1, server.URL+"/gone/status/2"),
		item(2, server.URL+"/missing/status/3"),
		item(3, server.URL+"/empty/status/4"),
		item(4, server.URL+"/slow/status/5"),
	}

	outcomes := client.FetchBatch(context.Background(), items)
	require.Len(t, outcomes, len(items))

	want := []OutcomeKind{Success, Redirected, HTTPFailure, Empty, TransportError}
	for i, o := range outcomes {
		assert.Equal(t, items[i], o.Item, "outcome order must match item order")
		assert.Equal(t, want[i], o.Kind, "item %d", i)
	}

	assert.Contains(t, string(outcomes[0].Body), "permalink-container")
	assert.Equal(t, http.StatusNotFound, outcomes[2].Status)
	assert.True(t, errs.Is(outcomes[2].Err, errs.ErrorTypeHTTP))
	assert.True(t, errs.Is(outcomes[4].Err, errs.ErrorTypeNetwork))

	assert.Equal(t, []string{items[1].Link}, reporter.SuspendedLinks())
	assert.Equal(t, []report.Failure{{Status: 404, Link: items[2].Link}}, reporter.Failures())
}

func TestFetchDecodesCharset(t *testing.T) {
	server := newTestServer(t)
	client := newTestClient(server, nil)

	out := client.Fetch(context.Background(), item(0, server.URL+"/latin/status/6"))
	require.Equal(t, Success, out.Kind)
	assert.Equal(t, "café", string(out.Body))
}

func TestFetchSendsSessionCookies(t *testing.T) {
	var gotCookie, gotToken atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("auth_token"); err == nil {
			gotCookie.Store(c.Value)
		}
		gotToken.Store(r.Header.Get("x-csrf-token"))
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	fetch := config.DefaultConfig().Fetch
	client := NewClient(fetch, config.TwitterConfig{AuthToken: "tok", CT0: "csrf"}, nil, logger.NewTestLogger())

	out := client.Fetch(context.Background(), item(0, server.URL+"/x/status/1"))
	require.Equal(t, Success, out.Kind)
	assert.Equal(t, "tok", gotCookie.Load())
	assert.Equal(t, "csrf", gotToken.Load())
}

func TestFetchCancelledContext(t *testing.T) {
	server := newTestServer(t)
	client := newTestClient(server, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := client.Fetch(ctx, item(0, server.URL+"/alice/status/1"))
	assert.Equal(t, TransportError, out.Kind)
}

func TestFetchRedirectCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Path+"x", http.StatusFound)
	}))
	defer server.Close()

	fetch := config.DefaultConfig().Fetch
	fetch.MaxRedirects = 2
	client := NewClient(fetch, config.TwitterConfig{}, nil, logger.NewTestLogger())

	out := client.Fetch(context.Background(), item(0, server.URL+"/loop"))
	assert.Equal(t, TransportError, out.Kind)
}

func TestZeroRedirectCapStillFollowsRedirects(t *testing.T) {
	server := newTestServer(t)
	reporter := report.NewMemoryReporter()

	fetch := config.FetchConfig{SuspendedURL: server.URL + "/account/suspended"}
	client := NewClient(fetch, config.TwitterConfig{}, reporter, logger.NewTestLogger())

	suspended := client.Fetch(context.Background(), item(0, server.URL+"/gone/status/2"))
	assert.Equal(t, Redirected, suspended.Kind)
	assert.Equal(t, []string{server.URL + "/gone/status/2"}, reporter.SuspendedLinks())

	resolved := client.Resolve(context.Background(), item(1, server.URL+"/rt/status/7"))
	assert.Equal(t, Success, resolved.Kind)
	assert.Equal(t, server.URL+"/bob/status/70", resolved.ResolvedURL)
}

func TestResolveBatch(t *testing.T) {
	server := newTestServer(t)
	reporter := report.NewMemoryReporter()
	client := newTestClient(server, reporter)

	items := []workload.WorkItem{
		item(0, server.URL+"/rt/status/7"),
		item(1, server.URL+"/gone/status/2"),
		item(2, "http://127.0.0.1:0/unreachable"),
	}

	outcomes := client.ResolveBatch(context.Background(), items)
	require.Len(t, outcomes, 3)

	assert.Equal(t, Success, outcomes[0].Kind)
	assert.Equal(t, server.URL+"/bob/status/70", outcomes[0].ResolvedURL)
	assert.Equal(t, Redirected, outcomes[1].Kind)
	assert.Equal(t, server.URL+"/account/suspended", outcomes[1].ResolvedURL)
	assert.Equal(t, TransportError, outcomes[2].Kind)

	assert.Empty(t, reporter.SuspendedLinks(), "resolving does not write side logs")
}

func TestGet(t *testing.T) {
	server := newTestServer(t)
	client := newTestClient(server, nil)

	body, err := client.Get(context.Background(), server.URL+"/media/pic.jpg")
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "jpegdata", string(data))

	_, err = client.Get(context.Background(), server.URL+"/media/none.jpg")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrorTypeHTTP))
}

func TestOutcomeKindString(t *testing.T) {
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "redirected", Redirected.String())
	assert.Equal(t, "http_failure", HTTPFailure.String())
	assert.Equal(t, "transport_error", TransportError.String())
	assert.Equal(t, "empty", Empty.String())
}
