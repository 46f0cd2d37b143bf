package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"alamos-extract/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func newTestServer(t testing.TB) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/cluster.comp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Write([]byte("cluster " + r.URL.Query().Get("clu_id")))
	})
	mux.HandleFunc("/search/search.comp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		err := r.ParseForm()
		if err != nil {
			t.Error(err)
		}
		w.Write([]byte(r.PostForm.Get("master") + "/" + r.PostForm.Get("slave")))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFetch(t *testing.T) {
	server := newTestServer(t)
	rec := &telemetry.Recorder{}
	client := NewClient(Options{BaseUrl: server.URL, Timeout: 5 * time.Second}, rec)
	ctx := context.Background()

	body, err := client.Fetch(ctx, Request{Url: "/search/cluster.comp?clu_id=701"})
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "cluster 701", string(body))

	body, err = client.Fetch(ctx, Request{
		Url:    "/search/search.comp",
		Method: MethodPost,
		Form:   map[string]string{"master": "HIV-1", "slave": "A1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "HIV-1/A1", string(body))
	require.Empty(t, rec.Reports("broken"))
}

func TestFetchTransportError(t *testing.T) {
	server := newTestServer(t)
	rec := &telemetry.Recorder{}
	client := NewClient(Options{BaseUrl: server.URL, Timeout: 5 * time.Second}, rec)
	ctx := context.Background()

	_, err := client.Fetch(ctx, Request{Url: "/missing"})
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	require.Equal(t, http.StatusNotFound, transportErr.Status)
	require.NotEmpty(t, rec.Reports("broken"))

	_, err = client.Fetch(ctx, Request{Url: "/missing", Method: http.MethodDelete})
	require.True(t, errors.As(err, &transportErr))
	require.Zero(t, transportErr.Status)

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	unreachable := NewClient(Options{BaseUrl: closed.URL, Timeout: time.Second}, rec)
	_, err = unreachable.Fetch(ctx, Request{Url: "/"})
	require.True(t, errors.As(err, &transportErr))
	require.Error(t, transportErr.Unwrap())
}

func TestFetchRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(Options{BaseUrl: server.URL, RetryCount: 3}, &telemetry.Recorder{})
	client.http.SetRetryWaitTime(time.Millisecond).SetRetryMaxWaitTime(time.Millisecond)

	body, err := client.Fetch(context.Background(), Request{Url: "/"})
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "ok", string(body))
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))
}
