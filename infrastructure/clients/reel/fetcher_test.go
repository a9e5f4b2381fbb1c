package reel

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shorts-autopost/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	payload := bytes.Repeat([]byte("0123456789abcdef"), 3*ChunkSize/16+7)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reels/1.mp4", r.URL.Path)
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	destination := filepath.Join(t.TempDir(), "temp.mp4")
	// stale content must be truncated
	require.NoError(t, os.WriteFile(destination, bytes.Repeat([]byte("x"), len(payload)*2), 0o644))

	var progress bytes.Buffer
	fetcher := NewFetcher(WithHTTPClient(srv.Client()), WithTimeout(5*time.Second), WithProgress(&progress))
	n, err := fetcher.Fetch(context.Background(), srv.URL+"/reels/1.mp4", destination)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)

	data, err := os.ReadFile(destination)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestFetcher_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	destination := filepath.Join(t.TempDir(), "temp.mp4")
	_, err := NewFetcher().Fetch(context.Background(), srv.URL+"/gone.mp4", destination)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrDownload))

	var runErr *model.RunError
	require.True(t, errors.As(err, &runErr))
	assert.Equal(t, http.StatusNotFound, runErr.StatusCode)

	_, statErr := os.Stat(destination)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetcher_InvalidURL(t *testing.T) {
	_, err := NewFetcher().Fetch(context.Background(), "://bad", filepath.Join(t.TempDir(), "temp.mp4"))
	assert.True(t, errors.Is(err, model.ErrDownload))
}

func TestFetcher_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("data"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFetcher().Fetch(ctx, srv.URL, filepath.Join(t.TempDir(), "temp.mp4"))
	assert.True(t, errors.Is(err, model.ErrDownload))
}
