package net

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rumus/boys.csv", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Month,L,M,S\n0,1,49.8842,0.03795\n"))
	})
	mux.HandleFunc("GET /broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetHTTPClient(t *testing.T) {
	client := GetHTTPClient()
	assert.NotNil(t, client)
	assert.NotZero(t, client.Timeout)
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.org/a.xlsx"))
	assert.True(t, IsURL("http://localhost:8080/a.csv"))
	assert.False(t, IsURL("rumus/a.xlsx"))
	assert.False(t, IsURL("ftp://example.org/a.csv"))
}

func TestFetch(t *testing.T) {
	srv := testServer(t)
	ctx := context.Background()
	dir := t.TempDir()

	p, err := Fetch(ctx, srv.URL+"/rumus/boys.csv", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "boys.csv"), p)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), "49.8842")

	local, err := Fetch(ctx, "rumus/girls.xlsx", dir)
	require.NoError(t, err)
	assert.Equal(t, "rumus/girls.xlsx", local)
}

func TestFetch_Errors(t *testing.T) {
	srv := testServer(t)
	ctx := context.Background()
	dir := t.TempDir()

	_, err := Fetch(ctx, srv.URL+"/rumus/missing.csv", dir)
	assert.ErrorIs(t, err, ErrorURLNotFound)

	_, err = Fetch(ctx, srv.URL+"/broken", dir)
	assert.Error(t, err)

	_, err = Fetch(ctx, srv.URL+"/", dir)
	assert.Error(t, err)
}

func TestPrintHTTPResponse_Nil(t *testing.T) {
	// should not panic
	PrintHTTPResponse(nil)
}

func TestPrintHTTPResponse_WithResponse(t *testing.T) {
	resp := &http.Response{
		StatusCode: 200,
		Header:     http.Header{},
		Body:       http.NoBody,
	}
	// should not panic
	PrintHTTPResponse(resp)
}
