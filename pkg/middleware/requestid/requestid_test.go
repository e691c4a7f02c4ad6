package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportGeneratesID(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(HeaderKey)
	}))
	defer srv.Close()

	client := &http.Client{Transport: Transport(nil)}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Len(t, seen, 36)
}

func TestTransportReusesContextID(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(HeaderKey)
	}))
	defer srv.Close()

	req, err := http.NewRequestWithContext(WithValue(context.Background(), "req-42"), http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	client := &http.Client{Transport: Transport(http.DefaultTransport)}
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "req-42", seen)
	assert.Empty(t, req.Header.Get(HeaderKey), "caller request must not be mutated")
}

func TestFromRequest(t *testing.T) {
	assert.Empty(t, FromRequest(nil))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderKey, "abc")
	assert.Equal(t, "abc", FromRequest(req))
}
