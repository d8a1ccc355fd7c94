package version

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBanner(t *testing.T) {
	assert.Equal(t, "vailá multimodal toolbox 0.6.7", Banner())
}

func TestLatest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/vaila-multimodaltoolbox/vaila/releases/latest", r.URL.Path)
		fmt.Fprint(w, `{"tag_name": "v0.7.0"}`)
	}))
	defer server.Close()

	checker := Checker{BaseURL: server.URL + "/"}
	latest, err := checker.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.7.0", latest)
}

func TestLatestNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	checker := Checker{BaseURL: server.URL + "/"}
	_, err := checker.Latest(context.Background())
	assert.Error(t, err)
}

func TestIsNewer(t *testing.T) {
	assert.True(t, IsNewer("0.7.0"))
	assert.True(t, IsNewer("1.0.0"))
	assert.False(t, IsNewer("0.6.7"))
	assert.False(t, IsNewer("0.6.1"))
	assert.True(t, IsNewer("0.6.7.1"))
}
