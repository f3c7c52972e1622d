package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPAssociationClient(t *testing.T) {
	t.Run("posts tags and decodes associations", func(t *testing.T) {
		var received []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`["road","speed"]`))
		}))
		defer server.Close()

		client := NewHTTPAssociationClient(server.URL, time.Second)
		got, err := client.GetAssociations(context.Background(), []string{"car"})
		require.NoError(t, err)
		assert.Equal(t, []string{"car"}, received)
		assert.Equal(t, []string{"road", "speed"}, got)
	})

	t.Run("null body means no associations", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`null`))
		}))
		defer server.Close()

		got, err := NewHTTPAssociationClient(server.URL, time.Second).GetAssociations(context.Background(), []string{"car"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := NewHTTPAssociationClient(server.URL, time.Second).GetAssociations(context.Background(), []string{"car"})
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
		assert.Contains(t, statusErr.Body, "overloaded")
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"not":"a list"}`))
		}))
		defer server.Close()

		_, err := NewHTTPAssociationClient(server.URL, time.Second).GetAssociations(context.Background(), []string{"car"})
		assert.Error(t, err)
	})

	t.Run("unreachable service", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := NewHTTPAssociationClient(url, time.Second).GetAssociations(context.Background(), []string{"car"})
		assert.Error(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		_, err := NewHTTPAssociationClient(server.URL, 20*time.Millisecond).GetAssociations(context.Background(), []string{"car"})
		assert.Error(t, err)
	})
}

func TestMockAssociationClient(t *testing.T) {
	client := NewMockAssociationClient()
	got, err := client.GetAssociations(context.Background(), []string{"anything"})
	require.NoError(t, err)
	assert.Equal(t, []string{"car", "sunset", "love"}, got)

	got[0] = "changed"
	again, _ := client.GetAssociations(context.Background(), nil)
	assert.Equal(t, "car", again[0])
}
