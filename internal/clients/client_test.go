package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestLister_List(t *testing.T) {
	server := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/clients/v2", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "tapis-test", r.Header.Get("User-Agent"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok, "expected basic auth")
		assert.Equal(t, "jdoe", user)
		assert.Equal(t, "s3cret", pass)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "success",
			"result": [
				{"name": "DefaultApplication", "description": "Default client"},
				{"name": "cli-client", "description": null}
			]
		}`))
	})

	lister := NewLister(WithHTTPClient(server.Client()), WithUserAgent("tapis-test"))
	list, err := lister.List(context.Background(), server.URL+"/", Credentials{Username: "jdoe", Password: "s3cret"})
	require.NoError(t, err)

	assert.Equal(t, []Client{
		{Name: "DefaultApplication", Description: "Default client"},
		{Name: "cli-client", Description: ""},
	}, list)
}

func TestLister_ListEmptyResult(t *testing.T) {
	server := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "success"}`))
	})

	list, err := NewLister(WithHTTPClient(server.Client())).List(context.Background(), server.URL, Credentials{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLister_ListErrors(t *testing.T) {
	t.Run("unauthorized with registry message", func(t *testing.T) {
		server := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status": "error", "message": "Invalid credentials"}`))
		})

		_, err := NewLister(WithHTTPClient(server.Client())).List(context.Background(), server.URL, Credentials{Username: "jdoe"})

		var clientErr *ClientError
		require.ErrorAs(t, err, &clientErr)
		assert.Equal(t, ErrorTypeHTTP, clientErr.Type)
		assert.Equal(t, http.StatusUnauthorized, clientErr.StatusCode)
		assert.Equal(t, "Invalid credentials", clientErr.Message)
		assert.True(t, clientErr.IsUnauthorized())
		assert.Contains(t, err.Error(), "401 Unauthorized")
	})

	t.Run("fault message", func(t *testing.T) {
		server := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"fault": {"message": "upstream down"}}`))
		})

		_, err := NewLister(WithHTTPClient(server.Client())).List(context.Background(), server.URL, Credentials{})

		var clientErr *ClientError
		require.ErrorAs(t, err, &clientErr)
		assert.Equal(t, "upstream down", clientErr.Message)
		assert.False(t, clientErr.IsUnauthorized())
	})

	t.Run("plain text error body", func(t *testing.T) {
		server := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})

		_, err := NewLister(WithHTTPClient(server.Client())).List(context.Background(), server.URL, Credentials{})

		var clientErr *ClientError
		require.ErrorAs(t, err, &clientErr)
		assert.Equal(t, "boom", clientErr.Message)
	})

	t.Run("invalid body", func(t *testing.T) {
		server := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		})

		_, err := NewLister(WithHTTPClient(server.Client())).List(context.Background(), server.URL, Credentials{})

		var clientErr *ClientError
		require.ErrorAs(t, err, &clientErr)
		assert.Equal(t, http.StatusOK, clientErr.StatusCode)
		assert.NotNil(t, errors.Unwrap(err))
	})

	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := NewLister().List(context.Background(), url, Credentials{})

		var clientErr *ClientError
		require.ErrorAs(t, err, &clientErr)
		assert.Equal(t, ErrorTypeNetwork, clientErr.Type)
		assert.Zero(t, clientErr.StatusCode)
	})

	t.Run("timeout", func(t *testing.T) {
		server := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		})

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := NewLister(WithHTTPClient(server.Client())).List(ctx, server.URL, Credentials{})

		var clientErr *ClientError
		require.ErrorAs(t, err, &clientErr)
		assert.Equal(t, ErrorTypeTimeout, clientErr.Type)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("empty tenant url", func(t *testing.T) {
		_, err := NewLister().List(context.Background(), "  ", Credentials{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, &ClientError{})
	})
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "https://api.example.com/clients/v2", Endpoint("https://api.example.com"))
	assert.Equal(t, "https://api.example.com/clients/v2", Endpoint("https://api.example.com//"))
}
