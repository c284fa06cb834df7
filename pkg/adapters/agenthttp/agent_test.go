package agenthttp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attestra/veritor/pkg/adapters/agenthttp"
)

func TestProcess_MapsWireResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "What is the daily allowance?", body["query"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"response": "The daily allowance is 28,00 EUR.",
			"documents_found": 3,
			"confidence": 0.87,
			"sources": [
				{"title": "Rate table", "origin": "regulation.pdf", "score": 0.9, "confidence": 0.85}
			],
			"model": "retriever-v2"
		}`))
	}))
	defer srv.Close()

	agent := agenthttp.New(srv.URL)
	result, err := agent.Process(context.Background(), "What is the daily allowance?")
	require.NoError(t, err)

	assert.Equal(t, "The daily allowance is 28,00 EUR.", result.Response)
	assert.Equal(t, 3, result.DocumentsFound)
	assert.InDelta(t, 0.87, result.Confidence, 1e-9)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "Rate table", result.Sources[0].Title)
	assert.Equal(t, "regulation.pdf", result.Sources[0].Origin)
}

func TestProcess_WeaklyTypedFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Some backends stringify their numbers.
		w.Write([]byte(`{"response": "ok answer text", "documents_found": "2", "confidence": "0.5"}`))
	}))
	defer srv.Close()

	result, err := agenthttp.New(srv.URL).Process(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, 2, result.DocumentsFound)
	assert.InDelta(t, 0.5, result.Confidence, 1e-9)
}

func TestProcess_SendsConfiguredHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		w.Write([]byte(`{"response": "fine"}`))
	}))
	defer srv.Close()

	_, err := agenthttp.New(srv.URL, agenthttp.WithHeader("X-Api-Key", "secret")).
		Process(context.Background(), "q")
	require.NoError(t, err)
}

func TestProcess_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := agenthttp.New(srv.URL).Process(context.Background(), "q")
	assert.ErrorContains(t, err, "status 503")
}

func TestProcess_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := agenthttp.New(srv.URL).Process(context.Background(), "q")
	assert.Error(t, err)
}

func TestProcess_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := agenthttp.New(srv.URL).Process(ctx, "q")
	assert.Error(t, err)
}
