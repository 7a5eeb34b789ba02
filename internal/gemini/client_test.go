package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dwai-labs/newsletter-generator/internal/gemini"
	"github.com/dwai-labs/newsletter-generator/internal/retry"
)

func TestGenerateContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var body struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "write something", body.Contents[0].Parts[0].Text)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"TITLE: Hi\n"},{"text":"BODY: there"}]}}]}`))
	}))
	defer srv.Close()

	c := gemini.New(srv.URL, "test-key", time.Second)
	text, err := c.GenerateContent(context.Background(), "gemini-2.0-flash", "write something")
	require.NoError(t, err)
	require.Equal(t, "TITLE: Hi\nBODY: there", text)
}

func TestGenerateContentRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	c := gemini.New(srv.URL, "k", time.Second)
	_, err := c.GenerateContent(context.Background(), "m", "p")
	require.Error(t, err)

	var apiErr *gemini.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	require.Equal(t, "RESOURCE_EXHAUSTED", apiErr.Status)
	require.Equal(t, "Quota exceeded", apiErr.Message)
	require.True(t, retry.RateLimited(err))
}

func TestGenerateContentPlainError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := gemini.New(srv.URL, "k", time.Second)
	_, err := c.GenerateContent(context.Background(), "m", "p")

	var apiErr *gemini.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, "upstream exploded", apiErr.Message)
	require.False(t, retry.RateLimited(err))
}

func TestGenerateContentEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := gemini.New(srv.URL, "k", time.Second)
	_, err := c.GenerateContent(context.Background(), "m", "p")
	require.ErrorIs(t, err, gemini.ErrEmptyResponse)
}
