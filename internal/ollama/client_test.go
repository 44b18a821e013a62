package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressroom/hub/internal/models"
)

func embedServer(t *testing.T, dims int) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.Model)
		assert.NotEmpty(t, req.Input)

		vec := make([]float32, dims)
		for i := range vec {
			vec[i] = 0.01
		}

		require.NoError(t, json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{vec}}))
	}))
}

func TestClient_CreateEmbedding(t *testing.T) {
	t.Run("returns the vector when dimensions match", func(t *testing.T) {
		srv := embedServer(t, 768)
		defer srv.Close()

		client := NewClient(srv.URL)

		vec, err := client.CreateEmbedding(context.Background(), "hello world")

		require.NoError(t, err)
		assert.Len(t, vec, 768)
	})

	t.Run("rejects a vector of the wrong dimension", func(t *testing.T) {
		srv := embedServer(t, 3)
		defer srv.Close()

		client := NewClient(srv.URL)

		_, err := client.CreateEmbedding(context.Background(), "hello world")

		require.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("empty input fails before any request", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1") // would fail if dialed

		_, err := client.CreateEmbedding(context.Background(), "   ")

		require.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("non-200 response is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer srv.Close()

		client := NewClient(srv.URL)

		_, err := client.CreateEmbedding(context.Background(), "hello")

		require.Error(t, err)
	})
}

func TestModerator_Moderate(t *testing.T) {
	t.Run("parses a structured verdict", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/chat", r.URL.Path)

			var req chatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "llama3.2:3b", req.Model)
			assert.False(t, req.Stream)
			require.Len(t, req.Messages, 2)
			assert.Equal(t, "system", req.Messages[0].Role)

			verdict := `{"isFlagged":true,"score":0.62,"categories":["insult"],"reason":"Name-calling.","confidence":0.8}`
			require.NoError(t, json.NewEncoder(w).Encode(chatResponse{
				Message: chatMessage{Role: "assistant", Content: verdict},
			}))
		}))
		defer srv.Close()

		moderator := NewModerator(NewClient(srv.URL), "llama3.2:3b")

		result, err := moderator.Moderate(context.Background(), "Title", "Some content")

		require.NoError(t, err)
		assert.True(t, result.Flagged)
		assert.InDelta(t, 0.62, result.Score, 1e-9)
		assert.Equal(t, []models.ModerationCategory{models.CategoryInsult}, result.Categories)
		require.NotNil(t, result.Reason)
		assert.Equal(t, "Name-calling.", *result.Reason)
		assert.Equal(t, "llama3.2:3b", result.Model)
		assert.False(t, result.ModeratedAt.IsZero())
	})

	t.Run("empty message content is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			require.NoError(t, json.NewEncoder(w).Encode(chatResponse{}))
		}))
		defer srv.Close()

		moderator := NewModerator(NewClient(srv.URL), "llama3.2:3b")

		_, err := moderator.Moderate(context.Background(), "Title", "Content")

		require.ErrorIs(t, err, ErrEmptyModerationResponse)
	})
}
