package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/OrphaMine/pkg/errors"
)

func TestEmbed_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "chemberta", req.Model)
		assert.Equal(t, "CCO", req.Prompt)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"embedding": []float64{0.1, -0.2, 0.3}})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL+"/", "chemberta", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "chemberta", c.Model())

	vec, err := c.Embed(context.Background(), "CCO")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, -0.2, 0.3}, vec)
}

func TestEmbed_Failures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		},
		"empty": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"embedding":[]}`))
		},
		"error field": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":"out of memory"}`))
		},
		"garbage": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`nope`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()
			c, err := NewClient(srv.URL, "m", time.Second)
			require.NoError(t, err)
			_, err = c.Embed(context.Background(), "x")
			assert.True(t, errors.IsCode(err, errors.ErrCodeEmbeddingFailed))
		})
	}
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient("", "m", 0)
	assert.True(t, errors.IsConfiguration(err))
	_, err = NewClient("http://localhost:11434", " ", 0)
	assert.True(t, errors.IsConfiguration(err))
}

//Personal.AI order the ending
