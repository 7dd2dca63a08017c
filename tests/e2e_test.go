package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptlab/promptlab/backend/handlers"
	"github.com/promptlab/promptlab/backend/models"
	"github.com/promptlab/promptlab/backend/store"
)

func TestE2E_CompleteUserFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	h := handlers.New(store.New(), logger)

	server := httptest.NewServer(h.Routes())
	defer server.Close()

	client := server.Client()
	baseURL := server.URL

	post := func(t *testing.T, path string, payload any) *http.Response {
		t.Helper()
		var body io.Reader
		if payload != nil {
			data, err := json.Marshal(payload)
			require.NoError(t, err)
			body = bytes.NewReader(data)
		}
		resp, err := client.Post(baseURL+path, "application/json", body)
		require.NoError(t, err)
		return resp
	}

	get := func(t *testing.T, path string) *http.Response {
		t.Helper()
		resp, err := client.Get(baseURL + path)
		require.NoError(t, err)
		return resp
	}

	del := func(t *testing.T, path string) *http.Response {
		t.Helper()
		req, err := http.NewRequest(http.MethodDelete, baseURL+path, nil)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		return resp
	}

	decode := func(t *testing.T, resp *http.Response, out any) {
		t.Helper()
		defer resp.Body.Close()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}

	var collection models.Collection
	var tag models.Tag
	var prompt models.Prompt
	var version models.PromptVersion

	t.Run("Health", func(t *testing.T) {
		resp := get(t, "/health")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var health models.HealthResponse
		decode(t, resp, &health)
		assert.Equal(t, "healthy", health.Status)
	})

	t.Run("CreateCollection", func(t *testing.T) {
		resp := post(t, "/collections", map[string]string{
			"name":        "Onboarding",
			"description": "Prompts for new user flows",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		decode(t, resp, &collection)
		assert.NotEmpty(t, collection.ID)
	})

	t.Run("CreateTag", func(t *testing.T) {
		resp := post(t, "/tags", map[string]string{"name": "Email", "color": "#ff6600"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		decode(t, resp, &tag)
		assert.Equal(t, "email", tag.Slug)
	})

	t.Run("CreatePrompt", func(t *testing.T) {
		resp := post(t, "/prompts", map[string]any{
			"title":         "Welcome Email",
			"content":       "Hi {{name}}, welcome to {{product}}!",
			"collection_id": collection.ID,
			"tag_ids":       []string{tag.ID},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		decode(t, resp, &prompt)
		assert.Equal(t, []string{"name", "product"}, prompt.Variables)
	})

	t.Run("FilterPrompts", func(t *testing.T) {
		resp := get(t, "/prompts?collection_id="+collection.ID+"&tag_ids="+tag.ID+"&search=welcome")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var list models.PromptList
		decode(t, resp, &list)
		require.Equal(t, 1, list.Total)
		assert.Equal(t, prompt.ID, list.Prompts[0].ID)
	})

	t.Run("SnapshotAndUpdate", func(t *testing.T) {
		resp := post(t, "/prompts/"+prompt.ID+"/versions", map[string]string{
			"message": "initial draft",
			"tag":     "v1",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		decode(t, resp, &version)
		assert.Equal(t, 1, version.VersionNumber)

		data, err := json.Marshal(map[string]any{
			"title":   "Welcome Email",
			"content": "Hello {{name}}!",
		})
		require.NoError(t, err)
		req, err := http.NewRequest(http.MethodPut, baseURL+"/prompts/"+prompt.ID, bytes.NewReader(data))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		putResp, err := client.Do(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, putResp.StatusCode)
		putResp.Body.Close()
	})

	t.Run("RestoreVersion", func(t *testing.T) {
		resp := post(t, "/prompts/"+prompt.ID+"/versions/"+version.ID+"/restore", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var restored models.Prompt
		decode(t, resp, &restored)
		assert.Equal(t, "Hi {{name}}, welcome to {{product}}!", restored.Content)
	})

	t.Run("CompareVersions", func(t *testing.T) {
		resp := get(t, "/prompts/"+prompt.ID+"/versions")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var list models.VersionList
		decode(t, resp, &list)
		require.Equal(t, 2, list.Total)

		diffResp := get(t, "/prompts/"+prompt.ID+"/diff?from="+version.ID+"&to="+list.Versions[0].ID)
		require.Equal(t, http.StatusOK, diffResp.StatusCode)
		var diff models.VersionDiff
		decode(t, diffResp, &diff)
		assert.NotZero(t, diff.Summary.Total)
	})

	t.Run("CascadeDelete", func(t *testing.T) {
		resp := del(t, "/collections/"+collection.ID)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp.Body.Close()

		// The prompt and its versions went with the collection.
		notFound := get(t, "/prompts/"+prompt.ID)
		assert.Equal(t, http.StatusNotFound, notFound.StatusCode)
		notFound.Body.Close()

		// The tag survives on its own.
		tagResp := get(t, "/tags/"+tag.ID)
		assert.Equal(t, http.StatusOK, tagResp.StatusCode)
		tagResp.Body.Close()
	})

	t.Run("Stats", func(t *testing.T) {
		resp := get(t, "/stats")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var stats models.Stats
		decode(t, resp, &stats)
		assert.Equal(t, 0, stats.TotalCollections)
		assert.Equal(t, 0, stats.TotalPrompts)
		assert.Equal(t, 0, stats.TotalPromptVersions)
		assert.Equal(t, 1, stats.TotalTags)
	})
}
