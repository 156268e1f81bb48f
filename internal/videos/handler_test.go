package videos

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sora2-studio/backend/internal/models"
)

type recordingNotifier struct {
	mu     sync.Mutex
	videos []models.Video
}

func (n *recordingNotifier) VideoCreated(v models.Video) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.videos = append(n.videos, v)
}

func newTestRouter(t *testing.T) (*gin.Engine, *Repository, *recordingNotifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := NewRepository()
	h := NewHandler(repo, nil)
	n := &recordingNotifier{}
	h.SetNotifier(n)

	r := gin.New()
	r.POST("/api/generate", h.Generate)
	r.GET("/api/videos", h.List)
	r.GET("/api/video/:id", h.GetByID)
	return r, repo, n
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type videoResponse struct {
	Success bool         `json:"success"`
	Video   models.Video `json:"video"`
}

type videosResponse struct {
	Success bool           `json:"success"`
	Videos  []models.Video `json:"videos"`
}

func TestGenerate_Success(t *testing.T) {
	r, repo, n := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/generate",
		`{"prompt":"A beautiful sunset over the ocean","settings":{"duration":"5","quality":"1080p","style":"realistic","fps":"30"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp videoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, strings.HasPrefix(resp.Video.ID, IDPrefix))
	assert.Equal(t, "A beautiful sunset over the ocean", resp.Video.Prompt)
	assert.JSONEq(t, `{"duration":"5","quality":"1080p","style":"realistic","fps":"30"}`, string(resp.Video.Settings))
	assert.Equal(t, SampleURLs[0], resp.Video.URL)
	assert.Equal(t, models.VideoStatusCompleted, resp.Video.Status)
	assert.False(t, resp.Video.CreatedAt.IsZero())

	var raw struct {
		Video map[string]json.RawMessage `json:"video"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	for _, key := range []string{"id", "prompt", "settings", "url", "created_at", "status"} {
		assert.Contains(t, raw.Video, key)
	}

	assert.Equal(t, 1, repo.Count())
	require.Len(t, n.videos, 1)
	assert.Equal(t, resp.Video.ID, n.videos[0].ID)
}

func TestGenerate_SettingsOptional(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/generate", `{"prompt":"no settings"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp videoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.JSONEq(t, `{}`, string(resp.Video.Settings))
}

func TestGenerate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing prompt", `{"settings":{}}`, `{"error":"Prompt is required"}`},
		{"empty prompt", `{"prompt":""}`, `{"error":"Prompt is required"}`},
		{"too long", `{"prompt":"` + strings.Repeat("a", 501) + `"}`, `{"error":"Prompt is too long (max 500 characters)"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, repo, n := newTestRouter(t)
			w := doJSON(r, http.MethodPost, "/api/generate", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
			assert.Equal(t, 0, repo.Count())
			assert.Empty(t, n.videos)
		})
	}
}

func TestGenerate_MaxLengthAccepted(t *testing.T) {
	r, _, _ := newTestRouter(t)
	prompt := strings.Repeat("a", MaxPromptLength)

	w := doJSON(r, http.MethodPost, "/api/generate", `{"prompt":"`+prompt+`"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp videoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, prompt, resp.Video.Prompt)
}

func TestGenerate_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"prompt":`},
		{"prompt not a string", `{"prompt":123}`},
		{"empty body", ``},
		{"null body", `null`},
		{"array body", `[{"prompt":"x"}]`},
		{"string body", `"a prompt"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, repo, _ := newTestRouter(t)
			req := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			assert.NotContains(t, body, "success")
			assert.Equal(t, 0, repo.Count())
		})
	}
}

func TestList(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/api/videos", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"videos":[]}`, w.Body.String())

	var ids []string
	for i := 0; i < 25; i++ {
		w := doJSON(r, http.MethodPost, "/api/generate", `{"prompt":"video"}`)
		require.Equal(t, http.StatusOK, w.Code)
		var resp videoResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		ids = append(ids, resp.Video.ID)
	}

	w = doJSON(r, http.MethodGet, "/api/videos", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp videosResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Videos, RecentWindow)
	for i, v := range resp.Videos {
		assert.Equal(t, ids[i+5], v.ID)
	}
}

func TestGetByID(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/generate", `{"prompt":"find me","settings":{"fps":"30"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	var created videoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(r, http.MethodGet, "/api/video/"+created.Video.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got videoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.Success)
	assert.Equal(t, created.Video.ID, got.Video.ID)
	assert.Equal(t, created.Video.Prompt, got.Video.Prompt)
	assert.Equal(t, created.Video.URL, got.Video.URL)
	assert.JSONEq(t, string(created.Video.Settings), string(got.Video.Settings))
}

func TestGetByID_NotFound(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/api/video/video_123", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Video not found"}`, w.Body.String())
}
