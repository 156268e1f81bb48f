package videos

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sora2-studio/backend/internal/metrics"
	"github.com/sora2-studio/backend/internal/models"
	"github.com/sora2-studio/backend/pkg/response"
)

const (
	msgPromptRequired = "Prompt is required"
	msgPromptTooLong  = "Prompt is too long (max 500 characters)"
	msgNotFound       = "Video not found"
)

// Notifier is told about every created video (e.g. the websocket hub). Optional.
type Notifier interface {
	VideoCreated(v models.Video)
}

// Handler handles video HTTP endpoints.
type Handler struct {
	repo     *Repository
	notifier Notifier
	logger   *zap.Logger
}

// NewHandler creates a videos handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// SetNotifier sets the optional created-video notifier.
func (h *Handler) SetNotifier(n Notifier) { h.notifier = n }

var errNotObject = errors.New("expected a JSON object")

type generateRequest struct {
	Prompt   string          `json:"prompt"`
	Settings json.RawMessage `json:"settings"`
}

// decodeGenerateRequest accepts only a JSON object; null, arrays and scalars are malformed.
func decodeGenerateRequest(body []byte, req *generateRequest) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		return errNotObject
	}
	return json.Unmarshal(trimmed, req)
}

// Generate handles POST /api/generate.
func (h *Handler) Generate(c *gin.Context) {
	var req generateRequest
	body, err := c.GetRawData()
	if err == nil {
		err = decodeGenerateRequest(body, &req)
	}
	if err != nil {
		metrics.RecordRejected(metrics.ReasonInternal)
		h.logger.Warn("decode generate request failed", zap.Error(err))
		response.Internal(c, "invalid request body: "+err.Error())
		return
	}

	v, err := h.repo.Create(req.Prompt, req.Settings)
	switch {
	case errors.Is(err, ErrPromptRequired):
		metrics.RecordRejected(metrics.ReasonPromptRequired)
		response.BadRequest(c, msgPromptRequired)
		return
	case errors.Is(err, ErrPromptTooLong):
		metrics.RecordRejected(metrics.ReasonPromptTooLong)
		response.BadRequest(c, msgPromptTooLong)
		return
	case err != nil:
		metrics.RecordRejected(metrics.ReasonInternal)
		h.logger.Error("create video failed", zap.Error(err))
		response.Internal(c, err.Error())
		return
	}

	metrics.RecordCreated()
	h.logger.Info("video created", zap.String("video_id", v.ID), zap.String("url", v.URL))
	if h.notifier != nil {
		h.notifier.VideoCreated(v)
	}
	response.OK(c, gin.H{"video": v})
}

// List handles GET /api/videos.
func (h *Handler) List(c *gin.Context) {
	response.OK(c, gin.H{"videos": h.repo.List()})
}

// GetByID handles GET /api/video/:id.
func (h *Handler) GetByID(c *gin.Context) {
	v, err := h.repo.GetByID(c.Param("id"))
	if err != nil {
		response.NotFound(c, msgNotFound)
		return
	}
	response.OK(c, gin.H{"video": v})
}
