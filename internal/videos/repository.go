package videos

import (
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sora2-studio/backend/internal/models"
)

const (
	// MaxPromptLength is the longest accepted prompt, in characters.
	MaxPromptLength = 500
	// RecentWindow is how many videos List returns.
	RecentWindow = 20
	// IDPrefix prefixes every video id.
	IDPrefix = "video_"
)

// SampleURLs are handed out round-robin, one per created video.
var SampleURLs = [...]string{
	"https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4",
	"https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ElephantsDream.mp4",
	"https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ForBiggerBlazes.mp4",
	"https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ForBiggerEscapes.mp4",
	"https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ForBiggerFun.mp4",
}

var (
	ErrPromptRequired = errors.New("prompt is required")
	ErrPromptTooLong  = errors.New("prompt is too long")
	ErrNotFound       = errors.New("video not found")
)

var emptySettings = json.RawMessage(`{}`)

// ValidatePrompt checks presence and length. Length counts characters, not bytes.
func ValidatePrompt(prompt string) error {
	if prompt == "" {
		return ErrPromptRequired
	}
	if utf8.RuneCountInString(prompt) > MaxPromptLength {
		return ErrPromptTooLong
	}
	return nil
}

// Repository is the in-memory, append-only video registry (thread-safe).
// It is created empty and lives as long as the server that owns it.
type Repository struct {
	mu     sync.RWMutex
	videos []models.Video
	lastMs int64
	now    func() time.Time
}

// NewRepository creates an empty registry.
func NewRepository() *Repository {
	return &Repository{now: time.Now}
}

// Create validates the prompt and appends a completed video. The sample URL is chosen by
// the number of videos created before this one; id, URL and append happen under one lock.
func (r *Repository) Create(prompt string, settings json.RawMessage) (models.Video, error) {
	if err := ValidatePrompt(prompt); err != nil {
		return models.Video{}, err
	}
	if len(settings) == 0 {
		settings = emptySettings
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	ms := now.UnixMilli()
	if ms <= r.lastMs {
		ms = r.lastMs + 1
	}
	r.lastMs = ms

	v := models.Video{
		ID:        IDPrefix + strconv.FormatInt(ms, 10),
		Prompt:    prompt,
		Settings:  settings,
		URL:       SampleURLs[len(r.videos)%len(SampleURLs)],
		CreatedAt: now,
		Status:    models.VideoStatusCompleted,
	}.Clone()
	r.videos = append(r.videos, v)
	return v.Clone(), nil
}

// List returns up to the last RecentWindow videos, oldest first.
func (r *Repository) List() []models.Video {
	r.mu.RLock()
	defer r.mu.RUnlock()
	start := 0
	if len(r.videos) > RecentWindow {
		start = len(r.videos) - RecentWindow
	}
	out := make([]models.Video, 0, len(r.videos)-start)
	for _, v := range r.videos[start:] {
		out = append(out, v.Clone())
	}
	return out
}

// GetByID scans the whole registry, not just the recent window.
func (r *Repository) GetByID(id string) (models.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.videos {
		if v.ID == id {
			return v.Clone(), nil
		}
	}
	return models.Video{}, ErrNotFound
}

// Count returns the number of videos created since start.
func (r *Repository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.videos)
}
