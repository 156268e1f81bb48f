package models

import (
	"encoding/json"
	"time"
)

// VideoStatusCompleted is the only status a video ever has; generation is synchronous.
const VideoStatusCompleted = "completed"

// Video is one generation result.
type Video struct {
	ID        string          `json:"id"`
	Prompt    string          `json:"prompt"`
	Settings  json.RawMessage `json:"settings"`
	URL       string          `json:"url"`
	CreatedAt time.Time       `json:"created_at"`
	Status    string          `json:"status"`
}

// Clone returns a copy of v that shares no memory with it.
func (v Video) Clone() Video {
	if v.Settings != nil {
		v.Settings = append(json.RawMessage(nil), v.Settings...)
	}
	return v
}
