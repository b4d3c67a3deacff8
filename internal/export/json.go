// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/rigrun-chat/internal/model"
)

// JSONExporter exports conversations as a JSON document. Only finalized
// content is written; block structure is not part of the export.
type JSONExporter struct {
	options *Options
}

type jsonMessage struct {
	Role      model.Role `json:"role"`
	Content   string     `json:"content"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type jsonDocument struct {
	Title     string        `json:"title"`
	SessionID string        `json:"session_id,omitempty"`
	Exported  time.Time     `json:"exported"`
	Messages  []jsonMessage `json:"messages"`
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a conversation to indented JSON.
func (e *JSONExporter) Export(title string, msgs []model.Message) ([]byte, error) {
	if len(msgs) == 0 {
		return nil, ErrNoMessages
	}
	doc := jsonDocument{
		Title:     title,
		SessionID: e.options.SessionID,
		Exported:  e.options.exportedAt(),
		Messages:  make([]jsonMessage, len(msgs)),
	}
	for i, m := range msgs {
		doc.Messages[i] = jsonMessage{Role: m.Role, Content: m.Content}
		if e.options.IncludeTimestamps && !m.Timestamp.IsZero() {
			ts := m.Timestamp
			doc.Messages[i].Timestamp = &ts
		}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
