// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"time"

	"github.com/jeranaias/rigrun-chat/internal/model"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CompareRequest is the body of POST /api/compare.
type CompareRequest struct {
	SessionA string `json:"session_a" validate:"required"`
	SessionB string `json:"session_b" validate:"required,nefield=SessionA"`
	Region   string `json:"region,omitempty"`
	TitleA   string `json:"title_a,omitempty"`
	TitleB   string `json:"title_b,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type sessionPayload struct {
	ID           string `json:"id" validate:"required"`
	Title        string `json:"title"`
	MessageCount int    `json:"message_count" validate:"gte=0"`
	Region       string `json:"region"`
}

func (p sessionPayload) toModel() model.Session {
	return model.Session{
		ID:           p.ID,
		Title:        p.Title,
		MessageCount: p.MessageCount,
		Region:       p.Region,
	}
}

type messagePayload struct {
	Role      string    `json:"role" validate:"required,oneof=user assistant system"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type historyResponse struct {
	Messages []messagePayload `json:"messages" validate:"dive"`
}

type compareResponse struct {
	Comparison string          `json:"comparison" validate:"required"`
	SessionA   *sessionPayload `json:"session_a" validate:"required"`
	SessionB   *sessionPayload `json:"session_b" validate:"required"`
	Region     string          `json:"region"`
}

type sessionsResponse []sessionPayload

type sessionsEnvelope struct {
	Sessions sessionsResponse `json:"sessions" validate:"dive"`
}
