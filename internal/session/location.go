// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// ParamSession is the query parameter carrying the active session id.
const ParamSession = "session"

// Location is an addressable marker of the active session.
type Location interface {
	SessionID() string
	SetSessionID(id string)
}

// URLLocation keeps the active session id in a URL query parameter. It is
// safe for concurrent use.
type URLLocation struct {
	mu sync.Mutex
	u  *url.URL
}

// ParseLocation builds a location from a URL such as
// "http://localhost:8000/?session=abc123". An absent or empty parameter
// means no session.
func ParseLocation(raw string) (*URLLocation, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty location")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse location: %w", err)
	}
	return &URLLocation{u: u}, nil
}

// NewLocation returns a location rooted at base with no session.
func NewLocation(base string) *URLLocation {
	u, err := url.Parse(base)
	if err != nil || base == "" {
		u = &url.URL{Scheme: "http", Host: "localhost", Path: "/"}
	}
	q := u.Query()
	q.Del(ParamSession)
	u.RawQuery = q.Encode()
	return &URLLocation{u: u}
}

// SessionID returns the id in the location, or "".
func (l *URLLocation) SessionID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.u.Query().Get(ParamSession)
}

// SetSessionID writes id into the location; "" removes the parameter.
// Other query parameters are preserved.
func (l *URLLocation) SetSessionID(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	q := l.u.Query()
	if id == "" {
		q.Del(ParamSession)
	} else {
		q.Set(ParamSession, id)
	}
	l.u.RawQuery = q.Encode()
}

// String returns the shareable form of the location.
func (l *URLLocation) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.u.String()
}
