// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "testing"

func TestLocation_RoundTrip(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"http://localhost:8000/?session=abc123", "abc123"},
		{"http://localhost:8000/", ""},
		{"http://localhost:8000/?session=", ""},
		{"https://chat.example.com/c?x=1&session=a%2Fb", "a/b"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			loc, err := ParseLocation(tt.raw)
			if err != nil {
				t.Fatalf("ParseLocation(%q): %v", tt.raw, err)
			}
			if got := loc.SessionID(); got != tt.want {
				t.Errorf("SessionID() = %q, want %q", got, tt.want)
			}

			// Writing the id back and re-parsing yields the same id.
			loc.SetSessionID(tt.want)
			again, err := ParseLocation(loc.String())
			if err != nil {
				t.Fatal(err)
			}
			if got := again.SessionID(); got != tt.want {
				t.Errorf("round trip SessionID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocation_SetAndClear(t *testing.T) {
	loc := NewLocation("http://localhost:8000/?session=stale")
	if loc.SessionID() != "" {
		t.Fatal("NewLocation should start without a session")
	}

	loc.SetSessionID("abc123")
	if got := loc.String(); got != "http://localhost:8000/?session=abc123" {
		t.Errorf("String() = %q", got)
	}
	loc.SetSessionID("")
	if got := loc.String(); got != "http://localhost:8000/" {
		t.Errorf("String() after clear = %q", got)
	}
}

func TestParseLocation_Errors(t *testing.T) {
	for _, raw := range []string{"", "   ", "http://[::1"} {
		if _, err := ParseLocation(raw); err == nil {
			t.Errorf("ParseLocation(%q) expected error", raw)
		}
	}
}

func TestNewLocation_FallsBackOnBadBase(t *testing.T) {
	loc := NewLocation("")
	loc.SetSessionID("x")
	if got := loc.String(); got != "http://localhost/?session=x" {
		t.Errorf("String() = %q", got)
	}
}
