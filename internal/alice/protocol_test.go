package alice

import (
	"encoding/json"
	"testing"
)

func TestUserID(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"user id", `{"session":{"user_id":"u1","application":{"application_id":"app"}}}`, "u1"},
		{"application fallback", `{"session":{"application":{"application_id":"app"}}}`, "app"},
		{"blank user id", `{"session":{"user_id":"  ","application":{"application_id":"app"}}}`, "app"},
		{"nothing", `{}`, UnknownUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req Request
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := req.UserID(); got != tt.expected {
				t.Errorf("UserID() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCommand(t *testing.T) {
	var req Request
	req.Request.Command = "  Create Task "
	if got := req.Command(); got != "create task" {
		t.Errorf("Command() = %q", got)
	}

	req.Request.Command = ""
	req.Request.OriginalUtterance = "Show Tasks"
	if got := req.Command(); got != "show tasks" {
		t.Errorf("Command() fallback = %q", got)
	}
}

func TestNewResponse(t *testing.T) {
	resp := NewResponse("hi", true)
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"response":{"text":"hi","tts":"hi","end_session":true},"version":"1.0"}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}
