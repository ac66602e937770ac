// Package alice holds the wire types of the Yandex Alice webhook protocol.
package alice

import "strings"

// Version is the protocol version echoed in every response.
const Version = "1.0"

// UnknownUser is used when a request carries no identifying field.
const UnknownUser = "unknown_user"

// Request is the subset of the inbound webhook body the skill reads.
type Request struct {
	Session struct {
		UserID      string `json:"user_id"`
		Application struct {
			ApplicationID string `json:"application_id"`
		} `json:"application"`
	} `json:"session"`
	Request struct {
		Command           string `json:"command"`
		OriginalUtterance string `json:"original_utterance"`
	} `json:"request"`
	Version string `json:"version"`
}

// UserID returns session.user_id, else the application id, else UnknownUser.
func (r *Request) UserID() string {
	if id := strings.TrimSpace(r.Session.UserID); id != "" {
		return id
	}
	if id := strings.TrimSpace(r.Session.Application.ApplicationID); id != "" {
		return id
	}
	return UnknownUser
}

// Command returns the lower-cased command, falling back to the raw utterance.
func (r *Request) Command() string {
	cmd := r.Request.Command
	if strings.TrimSpace(cmd) == "" {
		cmd = r.Request.OriginalUtterance
	}
	return strings.ToLower(strings.TrimSpace(cmd))
}

// Response is the outbound webhook body.
type Response struct {
	Response Body   `json:"response"`
	Version  string `json:"version"`
}

// Body is the "response" object of a Response.
type Body struct {
	Text       string `json:"text"`
	TTS        string `json:"tts"`
	EndSession bool   `json:"end_session"`
}

// NewResponse builds a response speaking text.
func NewResponse(text string, endSession bool) Response {
	return Response{
		Response: Body{
			Text:       text,
			TTS:        text,
			EndSession: endSession,
		},
		Version: Version,
	}
}
