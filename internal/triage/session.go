package triage

import (
	"time"
)

// Stage identifies where a session is in the triage flow.
type Stage string

const (
	StageStart    Stage = "inicio"
	StageIdentity Stage = "dados_pessoais"
	StageReasons  Stage = "motivos_busca"
	StageScale    Stage = "sintomas_escala"
	StageComplete Stage = "resultado"
)

// Session is the mutable per-conversation state. It is a draft: once the
// flow reaches a terminal state its contents are frozen into a Record and
// the session only serves the fallback responder until an explicit restart.
type Session struct {
	ConversationID string    `json:"conversation_id"`
	Stage          Stage     `json:"stage"`
	Identity       Identity  `json:"identity"`
	Answers        Answers   `json:"answers"`
	ReasonCursor   int       `json:"reason_cursor"`
	ScaleCursor    int       `json:"scale_cursor"`
	FollowUp       bool      `json:"follow_up"`
	StartedAt      time.Time `json:"started_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewSession creates a fresh session at the start stage.
func NewSession(conversationID string, now time.Time) *Session {
	return &Session{
		ConversationID: conversationID,
		Stage:          StageStart,
		StartedAt:      now.UTC(),
		UpdatedAt:      now.UTC(),
	}
}

// Reset clears all captured state, keeping only the conversation identity.
func (s *Session) Reset(now time.Time) {
	*s = *NewSession(s.ConversationID, now)
}

// Completed reports whether the session reached a terminal state.
func (s *Session) Completed() bool {
	return s.Stage == StageComplete
}

// touch records the last mutation time.
func (s *Session) touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}
