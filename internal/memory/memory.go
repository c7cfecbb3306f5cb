package memory

import "time"

const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

// Turn is one utterance in a session's conversation, appended in order and
// never rewritten.
type Turn struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"ts"`
}

// Session groups the conversation and preferences kept under one session id.
type Session struct {
	Conversation []Turn         `json:"conversation"`
	Preferences  map[string]any `json:"preferences"`
}

// Document is the persisted conversation state for all sessions.
type Document struct {
	Sessions map[string]*Session `json:"sessions"`
}

func emptyDocument() Document {
	return Document{Sessions: make(map[string]*Session)}
}

// Store abstracts persistence of dialogue turns and session preferences.
// Preferences are last-write-wins per key.
type Store interface {
	AppendTurn(sessionID, role, text string) error
	Conversation(sessionID string) ([]Turn, error)
	SetPreference(sessionID, key string, value any) error
	Preference(sessionID, key string) (any, bool, error)
	Preferences(sessionID string) (map[string]any, error)
}
