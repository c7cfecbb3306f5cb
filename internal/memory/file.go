package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileMemory persists all sessions in one JSON document with the same
// read-modify-write discipline as the record store. A corrupt document reads
// as empty; existing turns are only ever appended to.
type FileMemory struct {
	path string
	mu   sync.Mutex
}

func NewFileMemory(path string) (*FileMemory, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	m := &FileMemory{path: path}
	if st, err := os.Stat(path); err != nil || st.Size() == 0 {
		if err := m.save(emptyDocument()); err != nil {
			return nil, fmt.Errorf("seed document: %w", err)
		}
	}
	return m, nil
}

func (m *FileMemory) AppendTurn(sessionID, role, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := m.load()
	s := ensureSession(&doc, sessionID)
	s.Conversation = append(s.Conversation, Turn{
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	})
	if err := m.save(doc); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

func (m *FileMemory) Conversation(sessionID string) ([]Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := m.load()
	if s, ok := doc.Sessions[sessionID]; ok {
		return s.Conversation, nil
	}
	return nil, nil
}

func (m *FileMemory) SetPreference(sessionID, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := m.load()
	s := ensureSession(&doc, sessionID)
	s.Preferences[key] = value
	if err := m.save(doc); err != nil {
		return fmt.Errorf("set preference: %w", err)
	}
	return nil
}

func (m *FileMemory) Preference(sessionID, key string) (any, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := m.load()
	if s, ok := doc.Sessions[sessionID]; ok {
		v, ok := s.Preferences[key]
		return v, ok, nil
	}
	return nil, false, nil
}

func (m *FileMemory) Preferences(sessionID string) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := m.load()
	if s, ok := doc.Sessions[sessionID]; ok {
		return s.Preferences, nil
	}
	return map[string]any{}, nil
}

func ensureSession(doc *Document, sessionID string) *Session {
	if doc.Sessions == nil {
		doc.Sessions = make(map[string]*Session)
	}
	s, ok := doc.Sessions[sessionID]
	if !ok {
		s = &Session{Conversation: []Turn{}, Preferences: make(map[string]any)}
		doc.Sessions[sessionID] = s
	}
	if s.Preferences == nil {
		s.Preferences = make(map[string]any)
	}
	return s
}

func (m *FileMemory) load() Document {
	f, err := os.Open(m.path)
	if err != nil {
		return emptyDocument()
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	var doc Document
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return emptyDocument()
	}
	if doc.Sessions == nil {
		doc.Sessions = make(map[string]*Session)
	}
	return doc
}

func (m *FileMemory) save(doc Document) error {
	f, err := os.OpenFile(m.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
