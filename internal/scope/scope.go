// Package scope holds the per-request state shared by every service call
// made while serving one request: who is asking, what to stamp on audit
// rows, and the request's batch loaders.
package scope

import (
	"sync"
	"time"
)

// Metadata is copied verbatim into the metadata column of audit rows.
type Metadata map[string]any

type Session struct {
	UserID   string
	IssuedAt time.Time
}

type Scope struct {
	session  Session
	metadata Metadata

	mu      sync.Mutex
	loaders map[any]any
}

func New(session Session, metadata Metadata) *Scope {
	if metadata == nil {
		metadata = Metadata{}
	}
	return &Scope{
		session:  session,
		metadata: metadata,
		loaders:  make(map[any]any),
	}
}

func Anonymous() *Scope {
	return New(Session{}, nil)
}

func (s *Scope) UserID() string {
	if s == nil {
		return ""
	}
	return s.session.UserID
}

func (s *Scope) Authenticated() bool {
	return s.UserID() != ""
}

func (s *Scope) Session() Session {
	if s == nil {
		return Session{}
	}
	return s.session
}

func (s *Scope) Metadata() Metadata {
	out := Metadata{}
	if s == nil {
		return out
	}
	for k, v := range s.metadata {
		out[k] = v
	}
	return out
}

// Loader returns the value registered under key, calling create the first
// time key is seen. A nil scope caches nothing.
func (s *Scope) Loader(key any, create func() any) any {
	if s == nil {
		return create()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.loaders[key]; ok {
		return existing
	}
	created := create()
	s.loaders[key] = created
	return created
}
