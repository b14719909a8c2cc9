// Package session identifies a single compilation run (SPEC_FULL.md's
// [DOMAIN] session entry): an id attached to log lines and to the
// in-memory typed-artifact handle so concurrent compiles can be told
// apart. Grounded on the google/uuid.NewString idiom used for per-run
// session ids in theRebelliousNerd-codenerd's
// internal/browser/session_manager.go.
package session

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/google/uuid"
)

// Session is the identity of one compilation run: every module the
// pipeline processes during the run carries this id in its log fields.
type Session struct {
	ID        string
	StartedAt time.Time
}

// New creates a Session with a fresh random id.
func New() *Session {
	return &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
}

// Logger returns a logrus entry pre-populated with this session's id,
// for callers that want every log line from a run to carry it without
// threading the id through manually.
func (s *Session) Logger() *log.Entry {
	return log.WithField("session", s.ID)
}

// Artifact is the in-memory typed-artifact handle for one compiled
// module within a session: the generated code plus enough identity to
// correlate it back to the run and source that produced it.
type Artifact struct {
	SessionID  string
	SourcePath string
	Target     string
	Code       []byte
	SourceMap  []byte
}

// NewArtifact stamps an Artifact with this session's id.
func (s *Session) NewArtifact(sourcePath, target string, code, sourceMap []byte) Artifact {
	return Artifact{
		SessionID:  s.ID,
		SourcePath: sourcePath,
		Target:     target,
		Code:       code,
		SourceMap:  sourceMap,
	}
}
