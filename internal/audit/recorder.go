// Package audit records auth state transitions in PostgreSQL.
package audit

import (
	"context"
	"database/sql"
	"sync/atomic"
	"time"

	"langscope-auth/internal/auth"
	"langscope-auth/internal/logger"

	"github.com/google/uuid"
)

const writeTimeout = 3 * time.Second

const insertEvent = `
	INSERT INTO auth_events (id, event, user_id, email, mode, occurred_at)
	VALUES ($1, $2, $3, $4, $5, $6)
`

// Execer is the subset of *sql.DB the recorder needs.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Recorder writes SIGNED_IN and SIGNED_OUT transitions. Write failures
// are logged and never reach the auth operation that triggered them.
type Recorder struct {
	db   Execer
	mode string
	now  func() time.Time
}

func NewRecorder(db Execer, mode string) *Recorder {
	return &Recorder{db: db, mode: mode, now: time.Now}
}

// Attach subscribes the recorder to c. The immediate callback describes
// existing state rather than a transition, so it is not recorded.
func (r *Recorder) Attach(c auth.Client) *auth.Subscription {
	var initial atomic.Bool
	initial.Store(true)
	return c.OnAuthStateChange(func(event auth.Event, s *auth.Session) {
		if initial.CompareAndSwap(true, false) {
			return
		}
		r.Record(event, s)
	})
}

// Record persists one transition. Events other than sign-in and
// sign-out are ignored.
func (r *Recorder) Record(event auth.Event, s *auth.Session) {
	if event != auth.EventSignedIn && event != auth.EventSignedOut {
		return
	}

	var userID, email sql.NullString
	if s != nil {
		userID = sql.NullString{String: s.User.ID, Valid: s.User.ID != ""}
		email = sql.NullString{String: s.User.Email, Valid: s.User.Email != ""}
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, insertEvent,
		uuid.New(),
		string(event),
		userID,
		email,
		r.mode,
		r.now().UTC(),
	)
	if err != nil {
		logger.Error("failed to record auth event", map[string]any{
			"event": string(event),
			"error": err.Error(),
		})
	}
}
