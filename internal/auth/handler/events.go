package handler

import (
	"io"
	"net/http"
	"sync"

	"langscope-auth/internal/auth"
	"langscope-auth/internal/middleware"
	"langscope-auth/internal/session"

	"github.com/gin-gonic/gin"
)

const eventBuffer = 16

type stateChange struct {
	Event   auth.Event    `json:"event"`
	Session *auth.Session `json:"session"`
}

// callerView narrows the client's state changes to one caller. Another
// user's session is reported as no session.
type callerView struct {
	caller *session.Session

	mu       sync.Mutex
	started  bool
	signedIn bool
}

func (v *callerView) translate(event auth.Event, s *auth.Session) (stateChange, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if s != nil && !owns(v.caller, s) {
		s = nil
	}

	first := !v.started
	v.started = true

	switch {
	case s != nil:
		v.signedIn = true
		return stateChange{Event: event, Session: s}, true
	case first:
		return stateChange{Event: auth.EventInitialSession}, true
	case v.signedIn:
		v.signedIn = false
		return stateChange{Event: auth.EventSignedOut}, true
	}
	return stateChange{}, false
}

// Events streams the caller's auth state changes as server-sent events.
// The first event is the current state; the subscription ends with the
// request.
func (h *Handler) Events(c *gin.Context) {
	caller, ok := middleware.SessionFromContext(c.Request.Context())
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	view := &callerView{caller: caller}
	changes := make(chan stateChange, eventBuffer)

	sub := h.client.OnAuthStateChange(func(event auth.Event, s *auth.Session) {
		change, ok := view.translate(event, s)
		if !ok {
			return
		}
		select {
		case changes <- change:
		default:
			// slow consumer; drop rather than block sign-in/sign-out
		}
	})
	defer sub.Unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case change := <-changes:
			c.SSEvent(string(change.Event), change)
			return true
		}
	})
}
