package mock

import (
	"context"
	"strings"
	"sync"
	"testing"

	"langscope-auth/internal/auth"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"pgregory.net/rapid"
)

var devCreds = auth.Credentials{Email: DevEmail, Password: DevPassword}

func newClient(t require.TestingT) *Client {
	c, err := New(Config{HashCost: bcrypt.MinCost})
	require.NoError(t, err)
	return c
}

func TestClient_SignInSignOutScenario(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	s, err := c.GetSession(ctx)
	require.NoError(t, err)
	require.Nil(t, s)

	resp, err := c.SignInWithPassword(ctx, devCreds)
	require.NoError(t, err)
	require.Equal(t, AccessToken, resp.Session.AccessToken)
	require.Equal(t, auth.User{ID: UserID, Email: DevEmail, Role: UserRole}, *resp.User)
	require.Equal(t, *resp.User, resp.Session.User)

	s, err = c.GetSession(ctx)
	require.NoError(t, err)
	require.Equal(t, resp.Session, s)

	u, err := c.GetUser(ctx)
	require.NoError(t, err)
	require.Equal(t, resp.User, u)

	require.NoError(t, c.SignOut(ctx))

	s, err = c.GetSession(ctx)
	require.NoError(t, err)
	require.Nil(t, s)

	u, err = c.GetUser(ctx)
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestClient_WrongCredentials(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	notified := 0
	c.OnAuthStateChange(func(auth.Event, *auth.Session) { notified++ })

	resp, err := c.SignInWithPassword(ctx, auth.Credentials{Email: "x@x.com", Password: "wrong"})
	require.Nil(t, resp)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	require.Equal(t, "Invalid login credentials", err.Error())

	s, err := c.GetSession(ctx)
	require.NoError(t, err)
	require.Nil(t, s)
	require.Equal(t, 1, notified, "only the immediate callback")
}

func TestClient_WrongPasswordForDevEmail(t *testing.T) {
	c := newClient(t)

	_, err := c.SignInWithPassword(context.Background(), auth.Credentials{Email: DevEmail, Password: "TestPassword123"})
	require.True(t, auth.IsInvalidCredentials(err))
}

func TestClient_RejectsNearMissEmails(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	notified := 0
	c.OnAuthStateChange(func(auth.Event, *auth.Session) { notified++ })

	for _, email := range []string{
		strings.ToUpper(DevEmail),
		"Test@Langscope.dev",
		"  " + DevEmail + "\t",
		DevEmail + " ",
	} {
		_, err := c.SignInWithPassword(ctx, auth.Credentials{Email: email, Password: DevPassword})
		require.ErrorIs(t, err, auth.ErrInvalidCredentials, "email %q", email)
	}

	s, err := c.GetSession(ctx)
	require.NoError(t, err)
	require.Nil(t, s)
	require.Equal(t, 1, notified, "only the immediate callback")
}

func TestClient_ConcurrentSubscribersEndInFinalState(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	const subscribers = 20

	type seen struct {
		events []auth.Event
	}
	all := make([]*seen, subscribers)

	var wg sync.WaitGroup
	for i := 0; i < subscribers; i++ {
		all[i] = &seen{}
		wg.Add(2)
		go func(s *seen) {
			defer wg.Done()
			c.OnAuthStateChange(func(e auth.Event, _ *auth.Session) {
				s.events = append(s.events, e)
			})
		}(all[i])
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = c.SignInWithPassword(ctx, devCreds)
			} else {
				_ = c.SignOut(ctx)
			}
		}(i)
	}
	wg.Wait()

	final, err := c.GetSession(ctx)
	require.NoError(t, err)

	for _, s := range all {
		require.NotEmpty(t, s.events)
		first := s.events[0]
		require.Contains(t, []auth.Event{auth.EventInitialSession, auth.EventSignedIn}, first)

		last := s.events[len(s.events)-1]
		if final != nil {
			require.Equal(t, auth.EventSignedIn, last)
		} else {
			require.Contains(t, []auth.Event{auth.EventInitialSession, auth.EventSignedOut}, last)
		}
	}
}

func TestClient_OnAuthStateChange_ImmediateCallback(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	var events []auth.Event
	var sessions []*auth.Session
	sub := c.OnAuthStateChange(func(e auth.Event, s *auth.Session) {
		events = append(events, e)
		sessions = append(sessions, s)
	})
	defer sub.Unsubscribe()

	require.Equal(t, []auth.Event{auth.EventInitialSession}, events)
	require.Nil(t, sessions[0])

	_, err := c.SignInWithPassword(ctx, devCreds)
	require.NoError(t, err)

	var late []auth.Event
	var lateSession *auth.Session
	c.OnAuthStateChange(func(e auth.Event, s *auth.Session) {
		late = append(late, e)
		lateSession = s
	})
	require.Equal(t, []auth.Event{auth.EventSignedIn}, late)
	require.NotNil(t, lateSession)
	require.Equal(t, AccessToken, lateSession.AccessToken)

	require.NoError(t, c.SignOut(ctx))
	require.Equal(t, []auth.Event{auth.EventInitialSession, auth.EventSignedIn, auth.EventSignedOut}, events)
	require.NotNil(t, sessions[1])
	require.Nil(t, sessions[2])
}

func TestClient_Unsubscribe(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	count := 0
	sub := c.OnAuthStateChange(func(auth.Event, *auth.Session) { count++ })
	sub.Unsubscribe()

	_, err := c.SignInWithPassword(ctx, devCreds)
	require.NoError(t, err)
	require.NoError(t, c.SignOut(ctx))

	require.Equal(t, 1, count)
}

func TestClient_SignOutWhenSignedOut(t *testing.T) {
	c := newClient(t)

	var events []auth.Event
	c.OnAuthStateChange(func(e auth.Event, _ *auth.Session) { events = append(events, e) })

	require.NoError(t, c.SignOut(context.Background()))
	require.Equal(t, []auth.Event{auth.EventInitialSession, auth.EventSignedOut}, events)
}

func TestClient_ConfiguredCredentials(t *testing.T) {
	c, err := New(Config{Email: "dev@example.com", Password: "another-secret", HashCost: bcrypt.MinCost})
	require.NoError(t, err)

	_, err = c.SignInWithPassword(context.Background(), devCreds)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	resp, err := c.SignInWithPassword(context.Background(), auth.Credentials{Email: "dev@example.com", Password: "another-secret"})
	require.NoError(t, err)
	require.Equal(t, "dev@example.com", resp.User.Email)
}

func TestNew_RejectsShortPassword(t *testing.T) {
	_, err := New(Config{Password: "short", HashCost: bcrypt.MinCost})
	require.Error(t, err)
}

// ===========================================================================
// Property-Based Tests (using pgregory.net/rapid)
// ===========================================================================

type tracked struct {
	sub    *auth.Subscription
	got    []auth.Event
	want   []auth.Event
	active bool
}

func TestProperty_ListenersSeeExactlyTheirTransitions(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		c := newClient(rt)
		signedIn := false

		var subs []*tracked
		steps := rapid.IntRange(1, 25).Draw(rt, "steps")

		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 4).Draw(rt, "op") {
			case 0:
				tr := &tracked{active: true}
				tr.sub = c.OnAuthStateChange(func(e auth.Event, _ *auth.Session) {
					tr.got = append(tr.got, e)
				})
				if signedIn {
					tr.want = append(tr.want, auth.EventSignedIn)
				} else {
					tr.want = append(tr.want, auth.EventInitialSession)
				}
				require.Len(rt, tr.got, 1, "immediate callback fires exactly once")
				subs = append(subs, tr)

			case 1:
				_, err := c.SignInWithPassword(ctx, devCreds)
				require.NoError(rt, err)
				signedIn = true
				expect(subs, auth.EventSignedIn)

			case 2:
				email := rapid.String().Draw(rt, "email")
				password := rapid.String().Draw(rt, "password")
				if email == DevEmail && password == DevPassword {
					continue
				}
				_, err := c.SignInWithPassword(ctx, auth.Credentials{Email: email, Password: password})
				require.ErrorIs(rt, err, auth.ErrInvalidCredentials)

			case 3:
				require.NoError(rt, c.SignOut(ctx))
				signedIn = false
				expect(subs, auth.EventSignedOut)

			case 4:
				if len(subs) == 0 {
					continue
				}
				idx := rapid.IntRange(0, len(subs)-1).Draw(rt, "unsubscribe")
				subs[idx].sub.Unsubscribe()
				subs[idx].active = false
			}

			s, err := c.GetSession(ctx)
			require.NoError(rt, err)
			u, err := c.GetUser(ctx)
			require.NoError(rt, err)
			if signedIn {
				require.NotNil(rt, s)
				require.NotNil(rt, u)
				require.Equal(rt, AccessToken, s.AccessToken)
			} else {
				require.Nil(rt, s)
				require.Nil(rt, u)
			}

			for _, tr := range subs {
				require.Equal(rt, tr.want, tr.got)
			}
		}
	})
}

func expect(subs []*tracked, e auth.Event) {
	for _, tr := range subs {
		if tr.active {
			tr.want = append(tr.want, e)
		}
	}
}
