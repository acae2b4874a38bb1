package mock

// Development credentials accepted by the mock when none are configured.
// They are intentionally obvious and must never reach a shared or
// production deployment; override them with AUTH_MOCK_EMAIL and
// AUTH_MOCK_PASSWORD.
const (
	DevEmail    = "test@langscope.dev"
	DevPassword = "TestPassword123!"
)

const (
	// AccessToken is the bearer token of the canonical mock session.
	AccessToken = "mock-access-token"

	UserID   = "00000000-0000-4000-8000-000000000001"
	UserRole = "authenticated"
)
