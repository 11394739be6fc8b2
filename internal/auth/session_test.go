package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/yhlin/memberdir/internal/models"
)

const testSecret = "test-secret-32-characters-long!!"

func testUser() models.SessionUser {
	return models.SessionUser{
		Account:     "alice",
		DisplayName: "Alice Wang",
		Role:        models.RoleUser,
	}
}

// signWithIssuedAt forges a correctly-signed token with an arbitrary
// issuance time, to exercise the validity window directly.
func signWithIssuedAt(t *testing.T, user models.SessionUser, issuedAt time.Time) string {
	t.Helper()

	claims := &models.SessionClaims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	assert.NoError(t, err)
	return token
}

func TestSessionManager_IssueAndValidate(t *testing.T) {
	sm := NewSessionManager(testSecret, 24*time.Hour)

	token, err := sm.Issue(testUser())
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	user, err := sm.Validate(token)
	assert.NoError(t, err)
	assert.Equal(t, "alice", user.Account)
	assert.Equal(t, "Alice Wang", user.DisplayName)
	assert.Equal(t, models.RoleUser, user.Role)
}

func TestSessionManager_Validate_JustInsideWindow(t *testing.T) {
	sm := NewSessionManager(testSecret, 24*time.Hour)

	// 23h59m old: still valid
	token := signWithIssuedAt(t, testUser(), time.Now().Add(-(23*time.Hour + 59*time.Minute)))

	user, err := sm.Validate(token)
	assert.NoError(t, err)
	assert.Equal(t, "alice", user.Account)
}

func TestSessionManager_Validate_JustPastWindow(t *testing.T) {
	sm := NewSessionManager(testSecret, 24*time.Hour)

	// 24h and a moment old: expired
	token := signWithIssuedAt(t, testUser(), time.Now().Add(-(24*time.Hour + time.Millisecond)))

	user, err := sm.Validate(token)
	assert.Error(t, err)
	assert.Nil(t, user)
	assert.Equal(t, models.ErrUnauthorized, err)
}

func TestSessionManager_Validate_Tampered(t *testing.T) {
	sm := NewSessionManager(testSecret, 24*time.Hour)

	token, err := sm.Issue(testUser())
	assert.NoError(t, err)

	user, err := sm.Validate(token + "x")
	assert.Error(t, err)
	assert.Nil(t, user)
}

func TestSessionManager_Validate_WrongSecret(t *testing.T) {
	other := NewSessionManager("another-secret-32-characters-ok!", 24*time.Hour)
	token, err := other.Issue(testUser())
	assert.NoError(t, err)

	sm := NewSessionManager(testSecret, 24*time.Hour)
	user, err := sm.Validate(token)
	assert.Error(t, err)
	assert.Nil(t, user)
}

func TestSessionManager_Validate_Malformed(t *testing.T) {
	sm := NewSessionManager(testSecret, 24*time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		user, err := sm.Validate(token)
		assert.Error(t, err)
		assert.Nil(t, user)
	}
}

func TestSessionManager_Validate_MissingIssuedAt(t *testing.T) {
	sm := NewSessionManager(testSecret, 24*time.Hour)

	claims := &models.SessionClaims{
		User: testUser(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	assert.NoError(t, err)

	user, err := sm.Validate(token)
	assert.Error(t, err)
	assert.Nil(t, user)
}
