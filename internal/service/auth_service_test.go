package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"expensetracker/internal/entity"
	"expensetracker/internal/notification"
	"expensetracker/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	users    *memoryUsers
	logs     *memorySecurityLogs
	notifier *recordingNotifier
	jwt      *utils.JWTManager
	auth     *AuthService
	register *RegistrationService
}

func newAuthFixture(t *testing.T, requireActive bool, mode RegistrationMode) *authFixture {
	t.Helper()
	now := time.Now().Truncate(time.Second)
	f := &authFixture{
		users:    newMemoryUsers(),
		logs:     &memorySecurityLogs{},
		notifier: &recordingNotifier{},
		jwt:      &utils.JWTManager{Secret: []byte("test-secret"), Now: func() time.Time { return now }},
	}
	hasher := BcryptPasswordHasher{Cost: bcrypt.MinCost}
	f.auth = NewAuthService(
		f.users,
		f.logs,
		hasher,
		JWTSessionIssuer{Manager: f.jwt},
		fixedClock{now: now},
		AuthConfig{RequireActive: requireActive},
		quietLogger(),
	)
	f.register = NewRegistrationService(f.users, f.logs, hasher, UUIDTokenIssuer{}, f.notifier, mode, quietLogger())
	return f
}

func TestScenario_RegisterVerifyLogin(t *testing.T) {
	f := newAuthFixture(t, true, ModeVerifyLink)
	ctx := context.Background()

	result, err := f.register.Register(ctx, RegisterInput{Email: "a@x.com", FullName: "A", Role: "user", Password: "Passw0rd!"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Message)
	assert.False(t, result.Active)

	stored := f.users.byEmail("a@x.com")
	assert.False(t, stored.IsActive)
	require.NotNil(t, stored.VerificationToken)
	assert.NotEqual(t, "Passw0rd!", stored.PasswordHash)

	verified, err := f.auth.VerifyEmail(ctx, *stored.VerificationToken, nil)
	require.NoError(t, err)
	assert.True(t, verified.IsActive)
	assert.Nil(t, verified.VerificationToken)

	stored = f.users.byEmail("a@x.com")
	assert.True(t, stored.IsActive)
	assert.Nil(t, stored.VerificationToken)

	login, err := f.auth.Login(ctx, LoginInput{Email: "a@x.com", Password: "Passw0rd!"})
	require.NoError(t, err)
	assert.Equal(t, TokenTypeBearer, login.TokenType)
	assert.Equal(t, int64(utils.DefaultSessionTTL.Seconds()), login.ExpiresIn)

	claims, err := f.jwt.Decode(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)
	require.NotNil(t, claims.UserID)
	assert.Equal(t, stored.ID, *claims.UserID)
	assert.Equal(t, "user", claims.Role)
	require.NotNil(t, claims.Status)
	assert.True(t, *claims.Status)

	assert.Equal(t, []entity.SecurityAction{entity.Registered, entity.EmailVerified, entity.LoginSuccess}, f.logs.actions())
}

func TestLogin_InactivePolicy(t *testing.T) {
	tests := []struct {
		name          string
		requireActive bool
		wantErr       error
	}{
		{name: "must be active", requireActive: true, wantErr: ErrInvalidCredentials},
		{name: "permissive", requireActive: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t, tt.requireActive, ModeVerifyLink)
			ctx := context.Background()
			_, err := f.register.Register(ctx, RegisterInput{Email: "p@x.com", Password: "Secret123"})
			require.NoError(t, err)

			result, err := f.auth.Login(ctx, LoginInput{Email: "p@x.com", Password: "Secret123"})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			claims, err := f.jwt.Decode(result.AccessToken)
			require.NoError(t, err)
			require.NotNil(t, claims.Status)
			assert.False(t, *claims.Status)
		})
	}
}

func TestLogin_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	f := newAuthFixture(t, true, ModeOpen)
	ctx := context.Background()
	_, err := f.register.Register(ctx, RegisterInput{Email: "a@x.com", Password: "Passw0rd!"})
	require.NoError(t, err)

	_, wrongPassword := f.auth.Login(ctx, LoginInput{Email: "a@x.com", Password: "nope"})
	_, unknownEmail := f.auth.Login(ctx, LoginInput{Email: "ghost@x.com", Password: "Passw0rd!"})
	_, blank := f.auth.Login(ctx, LoginInput{})

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	require.ErrorIs(t, blank, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())

	failed := 0
	for _, action := range f.logs.actions() {
		if action == entity.LoginFailed {
			failed++
		}
	}
	assert.Equal(t, 3, failed)
}

func TestLogin_EmailIsCaseSensitive(t *testing.T) {
	f := newAuthFixture(t, false, ModeOpen)
	ctx := context.Background()
	_, err := f.register.Register(ctx, RegisterInput{Email: "Alice@x.com", Password: "Passw0rd!"})
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, LoginInput{Email: "alice@x.com", Password: "Passw0rd!"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, LoginInput{Email: " Alice@x.com ", Password: "Passw0rd!"})
	require.NoError(t, err)
}

func TestVerifyEmail_SingleUse(t *testing.T) {
	f := newAuthFixture(t, true, ModeVerifyLink)
	ctx := context.Background()
	_, err := f.register.Register(ctx, RegisterInput{Email: "a@x.com", Password: "Passw0rd!"})
	require.NoError(t, err)
	token := *f.users.byEmail("a@x.com").VerificationToken

	_, err = f.auth.VerifyEmail(ctx, token, nil)
	require.NoError(t, err)

	_, err = f.auth.VerifyEmail(ctx, token, nil)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = f.auth.VerifyEmail(ctx, "   ", nil)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = f.auth.VerifyEmail(ctx, "unknown-token", nil)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyEmail_ConcurrentRedemptionHasOneWinner(t *testing.T) {
	f := newAuthFixture(t, true, ModeVerifyLink)
	ctx := context.Background()
	_, err := f.register.Register(ctx, RegisterInput{Email: "a@x.com", Password: "Passw0rd!"})
	require.NoError(t, err)
	token := *f.users.byEmail("a@x.com").VerificationToken

	var wins, invalid int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.auth.VerifyEmail(ctx, token, nil)
			switch err {
			case nil:
				atomic.AddInt32(&wins, 1)
			case ErrInvalidToken:
				atomic.AddInt32(&invalid, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
	assert.Equal(t, int32(15), invalid)
}

func TestGetCurrentUser(t *testing.T) {
	f := newAuthFixture(t, true, ModeOpen)
	ctx := context.Background()
	result, err := f.register.Register(ctx, RegisterInput{Email: "a@x.com", FullName: "Alice", Password: "Passw0rd!"})
	require.NoError(t, err)

	user, err := f.auth.GetCurrentUser(ctx, result.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.FullName)

	_, err = f.auth.GetCurrentUser(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSecurityEvents_NewestFirstPerUser(t *testing.T) {
	f := newAuthFixture(t, true, ModeOpen)
	ctx := context.Background()
	alice, err := f.register.Register(ctx, RegisterInput{Email: "a@x.com", FullName: "Alice", Password: "Passw0rd!"})
	require.NoError(t, err)
	_, err = f.register.Register(ctx, RegisterInput{Email: "b@x.com", FullName: "Bob", Password: "Passw0rd!"})
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, LoginInput{Email: "a@x.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, LoginInput{Email: "a@x.com", Password: "Passw0rd!"})
	require.NoError(t, err)
	_, err = f.auth.Login(ctx, LoginInput{Email: "b@x.com", Password: "Passw0rd!"})
	require.NoError(t, err)

	events, err := f.auth.SecurityEvents(ctx, alice.UserID, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, entity.LoginSuccess, events[0].Action)
	assert.Equal(t, entity.LoginFailed, events[1].Action)
	for _, e := range events {
		require.NotNil(t, e.UserID)
		assert.Equal(t, alice.UserID, *e.UserID)
	}

	none, err := f.auth.SecurityEvents(ctx, 999, 0)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestBcryptPasswordHasher(t *testing.T) {
	h := BcryptPasswordHasher{Cost: bcrypt.MinCost}
	for _, p := range []string{"Passw0rd!", "", "ünïcødé-пароль"} {
		hash, err := h.Hash(p)
		require.NoError(t, err)
		assert.NotEqual(t, p, hash)
		assert.True(t, h.Verify(hash, p))
		assert.False(t, h.Verify(hash, p+"x"))
	}
	assert.False(t, h.Verify("not-a-bcrypt-hash", "Passw0rd!"))
	assert.False(t, h.Verify("", ""))
}

func TestBcryptPasswordHasher_ByteLimit(t *testing.T) {
	h := BcryptPasswordHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash(strings.Repeat("é", 36))
	require.NoError(t, err)
	assert.True(t, h.Verify(hash, strings.Repeat("é", 36)))

	_, err = h.Hash(strings.Repeat("é", 37))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestUUIDTokenIssuer_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		token, err := UUIDTokenIssuer{}.Issue()
		require.NoError(t, err)
		seen[token] = struct{}{}
	}
	assert.Len(t, seen, 1000)
}

func TestJWTSessionIssuer_NoManager(t *testing.T) {
	_, _, err := JWTSessionIssuer{}.IssueSession(entity.User{ID: 1})
	require.ErrorIs(t, err, ErrInvalidToken)
}

var _ Notifier = (*notification.Dispatcher)(nil)

type recordingHasher struct {
	BcryptPasswordHasher
	mu       sync.Mutex
	verified []string
}

func (h *recordingHasher) Verify(hash string, password string) bool {
	h.mu.Lock()
	h.verified = append(h.verified, hash)
	h.mu.Unlock()
	return h.BcryptPasswordHasher.Verify(hash, password)
}

func TestLogin_UnknownEmailUsesConfiguredCost(t *testing.T) {
	const cost = bcrypt.MinCost + 1
	hasher := &recordingHasher{BcryptPasswordHasher: BcryptPasswordHasher{Cost: cost}}
	svc := NewAuthService(newMemoryUsers(), &memorySecurityLogs{}, hasher, nil, nil, AuthConfig{}, quietLogger())

	_, err := svc.Login(context.Background(), LoginInput{Email: "ghost@x.com", Password: "Passw0rd!"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), LoginInput{})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.Len(t, hasher.verified, 2)
	for _, hash := range hasher.verified {
		got, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, cost, got)
	}
}
