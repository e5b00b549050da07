package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"expensetracker/internal/entity"
	"expensetracker/internal/repository"
	"expensetracker/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// fallbackDummyHash is used when the hasher cannot produce one at startup.
const fallbackDummyHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"

const TokenTypeBearer = "bearer"

type AuthService struct {
	users        repository.UserRepository
	securityLogs repository.SecurityLogRepository

	passwordHash PasswordHasher
	sessions     SessionIssuer
	clock        Clock
	config       AuthConfig
	logger       logrus.FieldLogger

	// dummyHash is compared against when no user matches so that unknown
	// emails cost the same as wrong passwords.
	dummyHash string
}

func NewAuthService(
	users repository.UserRepository,
	securityLogs repository.SecurityLogRepository,
	passwordHash PasswordHasher,
	sessions SessionIssuer,
	clock Clock,
	config AuthConfig,
	logger logrus.FieldLogger,
) *AuthService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	dummyHash, err := passwordHash.Hash(uuid.NewString())
	if err != nil {
		logger.WithError(err).Warn("dummy password hash")
		dummyHash = fallbackDummyHash
	}
	return &AuthService{
		users:        users,
		securityLogs: securityLogs,
		passwordHash: passwordHash,
		sessions:     sessions,
		clock:        clock,
		config:       config,
		logger:       logger,
		dummyHash:    dummyHash,
	}
}

// Authenticate returns the user owning email when password matches. Unknown
// email, wrong password and, under RequireActive, an inactive account all
// fail with ErrInvalidCredentials. When the email matched, the user is
// returned alongside the error for auditing.
func (s *AuthService) Authenticate(ctx context.Context, email string, password string) (*entity.User, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		_ = s.passwordHash.Verify(s.dummyHash, password)
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		_ = s.passwordHash.Verify(s.dummyHash, password)
		return nil, ErrInvalidCredentials
	}
	if !s.passwordHash.Verify(user.PasswordHash, password) {
		return user, ErrInvalidCredentials
	}
	if s.config.RequireActive && !user.IsActive {
		return user, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) IssueSession(user *entity.User) (*LoginResult, error) {
	token, expiresAt, err := s.sessions.IssueSession(*user)
	if err != nil {
		return nil, err
	}
	expiresIn := int64(expiresAt.Sub(s.now()).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}
	return &LoginResult{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   expiresIn,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			var userID *int64
			if user != nil {
				userID = &user.ID
			}
			s.logSecurity(ctx, userID, input.IPAddress, entity.LoginFailed, map[string]any{"email": utils.NormalizeEmail(input.Email)})
		}
		return nil, err
	}

	result, err := s.IssueSession(user)
	if err != nil {
		return nil, err
	}
	s.logSecurity(ctx, &user.ID, input.IPAddress, entity.LoginSuccess, nil)
	return result, nil
}

// VerifyEmail redeems a verification token. Unknown, blank and already used
// tokens fail with ErrInvalidToken.
func (s *AuthService) VerifyEmail(ctx context.Context, token string, ipAddress *string) (*entity.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.users.ConsumeVerificationToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	s.logSecurity(ctx, &user.ID, ipAddress, entity.EmailVerified, nil)
	return user, nil
}

func (s *AuthService) GetCurrentUser(ctx context.Context, userID int64) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context, limit, offset int) ([]entity.User, error) {
	return s.users.List(ctx, limit, offset)
}

// SecurityEvents returns the newest audit events recorded for userID.
func (s *AuthService) SecurityEvents(ctx context.Context, userID int64, limit int) ([]entity.SecurityLog, error) {
	if s.securityLogs == nil {
		return []entity.SecurityLog{}, nil
	}
	logs, err := s.securityLogs.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []entity.SecurityLog{}
	}
	return logs, nil
}

func (s *AuthService) logSecurity(
	ctx context.Context,
	userID *int64,
	ipAddress *string,
	action entity.SecurityAction,
	metadata map[string]any,
) {
	writeSecurityLog(ctx, s.securityLogs, s.logger, userID, ipAddress, action, metadata)
}

func (s *AuthService) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock.Now()
}

// writeSecurityLog persists an audit row. Failures are logged and never
// reach the caller.
func writeSecurityLog(
	ctx context.Context,
	logs repository.SecurityLogRepository,
	logger logrus.FieldLogger,
	userID *int64,
	ipAddress *string,
	action entity.SecurityAction,
	metadata map[string]any,
) {
	if logs == nil {
		return
	}
	var payload datatypes.JSON
	if metadata != nil {
		bytes, err := json.Marshal(metadata)
		if err != nil {
			logger.WithError(err).WithField("action", action).Warn("security log metadata")
			return
		}
		payload = datatypes.JSON(bytes)
	}
	log := &entity.SecurityLog{
		UserID:    userID,
		IPAddress: ipAddress,
		Action:    action,
		Metadata:  payload,
	}
	if err := logs.Log(ctx, log); err != nil {
		logger.WithError(err).WithField("action", action).Warn("security log write failed")
	}
}
