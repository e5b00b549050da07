package service

import (
	"context"
	"errors"
	"strings"

	"expensetracker/internal/entity"
	"expensetracker/internal/notification"
	"expensetracker/internal/repository"
	"expensetracker/internal/utils"

	"github.com/sirupsen/logrus"
)

const (
	msgRegisteredVerify    = "Registration successful. Check your email to verify your account."
	msgRegisteredPassword  = "Registration successful. Your password has been sent to your email."
	msgRegisteredOpen      = "Registration successful."
	msgProvisionedPassword = "User created. The password has been sent to their email."
)

type RegistrationService struct {
	users        repository.UserRepository
	securityLogs repository.SecurityLogRepository

	passwordHash PasswordHasher
	tokens       TokenIssuer
	notifier     Notifier
	mode         RegistrationMode
	logger       logrus.FieldLogger

	generatePassword func(length int) (string, error)
}

func NewRegistrationService(
	users repository.UserRepository,
	securityLogs repository.SecurityLogRepository,
	passwordHash PasswordHasher,
	tokens TokenIssuer,
	notifier Notifier,
	mode RegistrationMode,
	logger logrus.FieldLogger,
) *RegistrationService {
	if mode == "" {
		mode = ModeVerifyLink
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RegistrationService{
		users:            users,
		securityLogs:     securityLogs,
		passwordHash:     passwordHash,
		tokens:           tokens,
		notifier:         notifier,
		mode:             mode,
		logger:           logger,
		generatePassword: utils.GeneratePassword,
	}
}

// Register creates a self-service account. The configured mode picks the
// credential strategy; a request without a password always gets a generated
// one. Public registration cannot claim the admin role.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = entity.UserRoleUser
	}
	if role == entity.UserRoleAdmin {
		return nil, ErrInvalidInput
	}
	input.Role = role

	mode := s.mode
	if input.Password == "" {
		mode = ModeGeneratedPassword
	}
	return s.register(ctx, input, mode, entity.Registered)
}

// Provision creates a pre-activated account on behalf of an administrator and
// emails it a generated password. Any role may be assigned.
func (s *RegistrationService) Provision(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	input.Role = strings.TrimSpace(input.Role)
	if input.Role == "" {
		input.Role = entity.UserRoleUser
	}
	input.Password = ""
	result, err := s.register(ctx, input, ModeGeneratedPassword, entity.UserProvisioned)
	if err != nil {
		return nil, err
	}
	result.Message = msgProvisionedPassword
	return result, nil
}

func (s *RegistrationService) register(
	ctx context.Context,
	input RegisterInput,
	mode RegistrationMode,
	action entity.SecurityAction,
) (*RegisterResult, error) {
	email := utils.NormalizeEmail(input.Email)
	if email == "" {
		return nil, ErrInvalidInput
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	user := &entity.User{
		Email:    email,
		FullName: strings.TrimSpace(input.FullName),
		Role:     input.Role,
	}
	var (
		msg     *notification.Message
		message string
	)

	switch mode {
	case ModeGeneratedPassword:
		password, err := s.generatePassword(utils.DefaultPasswordLength)
		if err != nil {
			return nil, err
		}
		if user.PasswordHash, err = s.passwordHash.Hash(password); err != nil {
			return nil, err
		}
		user.IsActive = true
		m := notification.UserPasswordMessage(email, user.FullName, password)
		msg = &m
		message = msgRegisteredPassword
	case ModeOpen:
		if user.PasswordHash, err = s.passwordHash.Hash(input.Password); err != nil {
			return nil, err
		}
		user.IsActive = true
		message = msgRegisteredOpen
	default:
		if user.PasswordHash, err = s.passwordHash.Hash(input.Password); err != nil {
			return nil, err
		}
		token, err := s.tokens.Issue()
		if err != nil {
			return nil, err
		}
		user.VerificationToken = &token
		m := notification.VerificationMessage(email, token)
		msg = &m
		message = msgRegisteredVerify
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	writeSecurityLog(ctx, s.securityLogs, s.logger, &user.ID, input.IPAddress, action, map[string]any{"mode": string(mode)})
	if msg != nil {
		s.notify(ctx, *msg)
	}

	return &RegisterResult{
		UserID:  user.ID,
		Active:  user.IsActive,
		Message: message,
	}, nil
}

// notify hands msg to the notifier without waiting for delivery. The user row
// is kept whatever happens here.
func (s *RegistrationService) notify(ctx context.Context, msg notification.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"type":  msg.Type,
			"email": msg.Email,
		}).Error("notification not scheduled")
	}
}
