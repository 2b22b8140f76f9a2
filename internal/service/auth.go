package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"heriken-shop/internal/client"
	"heriken-shop/internal/model"
	"heriken-shop/internal/repository"
	"math/big"
	"net/mail"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	otpTTL           = 5 * time.Minute
	otpRateLimit     = 3
	otpRateWindow    = 5 * time.Minute
	otpRateKeyPrefix = "otp_rate_limit:"
	// the code is burnt on the last allowed miss
	otpMaxAttempts       = 5
	otpAttemptsKeyPrefix = "otp_attempts:"
	minPasswordLen   = 6
)

type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

type AuthService interface {
	SendOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, sessionID, phone, code, name string) (*model.User, error)
	Register(ctx context.Context, sessionID string, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, sessionID, email, password string) (*model.User, error)
	Logout(ctx context.Context, sessionID string) error
	Profile(ctx context.Context, userID uint) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uint, name, phone string) (*model.User, error)
}

type authServiceImpl struct {
	userRepo repository.UserRepository
	sessions repository.SessionStore
	otpStore repository.OTPStore
	limiter  repository.RateLimiter
	notifier NotificationService
	now      func() time.Time
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessions repository.SessionStore,
	otpStore repository.OTPStore,
	limiter repository.RateLimiter,
	notifier NotificationService,
) AuthService {
	return &authServiceImpl{
		userRepo: userRepo,
		sessions: sessions,
		otpStore: otpStore,
		limiter:  limiter,
		notifier: notifier,
		now:      time.Now,
	}
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", 100000+n.Int64()), nil
}

func normalizePhone(phone string) (string, error) {
	if !client.IsValidBangladeshPhone(phone) {
		return "", model.NewValidationError("phone", "Invalid Bangladesh phone number")
	}
	return client.FormatPhoneNumber(phone), nil
}

func (s *authServiceImpl) SendOTP(ctx context.Context, phone string) error {
	phone, err := normalizePhone(phone)
	if err != nil {
		return err
	}

	allowed, err := s.limiter.Allow(ctx, otpRateKeyPrefix+phone, otpRateLimit, otpRateWindow)
	if err != nil {
		return err
	}
	if !allowed {
		return model.ErrTooManyOTPRequests
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	if err := s.otpStore.Save(ctx, phone, code, otpTTL); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	if err := s.limiter.Reset(ctx, otpAttemptsKeyPrefix+phone); err != nil {
		return err
	}

	return s.notifier.SendOTP(ctx, phone, code)
}

func (s *authServiceImpl) VerifyOTP(ctx context.Context, sessionID, phone, code, name string) (*model.User, error) {
	phone, err := normalizePhone(phone)
	if err != nil {
		return nil, err
	}

	stored, ok, err := s.otpStore.Get(ctx, phone)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.NewValidationError("otp", "OTP expired or not found")
	}
	if stored != strings.TrimSpace(code) {
		return nil, s.failedOTPAttempt(ctx, phone)
	}
	if err := s.otpStore.Delete(ctx, phone); err != nil {
		log.WithError(err).Warn("Failed to delete used OTP")
	}
	if err := s.limiter.Reset(ctx, otpAttemptsKeyPrefix+phone); err != nil {
		log.WithError(err).Warn("Failed to reset OTP attempts")
	}

	user, err := s.userRepo.FindByPhone(ctx, phone)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if name = strings.TrimSpace(name); name == "" {
			name = "User"
		}
		user = &model.User{Name: name, Phone: &phone, Role: model.RoleUser, IsActive: true}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("get user by phone: %w", err)
	}
	if !user.IsActive {
		return nil, model.ErrAccessDenied
	}

	now := s.now()
	if err := s.userRepo.MarkPhoneVerified(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("mark phone verified: %w", err)
	}
	user.PhoneVerifiedAt = &now

	if err := s.bind(ctx, sessionID, user); err != nil {
		return nil, err
	}
	return user, nil
}

// failedOTPAttempt counts a wrong code. Once the attempts run out the code
// is deleted and a new one has to be requested.
func (s *authServiceImpl) failedOTPAttempt(ctx context.Context, phone string) error {
	key := otpAttemptsKeyPrefix + phone
	allowed, err := s.limiter.Allow(ctx, key, otpMaxAttempts-1, otpTTL)
	if err != nil {
		return err
	}
	if allowed {
		return model.NewValidationError("otp", "Invalid OTP")
	}

	if err := s.otpStore.Delete(ctx, phone); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	if err := s.limiter.Reset(ctx, key); err != nil {
		log.WithError(err).Warn("Failed to reset OTP attempts")
	}
	log.WithField("phone", phone).Warn("OTP burnt after too many incorrect attempts")
	return model.ErrTooManyOTPAttempts
}

func (s *authServiceImpl) bind(ctx context.Context, sessionID string, user *model.User) error {
	_, err := s.sessions.Update(ctx, sessionID, func(session *model.Session) error {
		session.Login(user)
		return nil
	})
	return err
}

func (s *authServiceImpl) Register(ctx context.Context, sessionID string, in RegisterInput) (*model.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if name == "" {
		return nil, model.NewValidationError("name", "Name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, model.NewValidationError("email", "Invalid email address")
	}
	if len(in.Password) < minPasswordLen {
		return nil, model.NewValidationError("password", "Password must be at least %d characters", minPasswordLen)
	}
	if in.Password != in.ConfirmPassword {
		return nil, model.NewValidationError("confirmPassword", "Passwords do not match")
	}

	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, model.ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        &email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, model.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.bind(ctx, sessionID, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, sessionID, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, model.NewValidationError("email", "Email and password are required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if !user.IsActive || user.PasswordHash == "" {
		return nil, model.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if err := s.bind(ctx, sessionID, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authServiceImpl) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

func (s *authServiceImpl) Profile(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *authServiceImpl) UpdateProfile(ctx context.Context, userID uint, name, phone string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewValidationError("name", "Name is required")
	}

	fields := map[string]interface{}{"name": name}
	if strings.TrimSpace(phone) != "" {
		normalized, err := normalizePhone(phone)
		if err != nil {
			return nil, err
		}
		fields["phone"] = normalized
	}

	updated, err := s.userRepo.Update(ctx, userID, fields)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if !updated {
		return nil, model.ErrUserNotFound
	}
	return s.Profile(ctx, userID)
}
