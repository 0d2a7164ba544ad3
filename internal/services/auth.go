package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"employee-management/internal/dto"
	"employee-management/internal/events"
	"employee-management/internal/repositories"
	"employee-management/pkg/config"
	apperrors "employee-management/pkg/errors"
	"employee-management/pkg/mailer"
	"employee-management/pkg/service"
	"employee-management/pkg/utils"

	"go.uber.org/zap"
)

const defaultPasswordResetTTL = 10 * time.Minute

const (
	otpMin          = 1000
	otpMax          = 9999
	otpMailSubject  = "Password Change Verification"
	otpMailTemplate = `<p>Hello,</p><p>Your verification code for changing your password is <strong>%d</strong>.</p><p>If you did not request a password change, please ignore this email.</p>`
)

// AuthServiceInterface covers sign in, sign out and the OTP based password
// reset flow.
type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.LoginResponseDTO, error)
	Logout(ctx context.Context, empID string) error
	SendOTP(ctx context.Context, payload dto.SendOTPDTO) error
	VerifyOTP(ctx context.Context, payload dto.VerifyOTPDTO) ([]dto.VerifiedEmailDTO, error)
	UpdatePassword(ctx context.Context, payload dto.UpdatePasswordDTO) error
	IsSessionActive(ctx context.Context, empID, token string) (bool, error)
}

type AuthService struct {
	userRepo   repositories.UserRepositoryInterface
	cacheRepo  repositories.CacheRepositoryInterface
	jwtService service.JWTService
	mailer     mailer.Mailer
	events     EventPublisher
	logger     *zap.Logger
	cfg        *config.AuthConfig
	newOTP     func() (int, error)
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtService service.JWTService,
	mailer mailer.Mailer,
	events EventPublisher,
	logger *zap.Logger,
	cfg *config.AuthConfig,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		cacheRepo:  cacheRepo,
		jwtService: jwtService,
		mailer:     mailer,
		events:     events,
		logger:     logger,
		cfg:        cfg,
		newOTP:     generateOTP,
	}
}

// Login checks the credentials, issues a JWT and stores it as the only active
// session. Failed attempts are counted per employee and lock the account for
// LockoutDuration once MaxLoginAttempts is reached.
func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.LoginResponseDTO, error) {
	logger := s.logger.With(zap.String("username", payload.Username))

	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(payload.Username))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("User not found")
		}
		return nil, err
	}

	if err := s.checkLockout(ctx, user.EmpID); err != nil {
		logger.Warn("Login attempt on a locked account")
		return nil, err
	}

	if err := utils.ComparePasswords(user.Password, payload.Password); err != nil {
		s.handleFailedLoginAttempt(ctx, user.EmpID)
		logger.Warn("Invalid password")
		return nil, apperrors.NewUnauthorizedError("Authentication failed")
	}
	s.resetLoginAttempts(ctx, user.EmpID)

	token, err := s.jwtService.GenerateToken(user.EmpID, user.FirstName, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	if err := s.userRepo.UpdateToken(ctx, user.EmpID, token); err != nil {
		return nil, err
	}

	logger.Info("User logged in", zap.String("emp_id", user.EmpID))
	return &dto.LoginResponseDTO{
		UserID:         user.EmpID,
		Token:          token,
		ProfilePicture: user.ProfilePicture.Ptr(),
		UserName:       user.Username,
		Role:           user.Role,
	}, nil
}

// Logout clears the persisted session token. Unknown ids are not an error.
func (s *AuthService) Logout(ctx context.Context, empID string) error {
	return s.userRepo.UpdateToken(ctx, empID, "")
}

// IsSessionActive reports whether token is the session stored for empID.
func (s *AuthService) IsSessionActive(ctx context.Context, empID, token string) (bool, error) {
	stored, err := s.userRepo.GetToken(ctx, empID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if stored == "" {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(token)) == 1, nil
}

// SendOTP stores a fresh four digit code for the email and mails it. Requests
// closer together than OTPResendInterval are rejected.
func (s *AuthService) SendOTP(ctx context.Context, payload dto.SendOTPDTO) error {
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	logger := s.logger.With(zap.String("email", email))

	if s.cfg.OTPResendInterval > 0 {
		throttleKey := fmt.Sprintf("otp_resend:%s", email)
		ok, err := s.cacheRepo.SetNX(ctx, throttleKey, "1", s.cfg.OTPResendInterval)
		if err != nil {
			logger.Error("OTP throttle unavailable", zap.Error(err))
		} else if !ok {
			return apperrors.NewTooManyRequestsError(
				fmt.Sprintf("Please wait %s before requesting another OTP.", s.cfg.OTPResendInterval))
		}
	}

	otp, err := s.newOTP()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	found, err := s.userRepo.SetOTPByEmail(ctx, email, otp)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.NewNotFoundError("Sorry, User not found. Please take a moment to register for an account.")
	}

	if _, err := s.mailer.Send(ctx, email, fmt.Sprintf(otpMailTemplate, otp), otpMailSubject); err != nil {
		return apperrors.NewInternalError("Failed to send OTP email", err)
	}
	_ = s.cacheRepo.Del(ctx, otpAttemptsKey(email))

	logger.Info("OTP issued")
	return nil
}

// VerifyOTP redeems the stored code. Success clears the attempt counter and
// leaves a password reset grant valid for PasswordResetTTL.
func (s *AuthService) VerifyOTP(ctx context.Context, payload dto.VerifyOTPDTO) ([]dto.VerifiedEmailDTO, error) {
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	logger := s.logger.With(zap.String("email", email))

	otp, err := strconv.Atoi(strings.TrimSpace(payload.OTP))
	if err != nil {
		return nil, apperrors.NewValidationError("Validation failed",
			[]utils.FieldError{utils.NewFieldError("otp", "numeric", "")})
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("User not found")
		}
		return nil, err
	}

	attemptsKey := otpAttemptsKey(email)
	if attemptsStr, err := s.cacheRepo.Get(ctx, attemptsKey); err == nil {
		if attempts, _ := strconv.Atoi(attemptsStr); s.cfg.MaxOTPAttempts > 0 && attempts >= s.cfg.MaxOTPAttempts {
			logger.Warn("Too many OTP attempts")
			return nil, apperrors.NewTooManyRequestsError("Too many attempts. Please request a new OTP later.")
		}
	}

	ok, err := s.userRepo.ConsumeOTP(ctx, email, otp)
	if err != nil {
		return nil, err
	}
	if !ok {
		if attempts, err := s.cacheRepo.Incr(ctx, attemptsKey); err == nil && attempts == 1 {
			_, _ = s.cacheRepo.Expire(ctx, attemptsKey, s.cfg.LockoutDuration)
		}
		logger.Warn("Invalid OTP")
		return nil, apperrors.NewConflictError("Invalid OTP", nil)
	}

	_ = s.cacheRepo.Del(ctx, attemptsKey)
	if err := s.cacheRepo.Set(ctx, passwordResetKey(email), "1", s.passwordResetTTL()); err != nil {
		return nil, apperrors.NewInternalError("Failed to record OTP verification", err)
	}
	logger.Info("OTP verified")
	return []dto.VerifiedEmailDTO{{Email: email}}, nil
}

// UpdatePassword sets a new password for email. It requires the reset grant
// left by a successful VerifyOTP and redeems it, so each verification allows
// exactly one change. A confirmation mismatch is rejected before the grant
// is touched.
func (s *AuthService) UpdatePassword(ctx context.Context, payload dto.UpdatePasswordDTO) error {
	email := strings.ToLower(strings.TrimSpace(payload.Email))

	if _, err := s.userRepo.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError("User not found")
		}
		return err
	}

	if payload.Password != payload.ConfirmPassword {
		return apperrors.NewValidationError("Password and confirm password must be same, please try again.", nil)
	}

	if _, err := s.cacheRepo.GetDel(ctx, passwordResetKey(email)); err != nil {
		if errors.Is(err, repositories.ErrCacheMiss) {
			s.logger.Warn("Password change without verified OTP", zap.String("email", email))
			return apperrors.NewUnauthorizedError("Please verify the OTP sent to your email before changing the password.")
		}
		return apperrors.NewInternalError("Failed to check OTP verification", err)
	}

	hash, err := utils.HashPassword(payload.Password, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePasswordByEmail(ctx, email, hash); err != nil {
		return err
	}

	s.logger.Info("Password updated", zap.String("email", email))
	if s.events != nil {
		s.events.Publish(ctx, events.PasswordChanged{Email: email})
	}
	return nil
}

func (s *AuthService) checkLockout(ctx context.Context, empID string) error {
	lockoutKey := fmt.Sprintf("lockout:%s", empID)
	if _, err := s.cacheRepo.Get(ctx, lockoutKey); err == nil {
		return apperrors.NewUnauthorizedError(
			fmt.Sprintf("Account is locked after too many failed attempts. Try again in %s.", s.cfg.LockoutDuration))
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, empID string) {
	if s.cfg.MaxLoginAttempts <= 0 {
		return
	}
	attemptsKey := fmt.Sprintf("login_attempts:%s", empID)
	attempts, err := s.cacheRepo.Incr(ctx, attemptsKey)
	if err != nil {
		s.logger.Error("Failed to count login attempt", zap.String("emp_id", empID), zap.Error(err))
		return
	}
	if attempts == 1 {
		_, _ = s.cacheRepo.Expire(ctx, attemptsKey, s.cfg.LockoutDuration)
	}
	if attempts >= int64(s.cfg.MaxLoginAttempts) {
		lockoutKey := fmt.Sprintf("lockout:%s", empID)
		_ = s.cacheRepo.Set(ctx, lockoutKey, "locked", s.cfg.LockoutDuration)
		_ = s.cacheRepo.Del(ctx, attemptsKey)
	}
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, empID string) {
	attemptsKey := fmt.Sprintf("login_attempts:%s", empID)
	lockoutKey := fmt.Sprintf("lockout:%s", empID)
	_ = s.cacheRepo.Del(ctx, attemptsKey, lockoutKey)
}

func otpAttemptsKey(email string) string {
	return fmt.Sprintf("otp_attempts:%s", email)
}

func passwordResetKey(email string) string {
	return fmt.Sprintf("pwd_reset:%s", email)
}

func (s *AuthService) passwordResetTTL() time.Duration {
	if s.cfg.PasswordResetTTL <= 0 {
		return defaultPasswordResetTTL
	}
	return s.cfg.PasswordResetTTL
}

// generateOTP returns a uniformly random code in [otpMin, otpMax].
func generateOTP() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return 0, err
	}
	return otpMin + int(n.Int64()), nil
}
