package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/example/rentify/internal/apperrors"
	"github.com/example/rentify/internal/logger"
	"github.com/example/rentify/internal/models"
	"github.com/example/rentify/internal/repository"
	"github.com/example/rentify/internal/utils"
)

const (
	VerificationPath = "/v1/users/verifyOTP"

	msgUserNotFound     = "User not found."
	msgInvalidLogin     = "Invalid email or password."
	msgSessionExpired   = "Your session is expired, Kindly login again."
	msgAccountActive    = "account is active"
	msgAccountDisabled  = "Your account is deactivated"
	otpIssuer           = "Rentify"
	blacklistCheckLimit = 2 * time.Second
)

// AuthConfig carries the token and hashing settings used by UserService.
type AuthConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	HashCost      int
}

type RegisterInput struct {
	FullName    string
	Email       string
	Password    string
	PhoneNumber string
	Currency    models.Currency
}

type ProfileInput struct {
	FullName    *string
	PhoneNumber *string
	Currency    *models.Currency
}

type LoginResult struct {
	AccessToken   string `json:"access_token"`
	RefreshToken  string `json:"refresh_token"`
	AccountStatus string `json:"account_status"`
}

type Profile struct {
	ID                 uint            `json:"id"`
	Email              string          `json:"email"`
	FullName           string          `json:"full_name"`
	PhoneNumber        string          `json:"phone_number"`
	Image              *string         `json:"image"`
	VerificationStatus bool            `json:"verification_status"`
	AccountDisabled    bool            `json:"account_disabled"`
	PreferredCurrency  models.Currency `json:"preferred_currency"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

type UserService struct {
	users     repository.UserRepository
	blacklist repository.BlacklistRepository
	mailer    Mailer
	uploads   Uploads
	urls      URLBuilder
	cfg       AuthConfig
	log       logger.ILogger
	now       func() time.Time
}

func NewUserService(
	users repository.UserRepository,
	blacklist repository.BlacklistRepository,
	mailer Mailer,
	uploads Uploads,
	urls URLBuilder,
	cfg AuthConfig,
	log logger.ILogger,
) *UserService {
	return &UserService{
		users:     users,
		blacklist: blacklist,
		mailer:    mailer,
		uploads:   uploads,
		urls:      urls,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// Register creates an unverified account and mails its activation code.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (map[string]string, error) {
	hash, err := utils.HashPassword(in.Password, s.cfg.HashCost)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	secret, err := utils.GenerateOTPSecret(otpIssuer, email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	currency := in.Currency
	if currency == "" {
		currency = models.CurrencyUSD
	}

	user := &models.User{
		Email:             email,
		FullName:          strings.TrimSpace(in.FullName),
		PasswordHash:      hash,
		PhoneNumber:       in.PhoneNumber,
		OTPSecret:         secret,
		PreferredCurrency: currency,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("User with this email already exists")
		}
		s.log.Error("register user failed", logger.Error(err))
		return nil, apperrors.Internal(err)
	}

	if err := s.sendActivation(user); err != nil {
		s.log.Warning("activation mail failed", logger.Uint("user_id", user.ID), logger.Error(err))
	}

	return map[string]string{"verification_path": VerificationPath}, nil
}

func (s *UserService) RequestOTP(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return mapRepoErr(err, "User is not registered")
	}
	if user.VerificationStatus {
		return apperrors.Conflict("Account already verified")
	}
	if err := s.sendActivation(user); err != nil {
		s.log.Error("activation mail failed", logger.Uint("user_id", user.ID), logger.Error(err))
		return apperrors.Internal(err)
	}
	return nil
}

func (s *UserService) sendActivation(user *models.User) error {
	code, err := utils.GenerateOTPCode(user.OTPSecret, s.now())
	if err != nil {
		return err
	}
	return s.mailer.SendActivation(user.Email, code)
}

func (s *UserService) VerifyOTP(ctx context.Context, email, code string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return mapRepoErr(err, msgUserNotFound)
	}
	if user.VerificationStatus || !utils.ValidateOTPCode(user.OTPSecret, code, s.now()) {
		return apperrors.Unauthorized("Invalid OTP code")
	}
	if err := s.users.Update(ctx, user.ID, map[string]interface{}{"verification_status": true}); err != nil {
		return mapRepoErr(err, msgUserNotFound)
	}
	return nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Conflict(msgInvalidLogin)
		}
		return nil, apperrors.Internal(err)
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, apperrors.Conflict(msgInvalidLogin)
	}
	if !user.VerificationStatus {
		return nil, apperrors.Conflict("Account is not verified")
	}
	if user.IsBlocked {
		return nil, apperrors.Forbidden("Your account is blocked")
	}

	claims := utils.Claims{UserID: user.ID, Email: user.Email, Role: user.Role(), Name: user.FullName}
	access, err := utils.GenerateToken(s.cfg.AccessSecret, claims, s.cfg.AccessTTL)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	refresh, err := utils.GenerateToken(s.cfg.RefreshSecret, claims, s.cfg.RefreshTTL)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	status := msgAccountActive
	if user.AccountDisabled {
		status = msgAccountDisabled
	}

	s.log.Info("user logged in", logger.Uint("user_id", user.ID))
	return &LoginResult{AccessToken: access, RefreshToken: refresh, AccountStatus: status}, nil
}

// RefreshToken mints a new access token from a valid refresh token.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperrors.BadRequest("Refresh token is missing.")
	}
	claims, err := utils.ParseToken(s.cfg.RefreshSecret, refreshToken)
	if err != nil {
		return "", apperrors.Unauthorized("This token is invalid.")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperrors.Unauthorized("This token is invalid.")
		}
		return "", apperrors.Internal(err)
	}
	if user.IsBlocked {
		return "", apperrors.Forbidden("Your account is blocked")
	}

	fresh := utils.Claims{UserID: user.ID, Email: user.Email, Role: user.Role(), Name: user.FullName}
	access, err := utils.GenerateToken(s.cfg.AccessSecret, fresh, s.cfg.AccessTTL)
	if err != nil {
		return "", apperrors.Internal(err)
	}
	return access, nil
}

// Authenticate checks the blacklist and verifies an access token.
func (s *UserService) Authenticate(ctx context.Context, token string) (*Actor, error) {
	checkCtx, cancel := context.WithTimeout(ctx, blacklistCheckLimit)
	defer cancel()

	revoked, err := s.blacklist.Exists(checkCtx, token)
	if err != nil {
		s.log.Error("blacklist lookup failed", logger.Error(err))
		return nil, apperrors.Internal(err)
	}
	if revoked {
		return nil, apperrors.Unauthorized(msgSessionExpired)
	}

	claims, err := utils.ParseToken(s.cfg.AccessSecret, token)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid or expired token")
	}

	return &Actor{UserID: claims.UserID, Email: claims.Email, Role: claims.Role, Name: claims.Name}, nil
}

func (s *UserService) Profile(ctx context.Context, actor Actor) (*Profile, error) {
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, mapRepoErr(err, msgUserNotFound)
	}
	return s.profile(user), nil
}

func (s *UserService) profile(user *models.User) *Profile {
	p := &Profile{
		ID:                 user.ID,
		Email:              user.Email,
		FullName:           user.FullName,
		PhoneNumber:        user.PhoneNumber,
		VerificationStatus: user.VerificationStatus,
		AccountDisabled:    user.AccountDisabled,
		PreferredCurrency:  user.PreferredCurrency,
		CreatedAt:          user.CreatedAt,
		UpdatedAt:          user.UpdatedAt,
	}
	if user.Image != "" {
		url := s.urls(user.Image)
		p.Image = &url
	}
	return p
}

func (s *UserService) UpdateProfile(ctx context.Context, actor Actor, in ProfileInput) (*Profile, error) {
	fields := map[string]interface{}{}
	if in.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*in.FullName)
	}
	if in.PhoneNumber != nil {
		fields["phone_number"] = *in.PhoneNumber
	}
	if in.Currency != nil {
		fields["preferred_currency"] = *in.Currency
	}

	if len(fields) > 0 {
		if err := s.users.Update(ctx, actor.UserID, fields); err != nil {
			return nil, mapRepoErr(err, msgUserNotFound)
		}
	}
	return s.Profile(ctx, actor)
}

// Logout revokes the presented access token until it would have expired.
func (s *UserService) Logout(ctx context.Context, token string) error {
	expiresAt := s.now().Add(s.cfg.AccessTTL)
	if claims, err := utils.ParseToken(s.cfg.AccessSecret, token); err == nil {
		expiresAt = claims.ExpiresAtOr(expiresAt)
	}

	if err := s.blacklist.Add(ctx, token, expiresAt); err != nil {
		s.log.Error("logout failed", logger.Error(err))
		return apperrors.Internal(err)
	}
	return nil
}

func (s *UserService) SetAccountDisabled(ctx context.Context, actor Actor, disabled bool) error {
	if err := s.users.Update(ctx, actor.UserID, map[string]interface{}{"account_disabled": disabled}); err != nil {
		return mapRepoErr(err, msgUserNotFound)
	}
	return nil
}

func (s *UserService) ChangePassword(ctx context.Context, actor Actor, oldPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return mapRepoErr(err, "Invalid credentials.")
	}
	if !utils.CheckPassword(user.PasswordHash, oldPassword) {
		return apperrors.Conflict("Invalid old password")
	}

	hash, err := utils.HashPassword(newPassword, s.cfg.HashCost)
	if err != nil {
		return apperrors.Internal(err)
	}
	if err := s.users.Update(ctx, user.ID, map[string]interface{}{"password_hash": hash}); err != nil {
		return mapRepoErr(err, msgUserNotFound)
	}
	return nil
}

// UpdateProfileImage stores a new avatar and deletes the previous file.
func (s *UserService) UpdateProfileImage(ctx context.Context, actor Actor, filename string) (string, error) {
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		s.uploads.Remove(filename)
		return "", mapRepoErr(err, msgUserNotFound)
	}

	if err := s.users.Update(ctx, user.ID, map[string]interface{}{"image": filename}); err != nil {
		s.uploads.Remove(filename)
		return "", mapRepoErr(err, msgUserNotFound)
	}

	s.uploads.Remove(user.Image)
	return s.urls(filename), nil
}

// PurgeExpiredTokens drops blacklist rows whose tokens have expired anyway.
func (s *UserService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.blacklist.PurgeExpired(ctx, s.now())
}

// RunBlacklistJanitor purges expired blacklist rows every interval until
// ctx is done.
func (s *UserService) RunBlacklistJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpiredTokens(ctx)
			if err != nil {
				s.log.Error("blacklist purge failed", logger.Error(err))
				continue
			}
			if n > 0 {
				s.log.Info("blacklist purged", logger.Int64("rows", n))
			}
		}
	}
}
