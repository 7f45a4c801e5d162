package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/rentify/internal/middleware"
	"github.com/example/rentify/internal/models"
	"github.com/example/rentify/internal/services"
)

const refreshCookie = "refreshToken"

// UserHandler serves registration, login, and profile endpoints.
type UserHandler struct {
	users        *services.UserService
	uploads      services.Uploads
	refreshTTL   time.Duration
	secureCookie bool
}

func NewUserHandler(users *services.UserService, uploads services.Uploads, refreshTTL time.Duration, secureCookie bool) *UserHandler {
	return &UserHandler{users: users, uploads: uploads, refreshTTL: refreshTTL, secureCookie: secureCookie}
}

type registerRequest struct {
	FullName          string `json:"full_name" validate:"required,max=200,alphaspace"`
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required,strongpassword"`
	ConfirmPassword   string `json:"confirm_password" validate:"required,eqfield=Password"`
	PreferredCurrency string `json:"preferred_currency" validate:"omitempty,oneof=USD EGP"`
	PhoneNumber       string `json:"phone_number" validate:"omitempty,numeric,max=15"`
}

func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.users.Register(c.UserContext(), services.RegisterInput{
		FullName:    strings.TrimSpace(req.FullName),
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Currency:    models.Currency(req.PreferredCurrency),
	})
	if err != nil {
		return err
	}
	return middleware.Created(c, "User registered successfully. Please check your email to activate your account.", result)
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *UserHandler) RequestOTP(c *fiber.Ctx) error {
	var req emailRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.users.RequestOTP(c.UserContext(), req.Email); err != nil {
		return err
	}
	return middleware.OK(c, "Please check your email to activate your account.", nil)
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

func (h *UserHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.users.VerifyOTP(c.UserContext(), req.Email, strings.TrimSpace(req.OTP)); err != nil {
		return err
	}
	return middleware.OK(c, "User Activated successfully.", nil)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login returns the token pair and sets the refresh token as an HTTP-only cookie.
func (h *UserHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    result.RefreshToken,
		HTTPOnly: true,
		Secure:   h.secureCookie,
		MaxAge:   int(h.refreshTTL.Seconds()),
	})
	return middleware.OK(c, "User logged in successfully.", result)
}

func (h *UserHandler) RefreshToken(c *fiber.Ctx) error {
	access, err := h.users.RefreshToken(c.UserContext(), c.Cookies(refreshCookie))
	if err != nil {
		return err
	}
	return middleware.OK(c, "Token refreshed successfully.", fiber.Map{"access_token": access})
}

func (h *UserHandler) Profile(c *fiber.Ctx) error {
	actor, _ := middleware.CurrentActor(c)
	profile, err := h.users.Profile(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return middleware.OK(c, "User profile retrieved successfully.", profile)
}

type updateProfileRequest struct {
	FullName          *string `json:"full_name" validate:"omitempty,max=200,alphaspace"`
	PhoneNumber       *string `json:"phone_number" validate:"omitempty,numeric,max=15"`
	PreferredCurrency *string `json:"preferred_currency" validate:"omitempty,oneof=USD EGP"`
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	in := services.ProfileInput{FullName: req.FullName, PhoneNumber: req.PhoneNumber}
	if req.PreferredCurrency != nil {
		currency := models.Currency(*req.PreferredCurrency)
		in.Currency = &currency
	}

	actor, _ := middleware.CurrentActor(c)
	profile, err := h.users.UpdateProfile(c.UserContext(), actor, in)
	if err != nil {
		return err
	}
	return middleware.OK(c, "User profile updated successfully.", profile)
}

func (h *UserHandler) Logout(c *fiber.Ctx) error {
	if err := h.users.Logout(c.UserContext(), middleware.CurrentToken(c)); err != nil {
		return err
	}
	c.ClearCookie(refreshCookie)
	return middleware.OK(c, "User logged out successfully.", nil)
}

func (h *UserHandler) DisableAccount(c *fiber.Ctx) error {
	actor, _ := middleware.CurrentActor(c)
	if err := h.users.SetAccountDisabled(c.UserContext(), actor, true); err != nil {
		return err
	}
	return middleware.OK(c, "Account disabled successfully.", nil)
}

func (h *UserHandler) EnableAccount(c *fiber.Ctx) error {
	actor, _ := middleware.CurrentActor(c)
	if err := h.users.SetAccountDisabled(c.UserContext(), actor, false); err != nil {
		return err
	}
	return middleware.OK(c, "Account enabled successfully.", nil)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,strongpassword"`
}

func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	actor, _ := middleware.CurrentActor(c)
	if err := h.users.ChangePassword(c.UserContext(), actor, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return middleware.OK(c, "Password changed successfully.", nil)
}

func (h *UserHandler) UpdateProfileImage(c *fiber.Ctx) error {
	filename, err := formImage(c, h.uploads, "image", true)
	if err != nil {
		return err
	}

	actor, _ := middleware.CurrentActor(c)
	url, err := h.users.UpdateProfileImage(c.UserContext(), actor, filename)
	if err != nil {
		return err
	}
	return middleware.OK(c, "Profile image updated successfully.", fiber.Map{"image": url})
}
