package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/example/rentify/internal/logger"
	"github.com/example/rentify/internal/models"
)

type userFixture struct {
	svc       *UserService
	users     *fakeUsers
	blacklist *fakeBlacklist
	mailer    *recordingMailer
	uploads   *fakeUploads
}

func newUserFixture() *userFixture {
	f := &userFixture{
		users:     newFakeUsers(),
		blacklist: newFakeBlacklist(),
		mailer:    &recordingMailer{},
		uploads:   &fakeUploads{},
	}
	f.svc = NewUserService(f.users, f.blacklist, f.mailer, f.uploads, testURLs, AuthConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
		HashCost:      4,
	}, logger.NewNop())
	clock := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return clock }
	return f
}

// registerVerified walks a user through registration and OTP verification.
func (f *userFixture) registerVerified(t *testing.T, email, password string) {
	t.Helper()
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, RegisterInput{FullName: "Jane Doe", Email: email, Password: password}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := f.svc.VerifyOTP(ctx, email, f.mailer.last().Code); err != nil {
		t.Fatalf("VerifyOTP() error = %v", err)
	}
}

func TestUserRegister(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	out, err := f.svc.Register(ctx, RegisterInput{FullName: " Jane Doe ", Email: "Jane@Example.com", Password: "Secret#123"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if out["verification_path"] != VerificationPath {
		t.Errorf("verification path = %q", out["verification_path"])
	}

	user, err := f.users.FindByEmail(ctx, "jane@example.com")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if user.FullName != "Jane Doe" || user.PreferredCurrency != models.CurrencyUSD || user.VerificationStatus {
		t.Errorf("stored user = %+v", user)
	}
	if user.PasswordHash == "Secret#123" {
		t.Error("password stored in clear text")
	}
	if mail := f.mailer.last(); mail.To != "jane@example.com" || len(mail.Code) != 6 {
		t.Errorf("activation mail = %+v", mail)
	}

	_, err = f.svc.Register(ctx, RegisterInput{FullName: "Jane", Email: "jane@example.com", Password: "Secret#123"})
	assertStatus(t, err, http.StatusConflict)
}

func TestUserRegisterSurvivesMailFailure(t *testing.T) {
	f := newUserFixture()
	f.mailer.err = errors.New("smtp down")

	if _, err := f.svc.Register(context.Background(), RegisterInput{FullName: "Jane", Email: "jane@example.com", Password: "Secret#123"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
}

func TestUserVerifyOTP(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, RegisterInput{FullName: "Jane", Email: "jane@example.com", Password: "Secret#123"}); err != nil {
		t.Fatal(err)
	}
	code := f.mailer.last().Code

	assertStatus(t, f.svc.VerifyOTP(ctx, "jane@example.com", "000000x"), http.StatusUnauthorized)
	assertStatus(t, f.svc.VerifyOTP(ctx, "nobody@example.com", code), http.StatusNotFound)

	if err := f.svc.VerifyOTP(ctx, "jane@example.com", code); err != nil {
		t.Fatalf("VerifyOTP() error = %v", err)
	}
	assertStatus(t, f.svc.VerifyOTP(ctx, "jane@example.com", code), http.StatusUnauthorized)
	assertStatus(t, f.svc.RequestOTP(ctx, "jane@example.com"), http.StatusConflict)
	assertStatus(t, f.svc.RequestOTP(ctx, "nobody@example.com"), http.StatusNotFound)
}

func TestUserLogin(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, RegisterInput{FullName: "Jane", Email: "jane@example.com", Password: "Secret#123"}); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.Login(ctx, "jane@example.com", "Secret#123")
	assertStatus(t, err, http.StatusConflict)

	if err := f.svc.VerifyOTP(ctx, "jane@example.com", f.mailer.last().Code); err != nil {
		t.Fatal(err)
	}

	_, err = f.svc.Login(ctx, "jane@example.com", "wrong")
	assertStatus(t, err, http.StatusConflict)
	_, err = f.svc.Login(ctx, "ghost@example.com", "Secret#123")
	assertStatus(t, err, http.StatusConflict)

	result, err := f.svc.Login(ctx, "JANE@example.com", "Secret#123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" || result.AccountStatus != msgAccountActive {
		t.Errorf("login result = %+v", result)
	}

	actor, err := f.svc.Authenticate(ctx, result.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if actor.Email != "jane@example.com" || actor.Role != models.RoleUser || actor.Name != "Jane" {
		t.Errorf("actor = %+v", actor)
	}

	_, err = f.svc.Authenticate(ctx, result.RefreshToken)
	assertStatus(t, err, http.StatusUnauthorized)
}

func TestUserLoginBlockedAndDisabled(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	f.registerVerified(t, "jane@example.com", "Secret#123")

	user, _ := f.users.FindByEmail(ctx, "jane@example.com")
	actor := Actor{UserID: user.ID}

	if err := f.svc.SetAccountDisabled(ctx, actor, true); err != nil {
		t.Fatal(err)
	}
	result, err := f.svc.Login(ctx, "jane@example.com", "Secret#123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.AccountStatus != msgAccountDisabled {
		t.Errorf("account status = %q, want %q", result.AccountStatus, msgAccountDisabled)
	}

	_ = f.users.update(user.ID, func(u *models.User) { u.IsBlocked = true })
	_, err = f.svc.Login(ctx, "jane@example.com", "Secret#123")
	assertStatus(t, err, http.StatusForbidden)

	_, err = f.svc.RefreshToken(ctx, result.RefreshToken)
	assertStatus(t, err, http.StatusForbidden)
}

func TestUserRefreshToken(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	f.registerVerified(t, "jane@example.com", "Secret#123")

	result, err := f.svc.Login(ctx, "jane@example.com", "Secret#123")
	if err != nil {
		t.Fatal(err)
	}

	access, err := f.svc.RefreshToken(ctx, result.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken() error = %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, access); err != nil {
		t.Errorf("refreshed token rejected: %v", err)
	}

	_, err = f.svc.RefreshToken(ctx, "")
	assertStatus(t, err, http.StatusBadRequest)
	_, err = f.svc.RefreshToken(ctx, result.AccessToken)
	assertStatus(t, err, http.StatusUnauthorized)
}

func TestUserLogoutRevokesToken(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	f.registerVerified(t, "jane@example.com", "Secret#123")

	result, err := f.svc.Login(ctx, "jane@example.com", "Secret#123")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Logout(ctx, result.AccessToken); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	_, err = f.svc.Authenticate(ctx, result.AccessToken)
	assertStatus(t, err, http.StatusUnauthorized)

	f.svc.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	purged, err := f.svc.PurgeExpiredTokens(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}
}

func TestUserChangePassword(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	f.registerVerified(t, "jane@example.com", "Secret#123")

	user, _ := f.users.FindByEmail(ctx, "jane@example.com")
	actor := Actor{UserID: user.ID}

	assertStatus(t, f.svc.ChangePassword(ctx, actor, "wrong", "Newer#456"), http.StatusConflict)

	if err := f.svc.ChangePassword(ctx, actor, "Secret#123", "Newer#456"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	if _, err := f.svc.Login(ctx, "jane@example.com", "Newer#456"); err != nil {
		t.Errorf("login with new password: %v", err)
	}
	_, err := f.svc.Login(ctx, "jane@example.com", "Secret#123")
	assertStatus(t, err, http.StatusConflict)
}

func TestUserProfile(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	f.registerVerified(t, "jane@example.com", "Secret#123")

	user, _ := f.users.FindByEmail(ctx, "jane@example.com")
	actor := Actor{UserID: user.ID}

	profile, err := f.svc.Profile(ctx, actor)
	if err != nil {
		t.Fatal(err)
	}
	if profile.Image != nil {
		t.Errorf("image = %q, want nil", *profile.Image)
	}

	name := "Jane Smith"
	egp := models.CurrencyEGP
	profile, err = f.svc.UpdateProfile(ctx, actor, ProfileInput{FullName: &name, Currency: &egp})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if profile.FullName != "Jane Smith" || profile.PreferredCurrency != models.CurrencyEGP {
		t.Errorf("profile = %+v", profile)
	}

	url, err := f.svc.UpdateProfileImage(ctx, actor, "first.png")
	if err != nil {
		t.Fatal(err)
	}
	if url != "http://localhost:3000/uploads/first.png" {
		t.Errorf("url = %q", url)
	}
	if _, err := f.svc.UpdateProfileImage(ctx, actor, "second.png"); err != nil {
		t.Fatal(err)
	}
	if len(f.uploads.removed) != 1 || f.uploads.removed[0] != "first.png" {
		t.Errorf("removed = %v, want [first.png]", f.uploads.removed)
	}

	_, err = f.svc.UpdateProfileImage(ctx, Actor{UserID: 99}, "orphan.png")
	assertStatus(t, err, http.StatusNotFound)
	if f.uploads.removed[len(f.uploads.removed)-1] != "orphan.png" {
		t.Errorf("orphan upload kept: %v", f.uploads.removed)
	}
}
