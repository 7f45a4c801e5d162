package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Secret#123", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "Secret#123") {
		t.Error("password should match")
	}
	if CheckPassword(hash, "secret#123") {
		t.Error("different password should not match")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("access", Claims{UserID: 42, Email: "a@b.c", Role: "admin", Name: "Ann"}, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseToken("access", token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "admin" || claims.Name != "Ann" {
		t.Errorf("unexpected claims %+v", claims)
	}

	if _, err := ParseToken("refresh", token); err == nil {
		t.Error("token signed with another secret should be rejected")
	}
}

func TestExpiredToken(t *testing.T) {
	token, err := GenerateToken("access", Claims{UserID: 1}, -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken("access", token); err == nil {
		t.Error("expired token should be rejected")
	}
}

func TestOTP(t *testing.T) {
	secret, err := GenerateOTPSecret("Rentify", "a@b.c")
	if err != nil {
		t.Fatalf("secret: %v", err)
	}

	now := time.Now()
	code, err := GenerateOTPCode(secret, now)
	if err != nil {
		t.Fatalf("code: %v", err)
	}
	if !ValidateOTPCode(secret, code, now.Add(time.Minute)) {
		t.Error("code should validate within its window")
	}
	if ValidateOTPCode(secret, code, now.Add(time.Hour)) {
		t.Error("code should expire")
	}
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	var got Pagination
	var strictOK bool
	app.Get("/", func(c *fiber.Ctx) error {
		got = ParsePagination(c)
		_, strictOK = ParseStrictPagination(c)
		return nil
	})

	tests := []struct {
		query    string
		page     int
		limit    int
		offset   int
		strictOK bool
	}{
		{query: "", page: 1, limit: 10, offset: 0, strictOK: true},
		{query: "?page=3&limit=5", page: 3, limit: 5, offset: 10, strictOK: true},
		{query: "?page=0&limit=-1", page: 1, limit: 10, offset: 0, strictOK: false},
	}

	for _, tt := range tests {
		if _, err := app.Test(httptest.NewRequest("GET", "/"+tt.query, nil)); err != nil {
			t.Fatalf("request: %v", err)
		}
		if got.Page != tt.page || got.Limit != tt.limit || got.Offset != tt.offset {
			t.Errorf("%q: got %+v", tt.query, got)
		}
		if strictOK != tt.strictOK {
			t.Errorf("%q: strict ok = %v", tt.query, strictOK)
		}
	}

	if pages := NewPagination(1, 10).TotalPages(21); pages != 3 {
		t.Errorf("total pages = %d", pages)
	}
}
