package utils

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const otpPeriod = 300

// GenerateOTPSecret creates a new base32 TOTP secret for an account.
func GenerateOTPSecret(issuer, account string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      otpPeriod,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

// GenerateOTPCode returns the code valid for secret at t.
func GenerateOTPCode(secret string, t time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, t, otpOptions())
}

// ValidateOTPCode checks code against secret, accepting the previous window.
func ValidateOTPCode(secret, code string, t time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, t, otpOptions())
	return err == nil && ok
}

func otpOptions() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    otpPeriod,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}
