package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hashed string, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
	return err == nil
}

// GenerateResetToken returns 32 random bytes hex-encoded.
func GenerateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// FormatAmount renders an amount in minor units as a display string,
// e.g. 45000 USD -> "$450.00".
func FormatAmount(amount int64, currency string) string {
	symbol := "$"
	if !strings.EqualFold(currency, "USD") {
		symbol = fmt.Sprintf("%s ", strings.ToUpper(currency))
	}
	return fmt.Sprintf("%s%d.%02d", symbol, amount/100, amount%100)
}

// FormatPhone normalizes a 10-digit US number as (XXX) XXX-XXXX and leaves
// anything else untouched.
func FormatPhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if len(digits) != 10 {
		return phone
	}
	return fmt.Sprintf("(%s) %s-%s", digits[0:3], digits[3:6], digits[6:10])
}
