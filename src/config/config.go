package config

import (
	"fmt"
	"os"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const DATE_PARSE_FORMAT = "2006-01-02"

// DEFAULT_CURRENCY applies when a checkout request omits the currency.
const DEFAULT_CURRENCY = "USD"

// AUTH_COOKIE_MAX_AGE is the lifetime of the auth_token cookie in seconds (3 days).
const AUTH_COOKIE_MAX_AGE = 3 * 24 * 60 * 60

// RESET_TOKEN_TTL is how long a password reset token stays valid, in minutes.
const RESET_TOKEN_TTL = 60
