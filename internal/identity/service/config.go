package service

import (
	"bytes"
	"errors"
	"time"
)

// Config holds the secrets and lifetimes AuthService signs tokens with. It is
// fixed at construction.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	// Issuer, when set, must equal the token signer's issuer.
	Issuer string
}

// AccessTTLSeconds is the access token lifetime in whole seconds.
func (c Config) AccessTTLSeconds() int64 {
	return int64(c.AccessTTL / time.Second)
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	if len(c.AccessSecret) == 0 {
		return errors.New("access token secret is required")
	}
	if len(c.RefreshSecret) == 0 {
		return errors.New("refresh token secret is required")
	}
	if bytes.Equal(c.AccessSecret, c.RefreshSecret) {
		return errors.New("access and refresh token secrets must differ")
	}
	if c.AccessTTLSeconds() < 1 {
		return errors.New("access token ttl must be at least one second")
	}
	if c.RefreshTTL <= c.AccessTTL {
		return errors.New("refresh token ttl must be longer than access token ttl")
	}
	return nil
}
