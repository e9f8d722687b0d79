// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package m2m

import (
	"encoding/json"
	"time"

	"golang.org/x/oauth2"
)

const (
	expirySkew = 10 * time.Second

	// DefaultTokenLifetime is assumed when the token endpoint does not send
	// expires_in. NetSuite M2M access tokens are short lived.
	DefaultTokenLifetime = 5 * time.Minute
)

// AccessToken is an oauth access_token
type AccessToken string

// RedactedAccessToken is the redacted string or json for an oauth access_token
const RedactedAccessToken = "[REDACTED: access_token]"

// String will redact the token
func (t AccessToken) String() string {
	return RedactedAccessToken
}

// MarshalJSON will redact the token
func (t AccessToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedAccessToken)
}

// Token is an access token returned by the token endpoint.
type Token struct {
	AccessToken AccessToken
	TokenType   string
	Expiry      time.Time
}

// Expired reports whether the token is expired, or will be within the
// default expiry skew. A zero Expiry never expires.
func (t *Token) Expired() bool {
	return t.expiredAt(time.Now(), expirySkew)
}

// Valid reports whether the token is non-nil, has an access token and is
// not expired.
func (t *Token) Valid() bool {
	return t.validAt(time.Now(), expirySkew)
}

func (t *Token) expiredAt(now time.Time, skew time.Duration) bool {
	if t.Expiry.IsZero() {
		return false
	}
	return t.Expiry.Round(0).Before(now.Add(skew))
}

func (t *Token) validAt(now time.Time, skew time.Duration) bool {
	if t == nil {
		return false
	}
	if t.AccessToken == "" {
		return false
	}
	return !t.expiredAt(now, skew)
}

// OAuth2 returns the token as an *oauth2.Token, which can set the
// Authorization header of a request.
func (t *Token) OAuth2() *oauth2.Token {
	if t == nil {
		return nil
	}
	return &oauth2.Token{
		AccessToken: string(t.AccessToken),
		TokenType:   t.TokenType,
		Expiry:      t.Expiry,
	}
}
