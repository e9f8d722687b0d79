// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package clientassertion

import (
	"fmt"
	"time"
)

// Option configures the JWT
type Option func(*JWT) error

// WithKeyID sets the "kid" header that authorization servers use to look up
// the public key to check the signed JWT. NetSuite expects the certificate
// ID assigned when the certificate was uploaded.
func WithKeyID(keyID string) Option {
	return func(j *JWT) error {
		j.headers["kid"] = keyID
		return nil
	}
}

// WithHeaders sets extra JWT headers
func WithHeaders(h map[string]string) Option {
	return func(j *JWT) error {
		for k, v := range h {
			j.headers[k] = v
		}
		return nil
	}
}

// WithScopes sets the "scope" claim. It is serialized as a JSON array.
func WithScopes(scopes ...string) Option {
	return func(j *JWT) error {
		j.scopes = append(j.scopes, scopes...)
		return nil
	}
}

// WithLifetime overrides the default 5 minute lifetime of the assertion.
func WithLifetime(d time.Duration) Option {
	return func(j *JWT) error {
		if d <= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidLifetime, d)
		}
		j.lifetime = d
		return nil
	}
}

// WithNow overrides the clock used for the "iat" and "exp" claims.
func WithNow(fn func() time.Time) Option {
	return func(j *JWT) error {
		if fn == nil {
			return ErrMissingFuncNow
		}
		j.now = fn
		return nil
	}
}
