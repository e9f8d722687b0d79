// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package m2m

import "errors"

var (
	ErrInvalidParameter   = errors.New("invalid parameter")
	ErrNilParameter       = errors.New("nil parameter")
	ErrInvalidCACert      = errors.New("invalid CA certificate")
	ErrUnsupportedAlg     = errors.New("unsupported signing algorithm")
	ErrTokenExchange      = errors.New("token exchange failed")
	ErrMissingAccessToken = errors.New("access_token is missing")
)
