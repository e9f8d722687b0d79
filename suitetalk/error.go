// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package suitetalk

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNilParameter     = errors.New("nil parameter")
	ErrRequestFailed    = errors.New("record request failed")
)

// APIError is returned when the record API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	// Body is the start of the response body, which for NetSuite is a
	// problem+json document.
	Body string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", ErrRequestFailed, e.StatusCode, e.Body)
}

// Unwrap lets errors.Is match ErrRequestFailed.
func (e *APIError) Unwrap() error {
	return ErrRequestFailed
}
