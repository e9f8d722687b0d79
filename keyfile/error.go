// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package keyfile

import "errors"

var (
	ErrEmptyKey           = errors.New("empty private key")
	ErrInvalidKeyEncoding = errors.New("invalid private key encoding")
	ErrInvalidKey         = errors.New("invalid private key")
	ErrNotRSAKey          = errors.New("private key is not an RSA key")
)
