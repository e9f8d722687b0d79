// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package clientassertion

import "errors"

var (
	// these may happen due to user error

	ErrMissingClientID  = errors.New("missing client ID")
	ErrMissingAudience  = errors.New("missing audience")
	ErrMissingAlgorithm = errors.New("missing signing algorithm")
	ErrInvalidLifetime  = errors.New("invalid assertion lifetime")

	// if these happen, either the user directly instantiated &JWT{}
	// or there's a bug somewhere.

	ErrMissingFuncIDGenerator = errors.New("missing IDgen func; please use NewJWTWithRSAKey()")
	ErrMissingFuncNow         = errors.New("missing now func; please use NewJWTWithRSAKey()")
	ErrCreatingSigner         = errors.New("error creating jwt signer")

	// algorithm errors

	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	ErrPKCS1v15NotAccepted  = errors.New("RSASSA-PKCS1-v1_5 is not accepted for client assertions; use PS256, PS384 or PS512")
	ErrNilPrivateKey        = errors.New("nil private key")
)
