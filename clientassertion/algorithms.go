// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package clientassertion

import (
	"crypto/rsa"
	"fmt"
)

// RSAlgorithm is an RSA signature algorithm
type RSAlgorithm string

// JOSE asymmetric signing algorithm values as defined by RFC 7518.
// See: https://tools.ietf.org/html/rfc7518#section-3.1
const (
	RS256 RSAlgorithm = "RS256" // RSASSA-PKCS-v1.5 using SHA-256
	RS384 RSAlgorithm = "RS384" // RSASSA-PKCS-v1.5 using SHA-384
	RS512 RSAlgorithm = "RS512" // RSASSA-PKCS-v1.5 using SHA-512
	PS256 RSAlgorithm = "PS256" // RSASSA-PSS using SHA256 and MGF1-SHA256
	PS384 RSAlgorithm = "PS384" // RSASSA-PSS using SHA384 and MGF1-SHA384
	PS512 RSAlgorithm = "PS512" // RSASSA-PSS using SHA512 and MGF1-SHA512
)

// Validate checks that the algorithm is one of the RSASSA-PSS algorithms
// and that the key is valid per rsa.PrivateKey's Validate() method. The
// PKCS#1 v1.5 algorithms are recognized only to return a clearer error.
func (a RSAlgorithm) Validate(key *rsa.PrivateKey) error {
	const op = "RSAlgorithm.Validate"
	if key == nil {
		return fmt.Errorf("%s: %w", op, ErrNilPrivateKey)
	}
	switch a {
	case PS256, PS384, PS512:
		if err := key.Validate(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	case RS256, RS384, RS512:
		return fmt.Errorf("%s: %q: %w", op, a, ErrPKCS1v15NotAccepted)
	default:
		return fmt.Errorf("%s: %w %q for RSA key", op, ErrUnsupportedAlgorithm, a)
	}
}
