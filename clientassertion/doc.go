// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package clientassertion signs JWTs with an RSA private key for use in
// OAuth 2.0 client_assertion requests, A.K.A. private_key_jwt (RFC 7523).
//
// Only RSASSA-PSS algorithms are produced. Authorization servers such as
// NetSuite no longer accept RSASSA-PKCS1-v1_5 client assertions.
//
// Example usage:
//
//	j, err := clientassertion.NewJWTWithRSAKey("consumer-key", []string{tokenURL},
//		clientassertion.PS256, rsaPrivateKey,
//		clientassertion.WithKeyID("certificate-id"),
//		clientassertion.WithScopes("rest_webservices"),
//	)
//	jwtString, err := j.Serialize()
package clientassertion
