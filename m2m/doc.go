// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
Package m2m implements the OAuth 2.0 client credentials (machine to machine)
flow used by the NetSuite SuiteTalk REST API, where the client proves its
identity with a JWT client assertion signed by a certificate's private key
instead of a client secret.

The Exchanger signs a fresh assertion for every request and posts it to the
token endpoint. The TokenHolder keeps the resulting access token and asks the
Exchanger for a new one when it is absent or expired.

Example:

	pc, err := m2m.NewConfig(accountID, certificateID, consumerKey, m2m.PrivateKey(pem))
	if err != nil {
		// handle error
	}
	e, err := m2m.NewExchanger(pc, m2m.WithLogger(logger))
	if err != nil {
		// handle error
	}
	tokens, err := m2m.NewTokenHolder(e)
	if err != nil {
		// handle error
	}
	t, err := tokens.Token(ctx)
*/
package m2m
