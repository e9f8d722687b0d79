// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// suitetalk provides a collection of related packages which authenticate to
// the NetSuite SuiteTalk REST API with the OAuth 2.0 client credentials flow
// and call its record API.
//
//	keyfile          decodes the certificate's PKCS#8 private key
//	clientassertion  builds signed JWT client assertions (PS256)
//	m2m              exchanges assertions for access tokens and holds them
//	suitetalk        lists records with the held access token
//
// The suitetalk command in cmd/suitetalk wires them together.
package suitetalk
