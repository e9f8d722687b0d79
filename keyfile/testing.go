// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package keyfile

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestGenerateKey will generate a 2048 bit RSA key and return it along with
// its PKCS#8 PEM encoding, which is the format ParsePrivateKey accepts.
func TestGenerateKey(t testing.TB) (*rsa.PrivateKey, string) {
	t.Helper()
	require := require.New(t)
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(err)
	return key, TestEncodeKey(t, key)
}

// TestEncodeKey returns the PKCS#8 PEM encoding of key.
func TestEncodeKey(t testing.TB, key *rsa.PrivateKey) string {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}
