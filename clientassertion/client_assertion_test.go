// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package clientassertion

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

// TestJWTBare tests what errors we expect if &JWT{} is instantiated
// directly, rather than using the constructor.
func TestJWTBare(t *testing.T) {
	j := &JWT{}

	tokenStr, err := j.Serialize()
	require.ErrorIs(t, err, ErrMissingFuncIDGenerator)
	require.ErrorIs(t, err, ErrMissingFuncNow)
	assert.Equal(t, "", tokenStr)
}

func TestNewJWTWithRSAKey(t *testing.T) {
	key := testKey(t)
	tCid := "test-client-id"
	tAud := []string{"test-audience"}

	cases := []struct {
		name  string
		opts  []Option
		check func(*testing.T, *JWT)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, j *JWT) {
				require.Equal(t, DefaultLifetime, j.lifetime)
				require.Empty(t, j.headers)
				require.Empty(t, j.scopes)
			},
		},
		{
			name: "with key id",
			opts: []Option{WithKeyID("kid")},
			check: func(t *testing.T, j *JWT) {
				require.Equal(t, "kid", j.headers["kid"])
			},
		},
		{
			name: "with headers",
			opts: []Option{WithHeaders(map[string]string{"h1": "v1", "h2": "v2"})},
			check: func(t *testing.T, j *JWT) {
				require.Equal(t, map[string]string{"h1": "v1", "h2": "v2"}, j.headers)
			},
		},
		{
			name: "with scopes",
			opts: []Option{WithScopes("rest_webservices"), WithScopes("restlets")},
			check: func(t *testing.T, j *JWT) {
				require.Equal(t, []string{"rest_webservices", "restlets"}, j.scopes)
			},
		},
		{
			name: "with lifetime",
			opts: []Option{WithLifetime(time.Minute)},
			check: func(t *testing.T, j *JWT) {
				require.Equal(t, time.Minute, j.lifetime)
			},
		},
		{
			name: "with now",
			opts: []Option{WithNow(func() time.Time { return time.Unix(1700000000, 0) })},
			check: func(t *testing.T, j *JWT) {
				require.Equal(t, time.Unix(1700000000, 0), j.now())
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			j, err := NewJWTWithRSAKey(tCid, tAud, PS256, key, tc.opts...)
			require.NoError(t, err)
			require.NotNil(t, j)
			require.Equal(t, tCid, j.clientID)
			require.Equal(t, tAud, j.audience)
			require.Equal(t, PS256, j.alg)
			if tc.check != nil {
				tc.check(t, j)
			}
		})
	}
}

func TestNewJWTWithRSAKey_Errors(t *testing.T) {
	key := testKey(t)
	tCid := "test-client-id"
	tAud := []string{"test-audience"}
	cases := []struct {
		name string
		cid  string
		aud  []string
		alg  RSAlgorithm
		key  *rsa.PrivateKey
		opts []Option
		errs []error
	}{
		{
			name: "missing everything",
			errs: []error{ErrMissingClientID, ErrMissingAudience, ErrMissingAlgorithm},
		},
		{
			name: "missing client id",
			aud:  tAud, alg: PS256, key: key,
			errs: []error{ErrMissingClientID},
		},
		{
			name: "missing audience",
			cid:  tCid, alg: PS256, key: key,
			errs: []error{ErrMissingAudience},
		},
		{
			name: "nil key",
			cid:  tCid, aud: tAud, alg: PS256,
			errs: []error{ErrNilPrivateKey},
		},
		{
			name: "pkcs1 v1.5",
			cid:  tCid, aud: tAud, alg: RS256, key: key,
			errs: []error{ErrPKCS1v15NotAccepted},
		},
		{
			name: "unknown alg",
			cid:  tCid, aud: tAud, alg: "ruh-roh", key: key,
			errs: []error{ErrUnsupportedAlgorithm},
		},
		{
			name: "bad lifetime",
			cid:  tCid, aud: tAud, alg: PS256, key: key,
			opts: []Option{WithLifetime(0)},
			errs: []error{ErrInvalidLifetime},
		},
		{
			name: "nil clock",
			cid:  tCid, aud: tAud, alg: PS256, key: key,
			opts: []Option{WithNow(nil)},
			errs: []error{ErrMissingFuncNow},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			j, err := NewJWTWithRSAKey(tc.cid, tc.aud, tc.alg, tc.key, tc.opts...)
			require.Error(t, err)
			for _, e := range tc.errs {
				assert.ErrorIs(t, err, e)
			}
			require.Nil(t, j)
		})
	}
}

func TestRSAlgorithm_Validate(t *testing.T) {
	key := testKey(t)
	for _, a := range []RSAlgorithm{PS256, PS384, PS512} {
		assert.NoError(t, a.Validate(key), a)
	}
	for _, a := range []RSAlgorithm{RS256, RS384, RS512} {
		assert.ErrorIs(t, a.Validate(key), ErrPKCS1v15NotAccepted, a)
	}
	assert.ErrorIs(t, PS256.Validate(nil), ErrNilPrivateKey)
	assert.Error(t, PS256.Validate(&rsa.PrivateKey{}))
}

func TestSerialize(t *testing.T) {
	key := testKey(t)
	pub := &key.PublicKey

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	j, err := NewJWTWithRSAKey("test-client-id", []string{"https://example.com/token"}, PS256, key,
		WithKeyID("test-key-id"),
		WithHeaders(map[string]string{"xtra": "headies"}),
		WithScopes("rest_webservices"),
	)
	require.NoError(t, err)
	j.now = func() time.Time { return now }
	j.genID = func() (string, error) { return "test-claim-id", nil }

	// method under test
	tokenString, err := j.Serialize()
	require.NoError(t, err)

	t.Run("headers", func(t *testing.T) {
		token, err := jwt.ParseSigned(tokenString, []jose.SignatureAlgorithm{jose.PS256})
		require.NoError(t, err)
		expectHeaders := jose.Header{
			Algorithm: "PS256",
			KeyID:     "test-key-id",
			ExtraHeaders: map[jose.HeaderKey]any{
				"typ":  "JWT",
				"xtra": "headies",
			},
		}
		require.Len(t, token.Headers, 1)
		require.Equal(t, expectHeaders, token.Headers[0])
	})

	t.Run("claims", func(t *testing.T) {
		token, err := jwt.ParseSigned(tokenString, []jose.SignatureAlgorithm{jose.PS256})
		require.NoError(t, err)
		var (
			std     jwt.Claims
			private struct {
				Scope []string `json:"scope"`
			}
		)
		require.NoError(t, token.Claims(pub, &std, &private))
		require.NoError(t, std.Validate(jwt.Expected{
			Issuer:      "test-client-id",
			AnyAudience: []string{"https://example.com/token"},
			ID:          "test-claim-id",
			Time:        now,
		}))
		assert.True(t, now.Equal(std.IssuedAt.Time()), "iat")
		assert.True(t, now.Add(5*time.Minute).Equal(std.Expiry.Time()), "exp")
		assert.Empty(t, std.Subject)
		assert.Equal(t, []string{"rest_webservices"}, private.Scope)
	})

	t.Run("pss verifies and pkcs1 v1.5 does not", func(t *testing.T) {
		parts := strings.Split(tokenString, ".")
		require.Len(t, parts, 3)
		sig, err := base64.RawURLEncoding.DecodeString(parts[2])
		require.NoError(t, err)
		digest := sha256.Sum256([]byte(parts[0] + "." + parts[1]))

		require.NoError(t, rsa.VerifyPSS(pub, crypto.SHA256, digest[:], sig, nil))
		require.Error(t, rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sig))

		_, err = jwt.ParseSigned(tokenString, []jose.SignatureAlgorithm{jose.RS256})
		require.Error(t, err)
	})

	t.Run("wrong key", func(t *testing.T) {
		token, err := jwt.ParseSigned(tokenString, []jose.SignatureAlgorithm{jose.PS256})
		require.NoError(t, err)
		var std jwt.Claims
		require.Error(t, token.Claims(&testKey(t).PublicKey, &std))
	})

	t.Run("error generating token id", func(t *testing.T) {
		genIDErr := errors.New("failed to generate test id")
		j, err := NewJWTWithRSAKey("a", []string{"a"}, PS256, key)
		require.NoError(t, err)
		j.genID = func() (string, error) { return "", genIDErr }
		tokenString, err := j.Serialize()
		require.ErrorIs(t, err, genIDErr)
		require.Equal(t, "", tokenString)
	})

	t.Run("fresh claims per call", func(t *testing.T) {
		j, err := NewJWTWithRSAKey("a", []string{"a"}, PS256, key)
		require.NoError(t, err)
		first, err := j.Serialize()
		require.NoError(t, err)
		second, err := j.Serialize()
		require.NoError(t, err)
		require.NotEqual(t, first, second)
	})
}
