// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package clientassertion

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/hashicorp/go-uuid"
)

const (
	// JWTTypeParam is the proper value for client_assertion_type.
	// https://www.rfc-editor.org/rfc/rfc7523.html#section-2.2
	JWTTypeParam = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"

	// DefaultLifetime is the time between the iat and exp claims.
	DefaultLifetime = 5 * time.Minute

	// ScopeClaim is the private claim carrying the requested scopes.
	ScopeClaim = "scope"
)

// NewJWTWithRSAKey creates a new JWT which will be signed with the private
// key using one of the RSASSA-PSS algorithms.
//
// Supported Options:
// * WithKeyID
// * WithHeaders
// * WithScopes
// * WithLifetime
// * WithNow
func NewJWTWithRSAKey(clientID string, audience []string, alg RSAlgorithm, key *rsa.PrivateKey, opts ...Option) (*JWT, error) {
	const op = "NewJWTWithRSAKey"
	j := &JWT{
		clientID: clientID,
		audience: audience,
		alg:      alg,
		key:      key,
		headers:  make(map[string]string),
		lifetime: DefaultLifetime,
		genID:    uuid.GenerateUUID,
		now:      time.Now,
	}

	var errs []error
	for _, opt := range opts {
		if err := opt(j); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", op, errors.Join(errs...))
	}

	if err := j.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// finally, make sure Serialize() works; we can't pre-validate everything,
	// and this whole thing is useless if it can't Serialize()
	if _, err := j.Serialize(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return j, nil
}

// JWT is used to create a client assertion JWT, a special JWT used by an OAuth
// 2.0 client to authenticate itself to an authorization server
type JWT struct {
	// for JWT claims
	clientID string
	audience []string
	scopes   []string
	lifetime time.Duration
	headers  map[string]string

	// for signer
	alg RSAlgorithm
	key *rsa.PrivateKey

	// these are overwritten for testing
	genID func() (string, error)
	now   func() time.Time
}

// Serialize returns a freshly signed client assertion JWT in compact form.
// Every call produces new iat, exp and jti claims.
func (j *JWT) Serialize() (string, error) {
	const op = "JWT.Serialize"
	if err := j.validate(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	builder, err := j.builder()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	token, err := builder.Serialize()
	if err != nil {
		return "", fmt.Errorf("%s: failed to serialize token: %w", op, err)
	}
	return token, nil
}

func (j *JWT) validate() error {
	const op = "JWT.validate"
	var errs []error
	if j.genID == nil {
		errs = append(errs, ErrMissingFuncIDGenerator)
	}
	if j.now == nil {
		errs = append(errs, ErrMissingFuncNow)
	}
	// bail early if any internal func errors
	if len(errs) > 0 {
		return fmt.Errorf("%s: %w", op, errors.Join(errs...))
	}

	if j.clientID == "" {
		errs = append(errs, ErrMissingClientID)
	}
	if len(j.audience) == 0 {
		errs = append(errs, ErrMissingAudience)
	}
	if j.lifetime <= 0 {
		errs = append(errs, ErrInvalidLifetime)
	}
	switch {
	case j.alg == "":
		errs = append(errs, ErrMissingAlgorithm)
	default:
		if err := j.alg.Validate(j.key); err != nil {
			errs = append(errs, err)
		}
	}
	// if any of those fail, we have no hope.
	if len(errs) > 0 {
		return fmt.Errorf("%s: %w", op, errors.Join(errs...))
	}

	return nil
}

func (j *JWT) builder() (jwt.Builder, error) {
	const op = "builder"
	signer, err := j.signer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	id, err := j.genID()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to generate token id: %w", op, err)
	}
	b := jwt.Signed(signer).Claims(j.claims(id))
	if len(j.scopes) > 0 {
		b = b.Claims(map[string]any{ScopeClaim: j.scopes})
	}
	return b, nil
}

func (j *JWT) signer() (jose.Signer, error) {
	const op = "signer"
	sKey := jose.SigningKey{
		Algorithm: jose.SignatureAlgorithm(j.alg),
		Key:       j.key,
	}

	sOpts := &jose.SignerOptions{
		ExtraHeaders: make(map[jose.HeaderKey]interface{}, len(j.headers)),
	}
	for k, v := range j.headers {
		sOpts.ExtraHeaders[jose.HeaderKey(k)] = v
	}

	signer, err := jose.NewSigner(sKey, sOpts.WithType("JWT"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrCreatingSigner, err)
	}
	return signer, nil
}

func (j *JWT) claims(id string) *jwt.Claims {
	now := j.now().UTC()
	return &jwt.Claims{
		Issuer:   j.clientID,
		Audience: j.audience,
		Expiry:   jwt.NewNumericDate(now.Add(j.lifetime)),
		IssuedAt: jwt.NewNumericDate(now),
		ID:       id,
	}
}

// serializer is the primary interface implemented by JWT.
type serializer interface {
	Serialize() (string, error)
}

// ensure JWT implements serializer, which is what the token exchanger
// expects of an assertion source.
var _ serializer = &JWT{}
