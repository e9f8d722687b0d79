// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package m2m

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

// TokenSource obtains a new access token. Exchanger implements it.
type TokenSource interface {
	Exchange(ctx context.Context) (*Token, error)
}

var _ TokenSource = (*Exchanger)(nil)

// TokenHolder owns the current access token and replaces it when it is
// absent or expired.
type TokenHolder struct {
	src    TokenSource
	logger hclog.Logger
	now    func() time.Time
	skew   time.Duration

	mu    sync.Mutex
	token *Token
}

// NewTokenHolder creates an empty TokenHolder.
// Supported options:
//
//	WithExpirySkew
//	WithLogger
//	WithNow
func NewTokenHolder(src TokenSource, opt ...Option) (*TokenHolder, error) {
	const op = "NewTokenHolder"
	if src == nil {
		return nil, fmt.Errorf("%s: token source is nil: %w", op, ErrNilParameter)
	}
	opts := getHolderOpts(opt...)
	return &TokenHolder{
		src:    src,
		logger: opts.withLogger,
		now:    opts.withNow,
		skew:   opts.withExpirySkew,
	}, nil
}

// Token returns the held token, first exchanging for a new one if there is
// none or it has expired. A failed exchange leaves the held token as it was.
func (h *TokenHolder) Token(ctx context.Context) (*Token, error) {
	const op = "TokenHolder.Token"
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.token.validAt(h.now(), h.skew) {
		return h.token, nil
	}
	if h.token != nil {
		h.logger.Debug("access token expired", "expiry", h.token.Expiry)
	}
	t, err := h.src.Exchange(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	h.token = t
	return t, nil
}

// Current returns the held token without refreshing it. It may be nil.
func (h *TokenHolder) Current() *Token {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token
}

// Set replaces the held token.
func (h *TokenHolder) Set(t *Token) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = t
}

// Invalidate drops the held token so the next call to Token exchanges for
// a new one.
func (h *TokenHolder) Invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = nil
}

// holderOptions is the set of available options
type holderOptions struct {
	withLogger     hclog.Logger
	withNow        func() time.Time
	withExpirySkew time.Duration
}

func holderDefaults() holderOptions {
	return holderOptions{
		withLogger:     hclog.NewNullLogger(),
		withNow:        time.Now,
		withExpirySkew: expirySkew,
	}
}

func getHolderOpts(opt ...Option) holderOptions {
	opts := holderDefaults()
	ApplyOpts(&opts, opt...)
	if opts.withLogger == nil {
		opts.withLogger = hclog.NewNullLogger()
	}
	if opts.withNow == nil {
		opts.withNow = time.Now
	}
	return opts
}
