// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package m2m

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/suitetalk/clientassertion"
	"github.com/hashicorp/suitetalk/internal/httpclient"
	"github.com/hashicorp/suitetalk/keyfile"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	clientAssertionTypeParam = "client_assertion_type"
	clientAssertionParam     = "client_assertion"
)

// Exchanger trades a signed client assertion for an access token using the
// client_credentials grant (RFC 6749 section 4.4, RFC 7523 section 2.2).
// It holds no token state; see TokenHolder.
type Exchanger struct {
	config    *Config
	assertion *clientassertion.JWT
	client    *http.Client
	logger    hclog.Logger
	now       func() time.Time
}

// NewExchanger validates the config and imports its private key.
// Supported options:
//
//	WithHTTPClient
//	WithLogger
//	WithNow
func NewExchanger(c *Config, opt ...Option) (*Exchanger, error) {
	const op = "NewExchanger"
	if c == nil {
		return nil, fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: config is invalid: %w", op, err)
	}
	opts := getExchangerOpts(opt...)

	key, err := keyfile.ParsePrivateKey(string(c.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("%s: unable to import private key: %w", op, err)
	}
	j, err := clientassertion.NewJWTWithRSAKey(c.ConsumerKey, []string{c.TokenURL()}, c.Algorithm, key,
		clientassertion.WithKeyID(c.CertificateID),
		clientassertion.WithScopes(c.Scopes...),
		clientassertion.WithNow(opts.withNow),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create client assertion: %w", op, err)
	}

	client := opts.withHTTPClient
	if client == nil {
		if client, err = c.HTTPClient(); err != nil {
			return nil, fmt.Errorf("%s: unable to create http client: %w", op, err)
		}
	}

	return &Exchanger{
		config:    c,
		assertion: j,
		client:    tokenClient(client),
		logger:    opts.withLogger,
		now:       opts.withNow,
	}, nil
}

// Assertion returns a freshly signed client assertion.
func (e *Exchanger) Assertion() (string, error) {
	const op = "Exchanger.Assertion"
	s, err := e.assertion.Serialize()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// Exchange requests a new access token from the token endpoint. Each call
// signs a new assertion. There are no retries.
func (e *Exchanger) Exchange(ctx context.Context) (*Token, error) {
	const op = "Exchanger.Exchange"
	assertion, err := e.Assertion()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	e.logger.Trace("signed client assertion", "jwt", assertion)

	cc := clientcredentials.Config{
		TokenURL:  e.config.TokenURL(),
		AuthStyle: oauth2.AuthStyleInParams,
		EndpointParams: url.Values{
			clientAssertionTypeParam: {clientassertion.JWTTypeParam},
			clientAssertionParam:     {assertion},
		},
	}

	e.logger.Debug("requesting access token", "token_url", cc.TokenURL)
	tk, err := cc.Token(httpclient.Context(ctx, e.client))
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) && rErr.Response != nil {
			e.logger.Error("token endpoint rejected request", "status", rErr.Response.StatusCode, "error_code", rErr.ErrorCode)
		}
		return nil, fmt.Errorf("%s: %w: %w", op, ErrTokenExchange, err)
	}

	t := &Token{
		AccessToken: AccessToken(tk.AccessToken),
		TokenType:   tk.TokenType,
		Expiry:      tk.Expiry,
	}
	if t.Expiry.IsZero() {
		t.Expiry = e.now().Add(DefaultTokenLifetime)
	}
	e.logger.Debug("received access token", "expiry", t.Expiry)
	return t, nil
}

// exchangerOptions is the set of available options
type exchangerOptions struct {
	withHTTPClient *http.Client
	withLogger     hclog.Logger
	withNow        func() time.Time
}

func exchangerDefaults() exchangerOptions {
	return exchangerOptions{
		withLogger: hclog.NewNullLogger(),
		withNow:    time.Now,
	}
}

func getExchangerOpts(opt ...Option) exchangerOptions {
	opts := exchangerDefaults()
	ApplyOpts(&opts, opt...)
	if opts.withLogger == nil {
		opts.withLogger = hclog.NewNullLogger()
	}
	if opts.withNow == nil {
		opts.withNow = time.Now
	}
	return opts
}
