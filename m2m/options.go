// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package m2m

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/suitetalk/clientassertion"
)

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		if o == nil { // ignore any nil Options
			continue
		}
		o(opts)
	}
}

// WithLogger provides an optional logger for: Exchanger, TokenHolder
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *exchangerOptions:
			v.withLogger = l
		case *holderOptions:
			v.withLogger = l
		}
	}
}

// WithNow provides an optional clock for: Exchanger (assertion iat and exp,
// default token expiry), TokenHolder (expiry checks)
func WithNow(fn func() time.Time) Option {
	return func(o interface{}) {
		switch v := o.(type) {
		case *exchangerOptions:
			v.withNow = fn
		case *holderOptions:
			v.withNow = fn
		}
	}
}

// WithHTTPClient provides an optional http client for the Exchanger. By
// default one is built from the Config's ProviderCA.
func WithHTTPClient(c *http.Client) Option {
	return func(o interface{}) {
		if o, ok := o.(*exchangerOptions); ok {
			o.withHTTPClient = c
		}
	}
}

// WithExpirySkew provides an optional expiry skew duration for the
// TokenHolder. A held token is treated as expired once it is within the
// skew of its expiry.
func WithExpirySkew(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*holderOptions); ok {
			o.withExpirySkew = d
		}
	}
}

// WithScopes provides an optional list of scopes for the Config. It
// replaces the default "rest_webservices" scope.
func WithScopes(scopes ...string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withScopes = scopes
		}
	}
}

// WithAlgorithm provides an optional signing algorithm for the Config.
func WithAlgorithm(alg clientassertion.RSAlgorithm) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withAlgorithm = alg
		}
	}
}

// WithRestAPIRoot overrides the REST API root derived from the account id.
func WithRestAPIRoot(u string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withRestAPIRoot = u
		}
	}
}

// WithProviderCA provides an optional CA cert for the Config
func WithProviderCA(cert string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withProviderCA = cert
		}
	}
}
