// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package m2m

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/suitetalk/clientassertion"
	"github.com/hashicorp/suitetalk/internal/httpclient"
)

const (
	// DefaultScope is requested when no scopes are configured.
	DefaultScope = "rest_webservices"

	// DefaultAlgorithm is the assertion signing algorithm. NetSuite stopped
	// accepting RSASSA-PKCS1-v1_5 signed assertions on 2025-03-01.
	DefaultAlgorithm = clientassertion.PS256

	restAPIRootFormat = "https://%s.suitetalk.api.netsuite.com/services/rest"
	oauth2Path        = "/auth/oauth2/v1"
	tokenPath         = "/token"
	recordPath        = "/record/v1"
)

var supportedAlgorithms = map[clientassertion.RSAlgorithm]bool{
	clientassertion.PS256: true,
	clientassertion.PS384: true,
	clientassertion.PS512: true,
}

// PrivateKey is the PEM-like private key text used to sign client assertions.
type PrivateKey string

// RedactedPrivateKey is the redacted string or json for a private key
const RedactedPrivateKey = "[REDACTED: private key]"

// String will redact the private key
func (k PrivateKey) String() string {
	return RedactedPrivateKey
}

// MarshalJSON will redact the private key
func (k PrivateKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedPrivateKey)
}

// Config represents the credentials and endpoints for the OAuth 2.0
// client credentials (machine to machine) flow. A Config should not be
// modified once it has been handed to an Exchanger or Client.
type Config struct {
	// AccountID is the NetSuite account, e.g. "1234567" or "1234567_SB1".
	AccountID string

	// CertificateID identifies the uploaded certificate and is sent as the
	// assertion's "kid" header.
	CertificateID string

	// ConsumerKey is the integration record's client id. It is the
	// assertion's issuer and is not a secret.
	ConsumerKey string

	// PrivateKey is the PKCS#8 key matching the uploaded certificate.
	PrivateKey PrivateKey

	// Scopes are sent in the assertion's "scope" claim.
	Scopes []string

	// Algorithm is the assertion signing algorithm.
	Algorithm clientassertion.RSAlgorithm

	// RestAPIRoot optionally replaces the REST API root derived from
	// AccountID.
	RestAPIRoot string

	// ProviderCA is an optional CA cert to use when sending requests.
	ProviderCA string
}

// NewConfig composes a new config.
// Supported options:
//
//	WithScopes
//	WithAlgorithm
//	WithRestAPIRoot
//	WithProviderCA
func NewConfig(accountID, certificateID, consumerKey string, privateKey PrivateKey, opt ...Option) (*Config, error) {
	const op = "NewConfig"
	opts := getConfigOpts(opt...)
	c := &Config{
		AccountID:     accountID,
		CertificateID: certificateID,
		ConsumerKey:   consumerKey,
		PrivateKey:    privateKey,
		Scopes:        opts.withScopes,
		Algorithm:     opts.withAlgorithm,
		RestAPIRoot:   opts.withRestAPIRoot,
		ProviderCA:    opts.withProviderCA,
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", op, err)
	}
	return c, nil
}

// Validate the configuration. It does not parse the private key; that
// happens when an Exchanger is created.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	if c == nil {
		return fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	if c.AccountID == "" {
		return fmt.Errorf("%s: account id is empty: %w", op, ErrInvalidParameter)
	}
	if c.CertificateID == "" {
		return fmt.Errorf("%s: certificate id is empty: %w", op, ErrInvalidParameter)
	}
	if c.ConsumerKey == "" {
		return fmt.Errorf("%s: consumer key is empty: %w", op, ErrInvalidParameter)
	}
	if strings.TrimSpace(string(c.PrivateKey)) == "" {
		return fmt.Errorf("%s: private key is empty: %w", op, ErrInvalidParameter)
	}
	if len(c.Scopes) == 0 {
		return fmt.Errorf("%s: scopes are empty: %w", op, ErrInvalidParameter)
	}
	if !supportedAlgorithms[c.Algorithm] {
		return fmt.Errorf("%s: %q: %w", op, c.Algorithm, ErrUnsupportedAlg)
	}
	if c.RestAPIRoot != "" {
		u, err := url.Parse(c.RestAPIRoot)
		if err != nil {
			return fmt.Errorf("%s: rest api root %s is invalid: %w", op, c.RestAPIRoot, err)
		}
		if u.Scheme != "https" && u.Scheme != "http" {
			return fmt.Errorf("%s: rest api root %s scheme is not http or https: %w", op, c.RestAPIRoot, ErrInvalidParameter)
		}
	}
	return nil
}

// AccountHost returns the account id in the form used in NetSuite host
// names: lower case, with underscores replaced by dashes.
func (c *Config) AccountHost() string {
	return strings.ToLower(strings.ReplaceAll(c.AccountID, "_", "-"))
}

// RestRoot returns the REST API root, without a trailing slash.
func (c *Config) RestRoot() string {
	if c.RestAPIRoot != "" {
		return strings.TrimRight(c.RestAPIRoot, "/")
	}
	return fmt.Sprintf(restAPIRootFormat, c.AccountHost())
}

// OAuth2Root returns the root of the OAuth 2.0 endpoints.
func (c *Config) OAuth2Root() string {
	return c.RestRoot() + oauth2Path
}

// TokenURL returns the token endpoint. It is also the assertion's audience.
func (c *Config) TokenURL() string {
	return c.OAuth2Root() + tokenPath
}

// RecordRoot returns the root of the record API.
func (c *Config) RecordRoot() string {
	return c.RestRoot() + recordPath
}

// HTTPClient is a helper function that creates a new http client for the
// configured ProviderCA.
func (c *Config) HTTPClient() (*http.Client, error) {
	const op = "Config.HTTPClient"
	client, err := httpclient.New(c.ProviderCA)
	if err != nil {
		if errors.Is(err, httpclient.ErrInvalidCertificatePem) {
			return nil, fmt.Errorf("%s: could not parse CA PEM value: %w", op, ErrInvalidCACert)
		}
		return nil, fmt.Errorf("%s: could not get an http client: %w", op, err)
	}
	return client, nil
}

// configOptions is the set of available options
type configOptions struct {
	withScopes      []string
	withAlgorithm   clientassertion.RSAlgorithm
	withRestAPIRoot string
	withProviderCA  string
}

// configDefaults is a handy way to get the defaults at runtime and during
// unit tests.
func configDefaults() configOptions {
	return configOptions{
		withScopes:    []string{DefaultScope},
		withAlgorithm: DefaultAlgorithm,
	}
}

// getConfigOpts gets the defaults and applies the opt overrides passed in.
func getConfigOpts(opt ...Option) configOptions {
	opts := configDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}
