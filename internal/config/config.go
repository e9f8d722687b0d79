// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package config loads the m2m.Config for the command line tool from the
// process environment, an optional .env file and an optional YAML file.
//
// Precedence, highest first: process environment, .env file, YAML file.
// Values already in the environment are never overwritten by the .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/suitetalk/keyfile"
	"github.com/hashicorp/suitetalk/m2m"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvAccountID      = "NETSUITE_ACCOUNT_ID"
	EnvCertificateID  = "NETSUITE_CLIENT_CREDENTIALS_CERTIFICATE_ID"
	EnvConsumerKey    = "NETSUITE_API_CONSUMER_KEY"
	EnvPrivateKeyPEM  = "NETSUITE_PRIVATE_KEY_PEM"
	EnvPrivateKeyFile = "NETSUITE_PRIVATE_KEY_FILE"
	EnvScopes         = "NETSUITE_SCOPES"
	EnvRestAPIRoot    = "NETSUITE_REST_API_ROOT"
	EnvCAPEM          = "NETSUITE_CA_PEM"
)

// DefaultEnvFile is read when present; it is not an error for it to be
// missing.
const DefaultEnvFile = ".env"

var ErrMissingSetting = errors.New("required setting is missing")

// Settings are the raw values, as found in the YAML file.
type Settings struct {
	AccountID      string   `yaml:"account_id"`
	CertificateID  string   `yaml:"certificate_id"`
	ConsumerKey    string   `yaml:"consumer_key"`
	PrivateKeyPEM  string   `yaml:"private_key_pem"`
	PrivateKeyFile string   `yaml:"private_key_file"`
	Scopes         []string `yaml:"scopes"`
	RestAPIRoot    string   `yaml:"rest_api_root"`
	CAPEM          string   `yaml:"ca_pem"`
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load builds a Config. configFile may be empty. envFile may be empty, in
// which case DefaultEnvFile is tried.
func Load(configFile, envFile string) (*m2m.Config, error) {
	return LoadWith(configFile, envFile, os.LookupEnv)
}

// LoadWith is Load with an explicit environment lookup.
func LoadWith(configFile, envFile string, lookup LookupFunc) (*m2m.Config, error) {
	const op = "config.Load"
	var s Settings
	if configFile != "" {
		fromFile, err := LoadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s = *fromFile
	}

	dotenv, err := readEnvFile(envFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	fromEnv := func(key string) string {
		v, _ := lookup(key)
		return v
	}
	get := func(key string) string {
		if v := fromEnv(key); v != "" {
			return v
		}
		return dotenv[key]
	}

	overlay(&s.AccountID, get(EnvAccountID))
	overlay(&s.CertificateID, get(EnvCertificateID))
	overlay(&s.ConsumerKey, get(EnvConsumerKey))
	overlay(&s.RestAPIRoot, get(EnvRestAPIRoot))
	overlay(&s.CAPEM, get(EnvCAPEM))
	if v := get(EnvScopes); v != "" {
		s.Scopes = splitList(v)
	}

	// The key comes from the highest source naming one; PEM beats file only
	// within that source.
	for _, src := range []func(string) string{
		func(key string) string { return dotenv[key] },
		fromEnv,
	} {
		if pem, file := src(EnvPrivateKeyPEM), src(EnvPrivateKeyFile); pem != "" || file != "" {
			s.PrivateKeyPEM, s.PrivateKeyFile = pem, file
		}
	}

	c, err := s.Config()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// LoadFile reads Settings from a YAML file.
func LoadFile(path string) (*Settings, error) {
	const op = "config.LoadFile"
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read config file: %w", op, err)
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%s: failed to parse config file: %w", op, err)
	}
	return &s, nil
}

// Config validates the settings and converts them to an m2m.Config. Every
// missing required setting is reported.
func (s *Settings) Config() (*m2m.Config, error) {
	const op = "Settings.Config"
	var result *multierror.Error
	missing := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			result = multierror.Append(result, fmt.Errorf("%s: %w", name, ErrMissingSetting))
		}
	}
	missing(EnvAccountID, s.AccountID)
	missing(EnvCertificateID, s.CertificateID)
	missing(EnvConsumerKey, s.ConsumerKey)

	pem := s.PrivateKeyPEM
	if pem == "" && s.PrivateKeyFile != "" {
		var err error
		if pem, err = keyfile.LoadFile(s.PrivateKeyFile); err != nil {
			result = multierror.Append(result, err)
		}
	} else {
		missing(EnvPrivateKeyPEM, pem)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	opts := []m2m.Option{
		m2m.WithRestAPIRoot(s.RestAPIRoot),
		m2m.WithProviderCA(s.CAPEM),
	}
	if len(s.Scopes) > 0 {
		opts = append(opts, m2m.WithScopes(s.Scopes...))
	}
	c, err := m2m.NewConfig(s.AccountID, s.CertificateID, s.ConsumerKey, m2m.PrivateKey(pem), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func readEnvFile(path string) (map[string]string, error) {
	const op = "readEnvFile"
	required := path != ""
	if !required {
		path = DefaultEnvFile
	}
	m, err := godotenv.Read(path)
	switch {
	case err == nil:
		return m, nil
	case !required && errors.Is(err, fs.ErrNotExist):
		return map[string]string{}, nil
	default:
		return nil, fmt.Errorf("%s: %w", op, err)
	}
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
