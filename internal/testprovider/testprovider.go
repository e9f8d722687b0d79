// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package testprovider is a local stand-in for the SuiteTalk token and
// record endpoints, which makes writing tests much easier.
package testprovider

import (
	"crypto/rsa"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

const (
	// RestPath is where the REST API root lives on the provider.
	RestPath = "/services/rest"

	tokenPath  = RestPath + "/auth/oauth2/v1/token"
	recordPath = RestPath + "/record/v1/"

	jwtBearer = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"
)

// Item is one entry of a record listing.
type Item struct {
	ID string `json:"id"`
}

// TestProvider serves the token endpoint and the record API. Token
// requests must carry a PS256 client assertion signed by the registered key.
type TestProvider struct {
	httpServer *httptest.Server

	mu            sync.Mutex
	publicKey     *rsa.PublicKey
	keyID         string
	consumerKey   string
	accessToken   string
	expiresIn     int
	tokenStatus   int
	tokenReply    string
	tokenType     string
	records       map[string][]Item
	recordStatus  int
	tokenRequests int
	lastLimit     string
	lastScopes    []string
}

// Start creates a disposable TestProvider which is stopped when the test
// finishes.
func Start(t testing.TB) *TestProvider {
	t.Helper()
	p := &TestProvider{
		accessToken: "abc123",
		expiresIn:   3600,
		tokenType:   "application/json",
		records:     map[string][]Item{},
	}
	p.httpServer = httptest.NewUnstartedServer(p)
	p.httpServer.Config.ErrorLog = log.New(io.Discard, "", 0)
	p.httpServer.Start()
	t.Cleanup(p.httpServer.Close)
	return p
}

// Stop stops the running TestProvider.
func (p *TestProvider) Stop() {
	p.httpServer.Close()
}

// RestAPIRoot returns the REST API root to configure clients with.
func (p *TestProvider) RestAPIRoot() string { return p.httpServer.URL + RestPath }

// TokenURL returns the token endpoint, which is the expected audience.
func (p *TestProvider) TokenURL() string { return p.httpServer.URL + tokenPath }

// SetClient registers the assertion issuer, its key id and public key.
func (p *TestProvider) SetClient(consumerKey, keyID string, pub *rsa.PublicKey) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.consumerKey = consumerKey
	p.keyID = keyID
	p.publicKey = pub
}

// SetAccessToken sets the token issued on success and its expires_in. An
// expiresIn of zero omits expires_in from the reply.
func (p *TestProvider) SetAccessToken(token string, expiresIn int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accessToken = token
	p.expiresIn = expiresIn
}

// SetTokenReply makes the token endpoint answer every request with status
// and the raw body, skipping assertion checks. A zero status restores the
// normal behavior.
func (p *TestProvider) SetTokenReply(status int, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokenStatus = status
	p.tokenReply = body
}

// SetTokenContentType sets the Content-Type of token endpoint replies. An
// empty ct sends no Content-Type at all.
func (p *TestProvider) SetTokenContentType(ct string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokenType = ct
}

// SetRecords sets the items listed for a record type.
func (p *TestProvider) SetRecords(recordType string, ids ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, Item{ID: id})
	}
	p.records[recordType] = items
}

// SetRecordStatus makes the record API fail with status. Zero restores it.
func (p *TestProvider) SetRecordStatus(status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recordStatus = status
}

// TokenRequests returns how many token requests were received.
func (p *TestProvider) TokenRequests() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokenRequests
}

// LastLimit returns the limit query parameter of the last record request.
func (p *TestProvider) LastLimit() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastLimit
}

// LastScopes returns the scope claim of the last accepted assertion.
func (p *TestProvider) LastScopes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastScopes
}

func (p *TestProvider) writeJSON(w http.ResponseWriter, status int, out interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(out)
}

func (p *TestProvider) writeToken(w http.ResponseWriter, status int, body []byte) {
	if p.tokenType == "" {
		// a nil value keeps net/http from sniffing one
		w.Header()["Content-Type"] = nil
	} else {
		w.Header().Set("Content-Type", p.tokenType)
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (p *TestProvider) writeTokenError(w http.ResponseWriter, status int, code, desc string) {
	body, _ := json.Marshal(map[string]string{
		"error":             code,
		"error_description": desc,
	})
	p.writeToken(w, status, body)
}

// ServeHTTP implements the test provider's http.Handler.
func (p *TestProvider) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case req.URL.Path == tokenPath:
		p.serveToken(w, req)
	case strings.HasPrefix(req.URL.Path, recordPath):
		p.serveRecords(w, req)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (p *TestProvider) serveToken(w http.ResponseWriter, req *http.Request) {
	p.tokenRequests++
	if req.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if p.tokenStatus != 0 {
		p.writeToken(w, p.tokenStatus, []byte(p.tokenReply))
		return
	}

	switch {
	case req.FormValue("grant_type") != "client_credentials":
		p.writeTokenError(w, http.StatusBadRequest, "unsupported_grant_type", "bad grant_type")
		return
	case req.FormValue("client_assertion_type") != jwtBearer:
		p.writeTokenError(w, http.StatusBadRequest, "invalid_request", "bad client_assertion_type")
		return
	}

	token, err := jwt.ParseSigned(req.FormValue("client_assertion"), []jose.SignatureAlgorithm{jose.PS256})
	if err != nil {
		p.writeTokenError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if len(token.Headers) != 1 || token.Headers[0].KeyID != p.keyID {
		p.writeTokenError(w, http.StatusUnauthorized, "invalid_client", "unknown kid")
		return
	}
	var (
		claims  jwt.Claims
		private struct {
			Scope []string `json:"scope"`
		}
	)
	if err := token.Claims(p.publicKey, &claims, &private); err != nil {
		p.writeTokenError(w, http.StatusUnauthorized, "invalid_client", err.Error())
		return
	}
	if err := claims.Validate(jwt.Expected{
		Issuer:      p.consumerKey,
		AnyAudience: jwt.Audience{p.TokenURL()},
		Time:        time.Now(),
	}); err != nil {
		p.writeTokenError(w, http.StatusUnauthorized, "invalid_grant", err.Error())
		return
	}
	if claims.Expiry == nil || claims.IssuedAt == nil ||
		claims.Expiry.Time().Sub(claims.IssuedAt.Time()) > 60*time.Minute {
		p.writeTokenError(w, http.StatusUnauthorized, "invalid_grant", "bad assertion lifetime")
		return
	}
	p.lastScopes = private.Scope

	reply := map[string]string{
		"access_token": p.accessToken,
		"token_type":   "bearer",
	}
	if p.expiresIn > 0 {
		// NetSuite sends expires_in as a string
		reply["expires_in"] = strconv.Itoa(p.expiresIn)
	}
	body, _ := json.Marshal(reply)
	p.writeToken(w, http.StatusOK, body)
}

func (p *TestProvider) serveRecords(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if req.Header.Get("Authorization") != "Bearer "+p.accessToken {
		p.writeJSON(w, http.StatusUnauthorized, map[string]string{"title": "Unauthorized"})
		return
	}
	if p.recordStatus != 0 {
		p.writeJSON(w, p.recordStatus, map[string]string{"title": http.StatusText(p.recordStatus)})
		return
	}
	p.lastLimit = req.URL.Query().Get("limit")

	recordType := strings.TrimPrefix(req.URL.Path, recordPath)
	items := p.records[recordType]
	if items == nil {
		items = []Item{}
	}
	if n, err := strconv.Atoi(p.lastLimit); err == nil && n >= 0 && n < len(items) {
		items = items[:n]
	}
	p.writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(items),
		"hasMore": false,
		"items":   items,
	})
}
