// Package google verifies Google ID tokens against the tokeninfo endpoint
// and maps the response onto a local identity assertion.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"pennywise/internal/common"
)

// DefaultTokenInfoURL is Google's token introspection endpoint.
const DefaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// Identity is the provider's assertion about the token holder.
type Identity struct {
	Sub           string
	Email         string
	Name          string
	EmailVerified bool
}

// Verifier calls the tokeninfo endpoint. BaseURL and Client are injectable
// for tests.
type Verifier struct {
	BaseURL string
	Client  *http.Client

	// TrustUnverifiedEmail controls how an absent email_verified claim is
	// interpreted: true treats it as verified, false as unverified.
	TrustUnverifiedEmail bool
}

func NewVerifier(trustUnverifiedEmail bool) *Verifier {
	return &Verifier{
		BaseURL:              DefaultTokenInfoURL,
		Client:               http.DefaultClient,
		TrustUnverifiedEmail: trustUnverifiedEmail,
	}
}

type tokenInfo struct {
	Aud           string `json:"aud"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
}

// VerifyIDToken introspects rawToken and returns the asserted identity.
// An audience that does not exactly equal clientID is Unauthorized; transport
// or decoding failures are BadRequest flavored since they indicate a token the
// provider could not vouch for.
func (v *Verifier) VerifyIDToken(ctx context.Context, clientID, rawToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		v.BaseURL+"?id_token="+url.QueryEscape(rawToken), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: tokeninfo request: %v", common.ErrorBadRequest, err)
	}

	resp, err := v.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: tokeninfo request failed: %v", common.ErrorBadRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: tokeninfo %d: %s", common.ErrorBadRequest, resp.StatusCode, body)
	}

	var info tokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: invalid tokeninfo response: %v", common.ErrorBadRequest, err)
	}

	if info.Aud != clientID {
		return nil, common.ErrorUnauthorized
	}
	if info.Email == "" {
		return nil, fmt.Errorf("%w: email not present in token", common.ErrorBadRequest)
	}

	name := info.Name
	if name == "" {
		name = "User"
	}

	verified := v.TrustUnverifiedEmail
	switch info.EmailVerified {
	case "true", "True", "1":
		verified = true
	case "false", "False", "0":
		verified = false
	}

	return &Identity{
		Sub:           info.Sub,
		Email:         info.Email,
		Name:          name,
		EmailVerified: verified,
	}, nil
}
