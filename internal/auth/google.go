package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hangaroo/backend/internal/model"
)

// ErrGoogleToken is returned when a Google ID token cannot be verified.
var ErrGoogleToken = errors.New("google authentication failed")

const defaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleVerifier validates Google ID tokens against the tokeninfo endpoint
// and extracts the identity fields needed to upsert an account.
type GoogleVerifier struct {
	clientID string
	baseURL  string
	client   *http.Client
}

// NewGoogleVerifier constructs a GoogleVerifier for the given OAuth client id.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: clientID,
		baseURL:  defaultTokenInfoURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// NewGoogleVerifierWithEndpoint is used by tests to point at a fake endpoint.
func NewGoogleVerifierWithEndpoint(clientID, baseURL string, client *http.Client) *GoogleVerifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GoogleVerifier{clientID: clientID, baseURL: baseURL, client: client}
}

type tokenInfoResponse struct {
	Aud        string `json:"aud"`
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

// Verify checks the ID token and returns the verified identity.
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*model.GoogleAccountParams, error) {
	endpoint := v.baseURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build tokeninfo request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGoogleToken, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: tokeninfo returned %d", ErrGoogleToken, resp.StatusCode)
	}

	var info tokenInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode tokeninfo: %v", ErrGoogleToken, err)
	}

	if v.clientID != "" && info.Aud != v.clientID {
		return nil, fmt.Errorf("%w: token audience mismatch", ErrGoogleToken)
	}
	if info.Email == "" || info.Sub == "" {
		return nil, fmt.Errorf("%w: incomplete identity", ErrGoogleToken)
	}

	firstName, lastName := splitName(info)
	return &model.GoogleAccountParams{
		Email:      strings.ToLower(info.Email),
		FirstName:  firstName,
		LastName:   lastName,
		GoogleID:   info.Sub,
		PictureURL: info.Picture,
	}, nil
}

func splitName(info tokenInfoResponse) (string, string) {
	if info.GivenName != "" {
		return info.GivenName, info.FamilyName
	}
	parts := strings.Fields(info.Name)
	switch len(parts) {
	case 0:
		return "Google", "User"
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
