package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"hirelane/api/internal/config"
)

var ErrInvalidAccessToken = errors.New("invalid access token")

// Profile is the subset of the Google userinfo response the linker needs.
type Profile struct {
	SubjectID     string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

type Client struct {
	userInfoURL string
	http        *http.Client
}

func NewClient(cfg config.GoogleConfig) *Client {
	return &Client{
		userInfoURL: cfg.UserInfoURL,
		http:        &http.Client{Timeout: cfg.Timeout},
	}
}

// FetchProfile exchanges an access token for the holder's profile. The call
// is the server-side proof of provider identity, so it always hits Google
// rather than trusting anything client-supplied.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return Profile{}, ErrInvalidAccessToken
	}
	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("userinfo http %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return Profile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if profile.SubjectID == "" || profile.Email == "" {
		return Profile{}, ErrInvalidAccessToken
	}
	return profile, nil
}
