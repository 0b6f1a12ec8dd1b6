package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/MaxGalant/auth-api/config"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// Profile is the subset of the Google identity the account lifecycle needs.
type Profile struct {
	Email     string
	FirstName string
	LastName  string
}

type Client interface {
	AuthCodeURL(state string) string
	FetchProfile(ctx context.Context, code string) (*Profile, error)
}

type oauthClient struct {
	cfg         *oauth2.Config
	userInfoURL string
}

func NewClient(cfg *config.Config) Client {
	return &oauthClient{
		cfg: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     googleoauth.Endpoint,
		},
		userInfoURL: userInfoURL,
	}
}

func (c *oauthClient) AuthCodeURL(state string) string {
	return c.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// FetchProfile exchanges the consent code and reads the userinfo endpoint.
// The read retries on transient failures; decode errors are permanent.
func (c *oauthClient) FetchProfile(ctx context.Context, code string) (*Profile, error) {
	token, err := c.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange google code: %w", err)
	}

	httpClient := c.cfg.Client(ctx, token)
	var profile *Profile
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		res, err := httpClient.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()
		if res.StatusCode >= 500 {
			return fmt.Errorf("google userinfo: %d", res.StatusCode)
		}
		if res.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("google userinfo: %d", res.StatusCode))
		}
		var extracted struct {
			Email      string `json:"email"`
			GivenName  string `json:"given_name"`
			FamilyName string `json:"family_name"`
		}
		if err := json.NewDecoder(res.Body).Decode(&extracted); err != nil {
			return backoff.Permanent(err)
		}
		profile = &Profile{
			Email:     extracted.Email,
			FirstName: extracted.GivenName,
			LastName:  extracted.FamilyName,
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(backoff.NewExponentialBackOff(), ctx)); err != nil {
		return nil, err
	}
	return profile, nil
}
