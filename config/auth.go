package config

import "strings"

// AuthConfig controls how the client authenticates to the backend.
// When enabled, an access token is obtained with the OAuth2 client-credentials
// grant against the issuer's discovered token endpoint.
type AuthConfig struct {
	Enabled      bool     `env:"AUTH_ENABLED"       envDefault:"false"`
	IssuerURL    string   `env:"AUTH_ISSUER_URL"`
	ClientID     string   `env:"AUTH_CLIENT_ID"`
	ClientSecret string   `env:"AUTH_CLIENT_SECRET"`
	Scopes       []string `env:"AUTH_SCOPES"        envDefault:"openid" envSeparator:" "`
}

// Sanitize disables auth when the issuer or client id is missing.
func (c *AuthConfig) Sanitize() {
	c.IssuerURL = strings.TrimSpace(c.IssuerURL)
	c.ClientID = strings.TrimSpace(c.ClientID)
	scopes := c.Scopes[:0]
	for _, s := range c.Scopes {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	c.Scopes = scopes
	if c.IssuerURL == "" || c.ClientID == "" {
		c.Enabled = false
	}
}
