package auth

import "golang.org/x/oauth2/clientcredentials"

// Conf holds the client credentials used to obtain broker tokens.
type Conf struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	TokenURL     string   `json:"token_url"`
	Scopes       []string `json:"scopes"`
}

// Validate reports missing fields.
func (c Conf) Validate() error {
	switch {
	case c.ClientID == "":
		return errMissing("client_id")
	case c.TokenURL == "":
		return errMissing("token_url")
	}
	return nil
}

func (c Conf) toOauth2Config() clientcredentials.Config {
	return clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.TokenURL,
		Scopes:       c.Scopes,
	}
}
