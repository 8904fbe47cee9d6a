package providers

import (
	"errors"
	"pulsed/internal/models"
	"pulsed/internal/structures"
)

// ErrUnauthorized is returned for a missing, unknown or revoked credential.
var ErrUnauthorized = errors.New("unauthorized")

// IdentityProviderInterface resolves inbound credentials to a stable
// identity. Credential issuance lives outside the daemon; this is only
// the lookup side of that collaborator.
type IdentityProviderInterface interface {
	VerifyAPIKey(key string) (models.Identity, error)
	VerifyAccessToken(token string) (models.Identity, error)
}

type IdentityProvider struct {
	byAPIKey map[string]models.Identity
	byToken  map[string]models.Identity
}

func NewIdentityProvider(conf *structures.Config, logger Logger) IdentityProviderInterface {
	ip := &IdentityProvider{
		byAPIKey: make(map[string]models.Identity, len(conf.Agents)),
		byToken:  make(map[string]models.Identity, len(conf.Agents)),
	}
	for _, agent := range conf.Agents {
		id := models.Identity(agent.ID)
		if agent.APIKey != "" {
			ip.byAPIKey[agent.APIKey] = id
		}
		if agent.AccessToken != "" {
			ip.byToken[agent.AccessToken] = id
		}
	}
	logger.Infof(TypeApp, "Identity provider initialized: %d agents", len(conf.Agents))
	return ip
}

func (ip *IdentityProvider) VerifyAPIKey(key string) (models.Identity, error) {
	if key == "" {
		return 0, ErrUnauthorized
	}
	id, ok := ip.byAPIKey[key]
	if !ok {
		return 0, ErrUnauthorized
	}
	return id, nil
}

func (ip *IdentityProvider) VerifyAccessToken(token string) (models.Identity, error) {
	if token == "" {
		return 0, ErrUnauthorized
	}
	id, ok := ip.byToken[token]
	if !ok {
		return 0, ErrUnauthorized
	}
	return id, nil
}
