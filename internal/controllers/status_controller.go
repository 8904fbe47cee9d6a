package controllers

import (
	"errors"
	"net/http"
	"pulsed/internal/models"
	"pulsed/internal/providers"
	"pulsed/internal/services"
	"strings"
)

type StatusController struct {
	logger   providers.Logger
	identity providers.IdentityProviderInterface
	service  services.StatusServiceInterface
}

func NewStatusController(logger providers.Logger, identity providers.IdentityProviderInterface, service services.StatusServiceInterface) *StatusController {
	return &StatusController{
		logger:   logger,
		identity: identity,
		service:  service,
	}
}

// accessToken pulls the caller's token from the Authorization header
// or, for clients that cannot set headers, the token query parameter.
func accessToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// Latest serves the caller's own snapshot, authenticated by access token.
func (sc *StatusController) Latest(w http.ResponseWriter, r *http.Request) {
	id, err := sc.identity.VerifyAccessToken(accessToken(r))
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	sc.serveLatest(w, id)
}

// LatestByKey serves a snapshot to API-key clients (e.g. a status
// display device polling on behalf of its owner).
func (sc *StatusController) LatestByKey(w http.ResponseWriter, r *http.Request) {
	id, err := sc.identity.VerifyAPIKey(r.Header.Get(apiKeyHeader))
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	sc.serveLatest(w, id)
}

func (sc *StatusController) serveLatest(w http.ResponseWriter, id models.Identity) {
	data, err := sc.service.Latest(id)
	if err != nil {
		if errors.Is(err, providers.ErrCacheMiss) {
			// No snapshot yet (or expired) is not an error: render an
			// empty document.
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("{}"))
			return
		}
		sc.logger.Errorf(providers.TypeGet, "Snapshot read failed: identity=%s err=%s", id, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
