package controllers

import (
	"net/http"
	"pulsed/internal/models"
	"pulsed/internal/providers"
	"pulsed/internal/services"

	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 1 << 20 // 1 MB

const apiKeyHeader = "x-api-key"

type IngestController struct {
	logger   providers.Logger
	identity providers.IdentityProviderInterface
	service  services.IngestServiceInterface
}

func NewIngestController(logger providers.Logger, identity providers.IdentityProviderInterface, service services.IngestServiceInterface) *IngestController {
	return &IngestController{
		logger:   logger,
		identity: identity,
		service:  service,
	}
}

// Accept handles one activity report. The credential is resolved
// before anything else runs: a rejected key causes no side effects at
// all. On success the accepted payload is echoed back.
func (ic *IngestController) Accept(w http.ResponseWriter, r *http.Request) {
	id, err := ic.identity.VerifyAPIKey(r.Header.Get(apiKeyHeader))
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload models.Report
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	canonical, err := ic.service.Ingest(id, payload)
	if err != nil {
		ic.logger.Errorf(providers.TypePost, "Ingest failed: identity=%s err=%s", id, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ic.logger.Infof(providers.TypePost, "Ingest: identity=%s payloadSize=%d bytes", id, len(canonical))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(canonical)
}
