package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"pulsed/internal/models"
	"pulsed/internal/providers"
	"pulsed/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
)

type mockStatusService struct {
	data map[models.Identity][]byte
	err  error
}

func (m *mockStatusService) Latest(identity models.Identity) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	data, ok := m.data[identity]
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	return data, nil
}

func newStatusTestController(svc *mockStatusService) *StatusController {
	return NewStatusController(&testutil.MockLogger{}, testIdentity(), svc)
}

func TestLatest_WithBearerToken(t *testing.T) {
	svc := &mockStatusService{data: map[models.Identity][]byte{7: []byte(`{"keystrokes":5}`)}}
	sc := newStatusTestController(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/status/latest", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rr := httptest.NewRecorder()

	sc.Latest(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"keystrokes":5}`, rr.Body.String())
}

func TestLatest_WithQueryToken(t *testing.T) {
	svc := &mockStatusService{data: map[models.Identity][]byte{7: []byte(`{"a":1}`)}}
	sc := newStatusTestController(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/status/latest?token=good-token", nil)
	rr := httptest.NewRecorder()

	sc.Latest(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"a":1}`, rr.Body.String())
}

func TestLatest_NoSnapshotRendersEmptyObject(t *testing.T) {
	sc := newStatusTestController(&mockStatusService{})

	req := httptest.NewRequest(http.MethodGet, "/api/status/latest", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rr := httptest.NewRecorder()

	sc.Latest(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "{}", rr.Body.String())
}

func TestLatest_StoreFaultIsServerError(t *testing.T) {
	sc := newStatusTestController(&mockStatusService{err: errors.New("store unavailable")})

	req := httptest.NewRequest(http.MethodGet, "/api/status/latest", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rr := httptest.NewRecorder()

	sc.Latest(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestLatest_MissingToken(t *testing.T) {
	sc := newStatusTestController(&mockStatusService{})

	req := httptest.NewRequest(http.MethodGet, "/api/status/latest", nil)
	rr := httptest.NewRecorder()

	sc.Latest(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLatestByKey_ValidKey(t *testing.T) {
	svc := &mockStatusService{data: map[models.Identity][]byte{7: []byte(`{"b":2}`)}}
	sc := newStatusTestController(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/status/latest/by-key", nil)
	req.Header.Set(apiKeyHeader, "good-key")
	rr := httptest.NewRecorder()

	sc.LatestByKey(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"b":2}`, rr.Body.String())
}

func TestLatestByKey_InvalidKey(t *testing.T) {
	sc := newStatusTestController(&mockStatusService{})

	req := httptest.NewRequest(http.MethodGet, "/api/status/latest/by-key", nil)
	req.Header.Set(apiKeyHeader, "wrong-key")
	rr := httptest.NewRecorder()

	sc.LatestByKey(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
