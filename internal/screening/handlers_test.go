package screening

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbd888/riskscreen/internal/fanout"
	"github.com/mbd888/riskscreen/internal/signal"
)

func newTestRouter(t *testing.T, srcs ...*stubSource) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	converted := make([]fanout.Source, len(srcs))
	for i, s := range srcs {
		converted[i] = s
	}
	svc, _ := newTestService(t, converted...)

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/v1"))
	return r, svc
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_ScreenSubject(t *testing.T) {
	r, _ := newTestRouter(t, &stubSource{name: "sanctions", finding: sanctionsFinding()})

	w := doJSON(t, r, http.MethodPost, "/v1/screenings", gin.H{
		"subject": gin.H{"kind": "INDIVIDUAL", "name": "Volkov Trading House"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var rec Screening
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, KindSubject, rec.Kind)
	assert.Equal(t, 72, rec.Assessment.CompositeScore)
}

func TestHandler_ScreenSubject_ValidationErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing subject", gin.H{}},
		{"bad kind", gin.H{"subject": gin.H{"kind": "ROBOT", "name": "X"}}},
		{"individual without name", gin.H{"subject": gin.H{"kind": "INDIVIDUAL"}}},
		{"wallet without address", gin.H{"subject": gin.H{"kind": "WALLET"}}},
		{"wallet with malformed address", gin.H{"subject": gin.H{"kind": "WALLET", "walletAddress": "0x123"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/v1/screenings", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandler_ScreenTransactions(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/screenings/transactions", gin.H{
		"subject": gin.H{"kind": "ENTITY", "name": "Acme Corp"},
		"transactions": []gin.H{
			{"id": "t1", "amount": 9500, "date": "2025-03-01"},
			{"id": "t2", "amount": 9400, "date": "2025-03-02"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var rec Screening
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, KindTransactions, rec.Kind)
	assert.Equal(t, 2, rec.TransactionCount)
	assert.Len(t, rec.Alerts, 1)
}

func TestHandler_ScreenTransactions_EmptyBatch(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/screenings/transactions", gin.H{
		"subject":      gin.H{"kind": "ENTITY", "name": "Acme Corp"},
		"transactions": []gin.H{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_GetScreening(t *testing.T) {
	r, svc := newTestRouter(t, &stubSource{name: "sanctions"})

	rec, err := svc.ScreenSubject(context.Background(), signal.Subject{Kind: signal.KindIndividual, Name: "A"}, nil)
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/v1/screenings/"+rec.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got Screening
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, rec.ID, got.ID)
}

func TestHandler_GetScreening_InvalidID(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/v1/screenings/not-a-real-id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_screening_id")
}

func TestHandler_GetScreening_NotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/v1/screenings/scr_0123456789abcdef01234567", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_ListScreenings(t *testing.T) {
	r, svc := newTestRouter(t, &stubSource{name: "sanctions", finding: sanctionsFinding()})

	_, err := svc.ScreenSubject(context.Background(), signal.Subject{Kind: signal.KindIndividual, Name: "A"}, nil)
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/v1/screenings?level=HIGH&sar=true", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Screenings []Screening `json:"screenings"`
		Count      int         `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestHandler_ListScreenings_BadParams(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/v1/screenings?sar=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/v1/screenings?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/v1/screenings?limit=9999", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ListSourcesAndRules(t *testing.T) {
	r, _ := newTestRouter(t, &stubSource{name: "sanctions"}, &stubSource{name: "pep"})

	w := doJSON(t, r, http.MethodGet, "/v1/sources", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sanctions")
	assert.Contains(t, w.Body.String(), "pep")

	w = doJSON(t, r, http.MethodGet, "/v1/rules", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "R-TEST")
}
