package integration

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/smartpack/internal/api"
	"github.com/eugenenazirov/smartpack/internal/catalog"
	"github.com/eugenenazirov/smartpack/internal/engine"
	"github.com/eugenenazirov/smartpack/internal/session"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	cat := catalog.Default()
	logger := zaptest.NewLogger(t)
	store := session.NewMemoryStore(cat, engine.New(cat), session.WithLogger(logger))
	handler := api.NewHandler(cat, store)
	return api.NewRouter(handler, logger, api.WithRateLimit(0, 0))
}

func performRequest(t *testing.T, handler http.Handler, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

func TestIntegrationFlow(t *testing.T) {
	handler := newRouter(t)

	rec := performRequest(t, handler, http.MethodGet, "/api/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}

	payload, _ := json.Marshal(map[string]any{"size": 30, "seed": 2024})
	rec = performRequest(t, handler, http.MethodPost, "/api/sessions", payload, jsonHeaders)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 from session create, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		SessionID string `json:"sessionId"`
		Size      int    `json:"size"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if created.Size != 30 {
		t.Fatalf("unexpected session size %d", created.Size)
	}
	base := "/api/sessions/" + created.SessionID

	rec = performRequest(t, handler, http.MethodGet, base+"/records", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from records, got %d", rec.Code)
	}
	var records struct {
		Records []struct {
			ID       string `json:"id"`
			Material string `json:"material"`
			Recycled bool   `json:"recycled"`
		} `json:"records"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&records); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if len(records.Records) != 30 {
		t.Fatalf("expected 30 records, got %d", len(records.Records))
	}

	wantPoints := 0
	for _, r := range records.Records[:5] {
		body, _ := json.Marshal(map[string]string{"code": r.ID, "city": "Madrid"})
		rec = performRequest(t, handler, http.MethodPost, base+"/scans", body, jsonHeaders)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 from scan of %s, got %d: %s", r.ID, rec.Code, rec.Body.String())
		}
		var scan struct {
			RecordID      string   `json:"recordId"`
			Points        int      `json:"points"`
			Centers       []string `json:"centers"`
			SessionPoints int      `json:"sessionPoints"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&scan); err != nil {
			t.Fatalf("decode scan: %v", err)
		}
		if scan.RecordID != r.ID {
			t.Fatalf("scan resolved %s, want %s", scan.RecordID, r.ID)
		}

		want := engine.ReusePoints
		if engine.IsHighValueRecyclable(r.Material) {
			want = engine.RecyclablePoints
			if len(scan.Centers) == 0 {
				t.Fatalf("expected centers for recyclable %s", r.ID)
			}
		}
		if scan.Points != want {
			t.Fatalf("scan of %s awarded %d points, want %d", r.ID, scan.Points, want)
		}
		wantPoints += want
		if scan.SessionPoints != wantPoints {
			t.Fatalf("session points %d, want %d", scan.SessionPoints, wantPoints)
		}
	}

	rec = performRequest(t, handler, http.MethodGet, base+"/report", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from report, got %d", rec.Code)
	}
	var report struct {
		TotalScans      int            `json:"totalScans"`
		RecycledCount   int            `json:"recycledCount"`
		RecyclingRate   float64        `json:"recyclingRate"`
		ScansByCity     map[string]int `json:"scansByCity"`
		TotalSavingsUSD float64        `json:"totalSavingsUsd"`
		MaterialUSD     float64        `json:"materialSavingsUsd"`
		LogisticsUSD    float64        `json:"logisticsSavingsUsd"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}

	recycled := 0
	for _, r := range records.Records {
		if r.Recycled {
			recycled++
		}
	}
	if report.TotalScans != 30 || report.RecycledCount != recycled {
		t.Fatalf("report totals %d/%d, want 30/%d", report.TotalScans, report.RecycledCount, recycled)
	}
	if math.Abs(report.RecyclingRate-float64(recycled)/30) > 1e-9 {
		t.Fatalf("unexpected recycling rate %f", report.RecyclingRate)
	}
	sum := 0
	for _, n := range report.ScansByCity {
		sum += n
	}
	if sum != 30 {
		t.Fatalf("city breakdown sums to %d", sum)
	}
	if math.Abs(report.TotalSavingsUSD-(report.MaterialUSD+report.LogisticsUSD)) > 1e-9 {
		t.Fatalf("total savings %f is not material + logistics", report.TotalSavingsUSD)
	}

	rec = performRequest(t, handler, http.MethodDelete, base, nil, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 from delete, got %d", rec.Code)
	}
	rec = performRequest(t, handler, http.MethodGet, base, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestIntegrationSeedReproducibility(t *testing.T) {
	handler := newRouter(t)

	fetch := func() []byte {
		payload, _ := json.Marshal(map[string]any{"size": 15, "seed": 99})
		rec := performRequest(t, handler, http.MethodPost, "/api/sessions", payload, jsonHeaders)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		var created struct {
			SessionID string `json:"sessionId"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
			t.Fatalf("decode session: %v", err)
		}
		rec = performRequest(t, handler, http.MethodGet, "/api/sessions/"+created.SessionID+"/records", nil, nil)
		var records struct {
			Records json.RawMessage `json:"records"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&records); err != nil {
			t.Fatalf("decode records: %v", err)
		}
		return records.Records
	}

	first, second := fetch(), fetch()
	if !bytes.Equal(first, second) {
		t.Fatalf("same seed produced different datasets")
	}
}
