package enlistment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"enlistment-gateway/enlistment/application"
	"enlistment-gateway/enlistment/domain"
	"enlistment-gateway/enlistment/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `section_id,subject_id,prerequisites,room,capacity,days,start,end
A,MATH1,,G303,1,MTH,08:30,10:00
B,MATH2,MATH1,G303,5,TF,08:30,10:00
C,CS11,,G304,5,MTH,08:30,10:00
`

func newTestService(t *testing.T) (application.EnlistmentService, *infra.MemoryStatsStore) {
	t.Helper()
	cat, err := infra.LoadCatalog(strings.NewReader(testCatalog), ',')
	require.NoError(t, err)
	stats := infra.NewMemoryStatsStore()
	return application.EnlistmentService{
		Catalog: cat,
		Roster:  infra.NewRoster(),
		Stats:   stats,
	}, stats
}

func newTestServer(t *testing.T) (http.Handler, *infra.MemoryStatsStore) {
	t.Helper()
	svc, stats := newTestService(t)
	return NewHandler(svc), stats
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, "http://example"+path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeReceipt(t *testing.T, w *httptest.ResponseRecorder) receiptResponse {
	t.Helper()
	var rc receiptResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rc))
	return rc
}

func TestHandler_RegisterEnlistListCancel(t *testing.T) {
	h, stats := newTestServer(t)

	w := do(t, h, http.MethodPost, "/students", `{"id":1}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, h, http.MethodPost, "/students/1/sections/A", "")
	require.Equal(t, http.StatusCreated, w.Code)
	rc := decodeReceipt(t, w)
	assert.Equal(t, domain.OutcomeEnlisted, rc.Outcome)
	assert.NotEmpty(t, rc.ID)
	assert.Empty(t, rc.Error)

	w = do(t, h, http.MethodGet, "/students/1/sections", "")
	require.Equal(t, http.StatusOK, w.Code)
	var views []application.SectionView
	require.NoError(t, json.NewDecoder(w.Body).Decode(&views))
	require.Len(t, views, 1)
	assert.Equal(t, "A", views[0].ID)
	assert.Equal(t, 1, views[0].Enlisted)

	w = do(t, h, http.MethodDelete, "/students/1/sections/A", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.OutcomeCancelled, decodeReceipt(t, w).Outcome)

	assert.Equal(t, infra.Counters{Enlisted: 1, Cancelled: 1}, stats.Total())
}

func TestHandler_StatusMapping(t *testing.T) {
	h, _ := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/students", `{"id":1}`).Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/students", `{"id":2}`).Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/students/1/sections/A", "").Code)

	cases := []struct {
		name    string
		method  string
		path    string
		status  int
		outcome domain.Outcome
	}{
		{"full", http.MethodPost, "/students/2/sections/A", http.StatusConflict, domain.OutcomeFull},
		{"schedule conflict", http.MethodPost, "/students/1/sections/C", http.StatusConflict, domain.OutcomeScheduleConflict},
		{"missing prerequisite", http.MethodPost, "/students/2/sections/B", http.StatusUnprocessableEntity, domain.OutcomeMissingPrerequisite},
		{"unknown section", http.MethodPost, "/students/1/sections/Z", http.StatusNotFound, domain.OutcomeUnknown},
		{"unknown student", http.MethodPost, "/students/9/sections/A", http.StatusNotFound, domain.OutcomeUnknown},
		{"not enlisted", http.MethodDelete, "/students/2/sections/A", http.StatusConflict, domain.OutcomeNotEnlisted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, h, tc.method, tc.path, "")
			assert.Equal(t, tc.status, w.Code)
			rc := decodeReceipt(t, w)
			assert.Equal(t, tc.outcome, rc.Outcome)
			assert.NotEmpty(t, rc.Error)
		})
	}
}

func TestHandler_BadRequests(t *testing.T) {
	h, _ := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/students", `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/students", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/students", `{"id":-1}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/students", `{"id":1,"completed":["NOPE"]}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/students/abc/sections/A", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/students/-3/sections", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/students/3/sections", "").Code)

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/students", `{"id":1}`).Code)
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/students", `{"id":1}`).Code)
}

func TestHandler_CatalogShowsLiveCounts(t *testing.T) {
	h, _ := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/students", `{"id":1,"completed":["MATH1"]}`).Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/students/1/sections/B", "").Code)

	w := do(t, h, http.MethodGet, "/sections", "")
	require.Equal(t, http.StatusOK, w.Code)
	var views []application.SectionView
	require.NoError(t, json.NewDecoder(w.Body).Decode(&views))
	require.Len(t, views, 3)
	assert.Equal(t, "B", views[1].ID)
	assert.Equal(t, 1, views[1].Enlisted)
	assert.Equal(t, 5, views[1].Capacity)
}

func TestHandler_ConcurrentRequestsForLastSeat(t *testing.T) {
	h, stats := newTestServer(t)
	const n = 10
	for i := 0; i < n; i++ {
		body := `{"id":` + formatInt(i) + `}`
		require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/students", body).Code)
	}

	codes := make([]int, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			r := httptest.NewRequest(http.MethodPost, "http://example/students/"+formatInt(i)+"/sections/A", nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			codes[i] = w.Code
		}(i)
	}
	close(start)
	wg.Wait()

	created := 0
	for _, c := range codes {
		switch c {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
		default:
			t.Fatalf("unexpected status %d", c)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, int64(n-1), stats.ByOutcome()[domain.OutcomeFull])
}

func TestHandler_BusySectionReturns503Receipt(t *testing.T) {
	svc, stats := newTestService(t)
	gate := infra.NewSectionGate(1)
	svc.Gate = gate
	svc.GateTimeout = 10 * time.Millisecond
	h := NewHandler(svc)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/students", `{"id":1}`).Code)

	// outra tentativa ocupa a única vaga da fila de A
	leave, ok := gate.Enter(context.Background(), "A")
	require.True(t, ok)

	w := do(t, h, http.MethodPost, "/students/1/sections/A", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	rc := decodeReceipt(t, w)
	assert.Equal(t, domain.OutcomeBusy, rc.Outcome)
	assert.Equal(t, "A", rc.SectionID)
	assert.NotEmpty(t, rc.Error)

	// C tem fila própria
	assert.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/students/1/sections/C", "").Code)

	leave()
	w = do(t, h, http.MethodDelete, "/students/1/sections/C", "")
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, h, http.MethodPost, "/students/1/sections/A", "")
	assert.Equal(t, http.StatusCreated, w.Code)

	assert.Equal(t, int64(1), stats.ByOutcome()[domain.OutcomeBusy])
}

func TestHandler_SectionStats(t *testing.T) {
	h, _ := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/students", `{"id":1}`).Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/students", `{"id":2}`).Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/students/1/sections/A", "").Code)
	require.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/students/2/sections/A", "").Code)

	w := do(t, h, http.MethodGet, "/sections/A/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var st application.SectionStats
	require.NoError(t, json.NewDecoder(w.Body).Decode(&st))
	assert.Equal(t, "A", st.ID)
	assert.Equal(t, 1, st.Enlisted)
	assert.Equal(t, map[domain.Outcome]int64{domain.OutcomeEnlisted: 1, domain.OutcomeFull: 1}, st.Outcomes)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/sections/Z/stats", "").Code)
}

func TestHandler_SectionStatsWithoutReadableStore(t *testing.T) {
	svc, _ := newTestService(t)
	svc.Stats = nil
	h := NewHandler(svc)

	w := do(t, h, http.MethodGet, "/sections/A/stats", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
