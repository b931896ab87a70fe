package enlistment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"enlistment-gateway/enlistment/application"
	"enlistment-gateway/enlistment/domain"
)

type registerRequest struct {
	ID        *int     `json:"id"`
	Completed []string `json:"completed"`
}

type receiptResponse struct {
	domain.Receipt
	Error string `json:"error,omitempty"`
}

// statusFor traduz o Outcome para status HTTP.
func statusFor(o domain.Outcome) int {
	switch o {
	case domain.OutcomeEnlisted:
		return http.StatusCreated
	case domain.OutcomeCancelled:
		return http.StatusOK
	case domain.OutcomeScheduleConflict, domain.OutcomeSubjectConflict, domain.OutcomeFull, domain.OutcomeNotEnlisted:
		return http.StatusConflict
	case domain.OutcomeMissingPrerequisite:
		return http.StatusUnprocessableEntity
	case domain.OutcomeUnknown:
		return http.StatusNotFound
	case domain.OutcomeBusy:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

type handler struct {
	svc application.EnlistmentService
}

// NewHandler monta as rotas:
//
//	POST   /students
//	GET    /students/{id}/sections
//	POST   /students/{id}/sections/{section}
//	DELETE /students/{id}/sections/{section}
//	GET    /sections
//	GET    /sections/{section}/stats
func NewHandler(svc application.EnlistmentService) http.Handler {
	h := handler{svc: svc}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /students", h.register)
	mux.HandleFunc("GET /students/{id}/sections", h.list)
	mux.HandleFunc("POST /students/{id}/sections/{section}", h.enlist)
	mux.HandleFunc("DELETE /students/{id}/sections/{section}", h.cancel)
	mux.HandleFunc("GET /sections", h.catalog)
	mux.HandleFunc("GET /sections/{section}/stats", h.stats)
	return mux
}

func studentID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

func (h handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.ID == nil {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	err := h.svc.Register(r.Context(), *req.ID, req.Completed)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]int{"id": *req.ID})
	case errors.Is(err, domain.ErrStudentExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func (h handler) list(w http.ResponseWriter, r *http.Request) {
	id, ok := studentID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid student id")
		return
	}
	views, err := h.svc.Sections(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(domain.OutcomeOf(err)), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h handler) enlist(w http.ResponseWriter, r *http.Request) {
	h.attempt(w, r, h.svc.Enlist)
}

func (h handler) cancel(w http.ResponseWriter, r *http.Request) {
	h.attempt(w, r, h.svc.Cancel)
}

func (h handler) attempt(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, studentID int, sectionID string) (domain.Receipt, error)) {
	id, ok := studentID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid student id")
		return
	}
	rc, err := op(r.Context(), id, r.PathValue("section"))
	resp := receiptResponse{Receipt: rc}
	if err != nil {
		resp.Error = err.Error()
	}
	if rc.Outcome == domain.OutcomeBusy {
		w.Header().Set("Retry-After", "1")
	}
	writeJSON(w, statusFor(rc.Outcome), resp)
}

func (h handler) catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.CatalogSections(r.Context()))
}

func (h handler) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.SectionStats(r.Context(), r.PathValue("section"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, st)
	case errors.Is(err, domain.ErrUnknownSection):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusServiceUnavailable, err.Error())
	}
}
