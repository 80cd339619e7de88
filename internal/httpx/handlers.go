package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AngelCh415/creator-calc/internal/enterprise"
	"github.com/AngelCh415/creator-calc/internal/metrics"
	"github.com/AngelCh415/creator-calc/internal/models"
)

func (a *api) calculate(w http.ResponseWriter, r *http.Request) {
	var in models.CalculatorInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	calc, err := a.calc.Calculate(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeData(w, http.StatusOK, calc)
}

type enterpriseRequest struct {
	models.CalculatorInput
	Options enterprise.Options `json:"options"`
}

func (a *api) calculateEnterprise(w http.ResponseWriter, r *http.Request) {
	var req enterpriseRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	calc, err := a.calc.CalculateEnterprise(r.Context(), userID(r), req.CalculatorInput, req.Options)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeData(w, http.StatusOK, calc)
}

func (a *api) staticTables(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("type") {
	case "config":
		writeData(w, http.StatusOK, a.tables.Config())
	case "benchmarks":
		writeData(w, http.StatusOK, a.tables.Benchmarks())
	default:
		writeError(w, r, a.log, &models.ValidationError{Details: []models.FieldError{
			{Field: "type", Message: "must be config or benchmarks"},
		}})
	}
}

func (a *api) listHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := a.calc.ListHistory(r.Context(), userID(r), atoiDef(q.Get("limit"), 20), atoiDef(q.Get("offset"), 0))
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeData(w, http.StatusOK, page)
}

func (a *api) clearHistory(w http.ResponseWriter, r *http.Request) {
	n, err := a.calc.ClearHistory(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeData(w, http.StatusOK, map[string]int{"cleared": n})
}

func (a *api) listSaved(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := a.calc.ListSaved(r.Context(), userID(r), atoiDef(q.Get("limit"), 20), atoiDef(q.Get("offset"), 0))
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeData(w, http.StatusOK, page)
}

type saveRequest struct {
	Name  string                 `json:"name"`
	Input models.CalculatorInput `json:"input"`
}

func (a *api) createSaved(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	saved, err := a.calc.Save(r.Context(), userID(r), req.Name, req.Input)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeData(w, http.StatusCreated, saved)
}

func (a *api) getSaved(w http.ResponseWriter, r *http.Request) {
	saved, err := a.calc.GetSaved(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeData(w, http.StatusOK, saved)
}

func (a *api) renameSaved(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	saved, err := a.calc.RenameSaved(r.Context(), userID(r), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeData(w, http.StatusOK, saved)
}

func (a *api) deleteSaved(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.calc.DeleteSaved(r.Context(), userID(r), id); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}

func (a *api) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := a.calc.Dashboard(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeData(w, http.StatusOK, d)
}

// recordMetric accepts client-side metrics. Identity and time are always
// assigned by the server.
func (a *api) recordMetric(w http.ResponseWriter, r *http.Request) {
	var m metrics.Metric
	if err := decode(w, r, &m); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	m.ID = ""
	m.Timestamp = time.Time{}
	if err := a.rec.Record(r.Context(), m); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeData(w, http.StatusAccepted, map[string]bool{"recorded": true})
}

func (a *api) metricsSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := a.rec.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeData(w, http.StatusOK, snap)
}
