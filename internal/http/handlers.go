package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"budgetbook/internal/analytics"
	"budgetbook/internal/codec"
	"budgetbook/internal/core"
	"budgetbook/internal/ledger"
	"budgetbook/internal/query"
	"budgetbook/internal/report"
)

const maxImportBytes = 10 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
	})
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"budget": s.ledger.Budget()})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Amount core.Money `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := s.ledger.SetBudget(r.Context(), in.Amount); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.Stats())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Stats())
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := query.Filter{
		Search:   q.Get("search"),
		Category: core.Category(q.Get("category")),
		Period:   query.Period(q.Get("period")),
		Sort:     query.Sort(q.Get("sort")),
	}
	if f.Category == "all" {
		f.Category = ""
	}
	list := query.Apply(s.ledger.Transactions(), f, s.now())
	writeJSON(w, http.StatusOK, map[string]any{
		"expenses": list,
		"count":    len(list),
	})
}

type expenseRequest struct {
	Title    string        `json:"title"`
	Amount   core.Money    `json:"amount"`
	Category core.Category `json:"category"`
	Date     string        `json:"date"`
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var in expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	var date core.Date
	if in.Date != "" {
		parsed, err := core.ParseDate(in.Date)
		if err != nil {
			writeError(w, r, core.ErrDateOutOfRange)
			return
		}
		date = parsed
	}

	tx, err := s.ledger.AddTransaction(r.Context(), in.Title, in.Amount, in.Category, date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Cap alerts ride along with the add so the client sees them right away.
	raised, err := s.alerts.CheckCaps(r.Context(), s.ledger.Transactions())
	if err != nil {
		s.logger.WarnContext(r.Context(), "Cap check failed", "error", err)
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"expense": tx,
		"alerts":  raised,
	})
}

func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}

	var in struct {
		Title    *string        `json:"title"`
		Amount   *core.Money    `json:"amount"`
		Category *core.Category `json:"category"`
		Date     *string        `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	patch := ledger.Patch{Title: in.Title, Amount: in.Amount, Category: in.Category}
	if in.Date != nil {
		parsed, err := core.ParseDate(*in.Date)
		if err != nil {
			writeError(w, r, core.ErrDateOutOfRange)
			return
		}
		patch.Date = &parsed
	}

	if err := s.ledger.EditTransaction(r.Context(), id, patch); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// cached memoizes an analytics payload keyed by the ledger revision, so any
// mutation starts a fresh key and stale entries age out of the LRU.
func (s *Server) cached(name string, compute func() any) any {
	key := fmt.Sprintf("%s@%d", name, s.ledger.Revision())
	if v, ok := s.analyticsCache.Get(key); ok {
		return v
	}
	v := compute()
	s.analyticsCache.Set(key, v)
	return v
}

func (s *Server) handleAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	payload := s.cached("summary", func() any {
		txs := s.ledger.Transactions()
		return map[string]any{
			"stats":          s.ledger.Stats(),
			"periods":        analytics.Totals(txs, s.now()),
			"categoryTotals": analytics.CategoryTotals(txs),
			"analysis":       analytics.Analyze(txs, s.now()),
		}
	})
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handlePrediction(w http.ResponseWriter, r *http.Request) {
	payload := s.cached("prediction", func() any {
		return analytics.PredictNextMonth(s.ledger.Transactions(), s.now())
	})
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleHealthScore(w http.ResponseWriter, r *http.Request) {
	goals, err := s.goals.Goals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	score := analytics.HealthScore(s.ledger.Transactions(), s.ledger.Budget(), goals, s.now())
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	caps, err := s.alerts.Caps(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	pred := analytics.PredictNextMonth(s.ledger.Transactions(), s.now())
	recs := analytics.Recommendations(pred, s.ledger.Budget(), caps)
	writeJSON(w, http.StatusOK, map[string]any{"recommendations": recs})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	out, err := codec.Export(s.ledger.Budget(), s.ledger.Transactions(), s.ledger.NextID(), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", codec.FileName(s.now())))
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unreadable request body"})
		return
	}
	doc, err := codec.Import(body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.ImportAll(r.Context(), doc.Budget, doc.Transactions, doc.NextID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.Stats())
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.ClearAll(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.goals.Goals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

func (s *Server) handleAddGoal(w http.ResponseWriter, r *http.Request) {
	var in core.SavingsGoal
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	g, err := s.goals.AddGoal(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	var in struct {
		Amount core.Money `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	g, err := s.goals.Contribute(r.Context(), id, in.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	if err := s.goals.DeleteGoal(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	templates, err := s.recurring.Templates(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

func (s *Server) handleAddRecurring(w http.ResponseWriter, r *http.Request) {
	var in core.RecurringTemplate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	t, err := s.recurring.AddTemplate(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	if err := s.recurring.DeleteTemplate(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProcessRecurring(w http.ResponseWriter, r *http.Request) {
	n, err := s.recurring.ProcessDue(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"processed": n})
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := s.alerts.Notifications(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": list})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	if err := s.alerts.MarkRead(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetCaps(w http.ResponseWriter, r *http.Request) {
	caps, err := s.alerts.Caps(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"caps": caps})
}

func (s *Server) handleSetCap(w http.ResponseWriter, r *http.Request) {
	category := core.Category(r.PathValue("category"))
	var in struct {
		Amount core.Money `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := s.alerts.SetCap(r.Context(), category, in.Amount); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, report.Monthly(s.ledger, s.now()))
}
