package web

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"audio-track-subscription/internal/domain"
	"audio-track-subscription/internal/domain/model"
	"audio-track-subscription/internal/domain/ports/repository"
)

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	totals, err := s.statsUC.Totals(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get totals")
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleAdminMonthlyStats(w http.ResponseWriter, r *http.Request) {
	months, _ := strconv.Atoi(r.URL.Query().Get("months"))
	stats, err := s.statsUC.Monthly(r.Context(), months)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get monthly stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	offset, limit := pagination(r)
	users, total, err := s.userUC.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, pagedResponse[*model.User]{
		Data: users, Total: total, Limit: limit, Offset: offset,
	})
}

func (s *Server) handleAdminListSubscriptions(w http.ResponseWriter, r *http.Request) {
	offset, limit := pagination(r)
	subs, total, err := s.adminUC.ListSubscriptions(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}
	writeJSON(w, http.StatusOK, pagedResponse[*model.Subscription]{
		Data: subs, Total: total, Limit: limit, Offset: offset,
	})
}

type subscriptionSaveRequest struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	TrackID   *int64     `json:"track_id"`
	Status    string     `json:"status"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

func (s *Server) handleAdminSaveSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscriptionSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if r.Method == http.MethodPut {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid subscription id")
			return
		}
		req.ID = id
	}
	sub := &model.Subscription{
		ID:        req.ID,
		UserID:    req.UserID,
		TrackID:   req.TrackID,
		Status:    model.SubscriptionStatus(req.Status),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := s.adminUC.SaveSubscription(r.Context(), sub); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, "invalid subscription")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "subscription not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to save subscription")
		}
		return
	}
	status := http.StatusOK
	if r.Method == http.MethodPost {
		status = http.StatusCreated
	}
	writeJSON(w, status, sub)
}

func (s *Server) handleAdminDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subscription id")
		return
	}
	if err := s.adminUC.DeleteSubscription(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "subscription not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete subscription")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdminListTransactions(w http.ResponseWriter, r *http.Request) {
	offset, limit := pagination(r)
	f := repository.TransactionFilter{
		Status: model.TransactionStatus(r.URL.Query().Get("status")),
		Email:  r.URL.Query().Get("email"),
		Offset: offset,
		Limit:  limit,
	}
	txs, total, err := s.adminUC.ListTransactions(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	writeJSON(w, http.StatusOK, pagedResponse[*model.Transaction]{
		Data: txs, Total: total, Limit: limit, Offset: offset,
	})
}

// handleAdminExportSubscriptions streams all subscription rows as CSV.
func (s *Server) handleAdminExportSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, _, err := s.adminUC.ListSubscriptions(r.Context(), 0, 10000)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to export subscriptions")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="subscriptions.csv"`)
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "user_id", "track_id", "track_title", "status", "start_date", "end_date"})
	for _, sub := range subs {
		trackID := ""
		if sub.TrackID != nil {
			trackID = strconv.FormatInt(*sub.TrackID, 10)
		}
		_ = cw.Write([]string{
			strconv.FormatInt(sub.ID, 10),
			strconv.FormatInt(sub.UserID, 10),
			trackID,
			sub.TrackTitle,
			string(sub.Status),
			fmtDate(sub.StartDate),
			fmtDate(sub.EndDate),
		})
	}
	cw.Flush()
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// handleAdminExportTransactions streams the filtered transactions as CSV.
func (s *Server) handleAdminExportTransactions(w http.ResponseWriter, r *http.Request) {
	f := repository.TransactionFilter{
		Status: model.TransactionStatus(r.URL.Query().Get("status")),
		Email:  r.URL.Query().Get("email"),
		Limit:  10000,
	}
	txs, _, err := s.adminUC.ListTransactions(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to export transactions")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"order_id", "payment_id", "receipt", "email", "amount", "currency", "status", "method", "created_at"})
	for _, t := range txs {
		_ = cw.Write([]string{
			t.OrderID,
			deref(t.PaymentID),
			t.Receipt,
			t.Email,
			fmt.Sprintf("%.2f", t.Amount),
			t.Currency,
			string(t.Status),
			deref(t.Method),
			t.CreatedAt.Format(time.RFC3339),
		})
	}
	cw.Flush()
}

type pagedResponse[T any] struct {
	Data   []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func pagination(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
