package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"despesas/internal/core"
	applog "despesas/internal/log"
	"despesas/internal/middleware/ratelimit"
	"despesas/internal/storage"
)

const (
	msgWelcome         = "Welcome to the Expense Calculator API"
	msgValidationError = "Validation error"
	msgNotFound        = "Expense not found"
	msgDeleted         = "Expense deleted successfully"
	msgDatabaseError   = "Database error"
	msgInternalError   = "Internal server error"
	msgRateLimited     = "Rate limit exceeded. Please try again later."

	genericDatabaseError = "A database constraint was violated"
	genericInternalError = "An unexpected error occurred"
)

type recordResponse struct {
	ID           int64       `json:"id"`
	Period       core.Period `json:"period"`
	Condominio   json.Number `json:"condominio"`
	PlanoSaude   json.Number `json:"planoSaude"`
	Eletricidade json.Number `json:"eletricidade"`
	Gas          json.Number `json:"gas"`
	Internet     json.Number `json:"internet"`
	Celular      json.Number `json:"celular"`
	CreditCard   json.Number `json:"creditCard"`
	Total        json.Number `json:"total"`
	AmountToPay  json.Number `json:"amountToPay"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

type summaryResponse struct {
	Total       json.Number `json:"total"`
	AmountToPay json.Number `json:"amountToPay"`
	SplitAmount json.Number `json:"splitAmount"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type validationResponse struct {
	Message string                `json:"message"`
	Errors  core.ValidationErrors `json:"errors"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// amount renders d as a JSON number with two fixed decimals.
func amount(d decimal.Decimal) json.Number {
	return json.Number(core.FormatAmount(d))
}

func newRecordResponse(rec core.ExpenseRecord) recordResponse {
	return recordResponse{
		ID:           rec.ID,
		Period:       rec.Period,
		Condominio:   amount(rec.Condominio),
		PlanoSaude:   amount(rec.PlanoSaude),
		Eletricidade: amount(rec.Eletricidade),
		Gas:          amount(rec.Gas),
		Internet:     amount(rec.Internet),
		Celular:      amount(rec.Celular),
		CreditCard:   amount(rec.CreditCard),
		Total:        amount(rec.Total),
		AmountToPay:  amount(rec.AmountToPay),
		CreatedAt:    rec.CreatedAt.UTC(),
		UpdatedAt:    rec.UpdatedAt.UTC(),
	}
}

func newRecordResponses(recs []core.ExpenseRecord) []recordResponse {
	out := make([]recordResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, newRecordResponse(rec))
	}
	return out
}

func newSummaryResponse(sum core.Summary) summaryResponse {
	return summaryResponse{
		Total:       amount(sum.Total),
		AmountToPay: amount(sum.AmountToPay),
		SplitAmount: amount(sum.SplitAmount),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeValidation(w http.ResponseWriter, verrs core.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, validationResponse{Message: msgValidationError, Errors: verrs})
}

// writeServiceError maps an error from the service layer to a response.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := applog.FromContext(r.Context())

	var verrs core.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeValidation(w, verrs)

	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, messageResponse{Message: msgNotFound})

	case errors.Is(err, storage.ErrConstraint):
		logger.WarnContext(r.Context(), "Storage constraint violated",
			applog.NewFields().WithError(err, applog.ErrorTypeDatabase).ToSlice()...)
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: msgDatabaseError,
			Error:   s.detail(err, genericDatabaseError),
		})

	default:
		logger.ErrorContext(r.Context(), "Request failed",
			applog.NewFields().WithError(err, applog.ErrorTypeInternal).ToSlice()...)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Message: msgInternalError,
			Error:   s.detail(err, genericInternalError),
		})
	}
}

func (s *Server) detail(err error, generic string) string {
	if s.exposeErrors {
		return err.Error()
	}
	return generic
}

func (s *Server) writeRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, ratelimit.ClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, messageResponse{Message: msgRateLimited})
}
