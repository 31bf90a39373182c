package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/finshare-ai/internal/categorizer"
	"github.com/Veraticus/finshare-ai/internal/common"
	"github.com/Veraticus/finshare-ai/internal/metrics"
	"github.com/Veraticus/finshare-ai/internal/model"
)

const serviceName = "expense_categorization"

type categorizeRequest struct {
	Amount          *float64 `json:"amount"`
	MerchantText    string   `json:"merchant_text"`
	TransactionType string   `json:"transaction_type"`
}

type categorizeResponse struct {
	PredictedCategory     string   `json:"predicted_category"`
	AlternativeCategories []string `json:"alternative_categories"`
	ConfidenceScore       float64  `json:"confidence_score"`
	Refined               bool     `json:"refined,omitempty"`
}

func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	var body categorizeRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	merchantText := strings.TrimSpace(body.MerchantText)
	if merchantText == "" {
		writeError(w, http.StatusBadRequest, common.ErrEmptyMerchantText.Error())
		return
	}
	txType, err := model.ParseTransactionType(body.TransactionType)
	if err != nil {
		writeError(w, http.StatusBadRequest, common.ErrInvalidTransactType.Error()+": must be DEBIT or CREDIT")
		return
	}

	userID := strings.TrimSpace(r.Header.Get(UserHeader))
	result := s.deps.Categorizer.Categorize(categorizer.Request{
		MerchantText:    merchantText,
		TransactionType: txType,
		Amount:          body.Amount,
		UserID:          userID,
	})
	result = s.deps.Refiner.Refine(r.Context(), merchantText, result)

	metrics.CategorizationsTotal.WithLabelValues(string(result.Category)).Inc()
	metrics.CategorizationConfidence.Observe(result.Confidence)

	s.logger.Info("categorized transaction",
		"merchant_text", merchantText,
		"category", result.Category,
		"confidence", result.Confidence,
		"refined", result.Refined,
		"user_id", userID)

	alts := model.Strings(result.Alternatives)
	writeJSON(w, http.StatusOK, categorizeResponse{
		PredictedCategory:     string(result.Category),
		ConfidenceScore:       result.Confidence,
		AlternativeCategories: alts,
		Refined:               result.Refined,
	})
}

type feedbackRequest struct {
	UserID                string `json:"user_id"`
	MerchantText          string `json:"merchant_text"`
	PredictedCategory     string `json:"predicted_category"`
	UserCorrectedCategory string `json:"user_corrected_category"`
	Timestamp             string `json:"timestamp"`
}

type feedbackResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	ID       string `json:"id,omitempty"`
	Training bool   `json:"training"`
	Adapted  bool   `json:"adapted"`
}

// timestampLayouts are accepted for feedback timestamps, most specific first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var body feedbackRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := strings.TrimSpace(body.UserID)
	if userID == "" {
		userID = strings.TrimSpace(r.Header.Get(UserHeader))
	}
	ts, ok := parseTimestamp(body.Timestamp)
	if !ok {
		writeError(w, http.StatusBadRequest, "timestamp must be an ISO-8601 date-time")
		return
	}

	predicted := model.Category(strings.TrimSpace(body.PredictedCategory))
	corrected := model.Category(strings.TrimSpace(body.UserCorrectedCategory))
	if predicted == "" {
		writeError(w, http.StatusBadRequest, "predicted_category is required")
		return
	}
	if corrected != "" && !s.deps.Catalog.Contains(corrected) {
		writeError(w, http.StatusUnprocessableEntity, common.ErrUnknownCategory.Error()+": "+string(corrected))
		return
	}

	receipt, err := s.deps.Feedback.Record(r.Context(), model.FeedbackRecord{
		UserID:            userID,
		MerchantText:      body.MerchantText,
		PredictedCategory: predicted,
		CorrectedCategory: corrected,
		Timestamp:         ts,
	})
	switch {
	case err == nil:
	case errors.Is(err, common.ErrUnknownCategory):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrEmptyMerchantText):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		common.LogError(s.logger, err, "feedback recording failed", common.Fields{"user_id": userID})
		writeError(w, http.StatusInternalServerError, "Feedback recording failed")
		return
	}

	writeJSON(w, http.StatusOK, feedbackResponse{
		Status:   "success",
		Message:  "Feedback recorded for model improvement",
		ID:       receipt.ID,
		Training: true,
		Adapted:  receipt.Adapted,
	})
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
	TotalCount int      `json:"total_count"`
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	categories := model.Strings(s.deps.Catalog.List())
	writeJSON(w, http.StatusOK, categoriesResponse{
		Categories: categories,
		TotalCount: len(categories),
	})
}

type healthResponse struct {
	Status       string `json:"status"`
	Service      string `json:"service"`
	Available    bool   `json:"ml_categorizer_available"`
	LLMAvailable bool   `json:"llm_available"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:       "healthy",
		Service:      serviceName,
		Available:    s.deps.Categorizer.Ready(),
		LLMAvailable: s.deps.Generator != nil && s.deps.Generator.Available(),
	}
	status := http.StatusOK
	if !resp.Available {
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
