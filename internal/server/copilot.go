package server

import (
	"net/http"
	"strings"

	"github.com/Veraticus/finshare-ai/internal/copilot"
)

type chatRequest struct {
	UserContext         map[string]any        `json:"user_context"`
	Message             string                `json:"message"`
	ConversationHistory []copilot.ChatMessage `json:"conversation_history"`
}

func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	var body chatRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(body.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	for _, msg := range body.ConversationHistory {
		if msg.Role != copilot.RoleUser && msg.Role != copilot.RoleModel {
			writeError(w, http.StatusBadRequest, "conversation_history roles must be user or model")
			return
		}
	}

	reply := s.deps.Assistant.Chat(r.Context(), copilot.ChatRequest{
		Message:     body.Message,
		History:     body.ConversationHistory,
		UserContext: body.UserContext,
		UserID:      strings.TrimSpace(r.Header.Get(UserHeader)),
	})
	writeJSON(w, http.StatusOK, reply)
}

type tripBudgetRequest struct {
	DurationDays *int   `json:"duration_days"`
	PromptText   string `json:"prompt_text"`
	Destination  string `json:"destination"`
	BudgetRange  string `json:"budget_range"`
}

func (s *Server) handleTripBudget(w http.ResponseWriter, r *http.Request) {
	var body tripBudgetRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(body.PromptText) == "" {
		writeError(w, http.StatusBadRequest, "prompt_text is required")
		return
	}

	req := copilot.TripRequest{
		PromptText:  body.PromptText,
		Destination: body.Destination,
		BudgetRange: body.BudgetRange,
	}
	if body.DurationDays != nil {
		if *body.DurationDays < 0 {
			writeError(w, http.StatusBadRequest, "duration_days must not be negative")
			return
		}
		req.DurationDays = *body.DurationDays
	}

	budget := s.deps.Budgeter.Plan(r.Context(), req)
	s.logger.Info("planned trip budget",
		"user_id", r.Header.Get(UserHeader),
		"total", budget.TotalEstimatedCost,
		"generated", budget.Generated)
	writeJSON(w, http.StatusOK, budget)
}

func (s *Server) handleCapabilities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, copilot.Describe(s.deps.Generator))
}
