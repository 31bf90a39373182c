package copilot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/finshare-ai/internal/llm"
)

// HistoryWindow is how many previous turns are replayed to the model.
const HistoryWindow = 5

// Chat roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Canned replies.
const (
	ReplyUnavailable = "I'm here to help with your financial questions! However, my AI capabilities are currently limited. Please try again later."
	ReplyError       = "I apologize, but I'm having trouble processing your request right now. Please try again in a moment."
	ReplyGeneral     = "I'm here to help with your financial questions and trip planning. What would you like to know more about?"
)

var spendingKeywords = []string{
	"spending", "budget", "save", "money", "expensive", "cost",
	"afford", "financial", "income", "expense", "category", "reduce",
}

// ChatMessage is one prior conversation turn.
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ChatRequest is a message to the assistant.
type ChatRequest struct {
	UserContext map[string]any
	Message     string
	UserID      string
	History     []ChatMessage
}

// ChatReply is the assistant's answer.
type ChatReply struct {
	CategoryAnalysis map[string]any `json:"category_analysis,omitempty"`
	Reply            string         `json:"reply"`
}

// Assistant answers personal finance questions.
type Assistant struct {
	gen      Generator
	spending SpendingSource
	logger   *slog.Logger
}

// NewAssistant creates an assistant. spending may be nil.
func NewAssistant(gen Generator, spending SpendingSource, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{gen: gen, spending: spending, logger: logger}
}

// Chat answers one message. It never fails; problems produce canned replies.
func (a *Assistant) Chat(ctx context.Context, req ChatRequest) ChatReply {
	if !available(a.gen) {
		return ChatReply{Reply: ReplyUnavailable, CategoryAnalysis: req.UserContext}
	}

	prompt := req.Message
	analysis := req.UserContext
	if IsSpendingQuery(req.Message) && req.UserID != "" {
		summary := fallbackSpending(ctx, a.spending, req.UserID, a.logger)
		prompt = spendingAdvicePrompt(req.Message, summary)
		if analysis == nil {
			analysis = summaryAsMap(summary)
		}
	}

	text, err := a.gen.Generate(ctx, llm.Request{Prompt: conversationPrompt(prompt, req.History)})
	if err != nil {
		a.logger.Error("co-pilot chat failed", "user_id", req.UserID, "error", err)
		return ChatReply{Reply: ReplyError, CategoryAnalysis: analysis}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return ChatReply{Reply: ReplyGeneral, CategoryAnalysis: analysis}
	}

	a.logger.Info("generated co-pilot response", "user_id", req.UserID)
	return ChatReply{Reply: text, CategoryAnalysis: analysis}
}

// IsSpendingQuery reports whether a message asks about spending or budgeting.
func IsSpendingQuery(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range spendingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func spendingAdvicePrompt(message string, summary SpendingSummary) string {
	var b strings.Builder
	b.WriteString("You are a personal finance advisor. A user is asking for spending advice.\n\n")
	if ctxJSON, err := json.MarshalIndent(summary, "", "  "); err == nil {
		b.WriteString("User's Spending Context (Last 30 Days):\n")
		b.Write(ctxJSON)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "User's Question: %q\n\n", message)
	b.WriteString("Provide 3-5 actionable, personalized tips based on their spending patterns. Be specific and practical.\n")
	return b.String()
}

func conversationPrompt(message string, history []ChatMessage) string {
	if len(history) == 0 {
		return message
	}
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}

	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for _, msg := range history {
		role := "Assistant"
		if msg.Role == RoleUser {
			role = "User"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, msg.Text)
	}
	fmt.Fprintf(&b, "\nUser: %s\nAssistant:", message)
	return b.String()
}

func summaryAsMap(summary SpendingSummary) map[string]any {
	raw, err := json.Marshal(summary)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
