// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strings"
)

// TransactionType is the money direction of a categorized transaction.
type TransactionType string

// Transaction type constants.
const (
	TransactionDebit  TransactionType = "DEBIT"
	TransactionCredit TransactionType = "CREDIT"
)

// ParseTransactionType parses a transaction type case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToUpper(strings.TrimSpace(s))) {
	case TransactionDebit:
		return TransactionDebit, nil
	case TransactionCredit:
		return TransactionCredit, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// CategorizationResult is produced fresh for every categorization request.
type CategorizationResult struct {
	Category     Category
	Alternatives []Category
	Confidence   float64
	// Refined is set when a generative model replaced the rule-based guess.
	Refined bool
}
