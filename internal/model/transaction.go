package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Transaction is a single statement line imported for bulk categorization.
type Transaction struct {
	Date         time.Time
	ID           string
	Name         string // Raw transaction description
	MerchantName string // Cleaned merchant name
	AccountID    string
	Hash         string
	Type         TransactionType
	Amount       float64
}

// MerchantText returns the best text to categorize.
func (t *Transaction) MerchantText() string {
	if t.MerchantName != "" {
		return t.MerchantName
	}
	return t.Name
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.MerchantName,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
