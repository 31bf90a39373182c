package model

import "time"

// FeedbackRecord is a user's correction of a predicted category.
type FeedbackRecord struct {
	Timestamp         time.Time
	ID                string
	UserID            string
	MerchantText      string
	PredictedCategory Category
	CorrectedCategory Category
}
