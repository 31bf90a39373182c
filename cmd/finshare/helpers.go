package main

import (
	"github.com/Veraticus/finshare-ai/internal/categorizer"
	"github.com/Veraticus/finshare-ai/internal/model"
)

func requestFor(userID, text string) categorizer.Request {
	return categorizer.Request{
		MerchantText:    text,
		TransactionType: model.TransactionDebit,
		UserID:          userID,
	}
}
