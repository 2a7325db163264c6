package domain

import "context"

type Service interface {
	// QueryHistory returns ledger rows newest first, capped at limit.
	QueryHistory(ctx context.Context, filter HistoryFilter, limit int) ([]StockTransaction, error)
}
