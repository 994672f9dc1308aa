package store

import (
	"context"
	"fmt"

	"coinmate/internal/models"

	"github.com/lib/pq"
)

// ReportKey identifies one category over one calendar month.
type ReportKey struct {
	CategoryID string
	Year       int
	Month      int
}

func (k ReportKey) periodStart() string {
	return fmt.Sprintf("%04d-%02d-01", k.Year, k.Month)
}

type ReportStore struct {
	db DB
}

func NewReportStore(db DB) *ReportStore {
	return &ReportStore{db: db}
}

// CategoryExpenses aggregates active expense rows for every key in one
// query. Keys without matching rows are absent from the result.
func (s *ReportStore) CategoryExpenses(ctx context.Context, keys []ReportKey) ([]models.CategoryReport, error) {
	var reports []models.CategoryReport
	if len(keys) == 0 {
		return reports, nil
	}
	categoryIDs := make([]string, 0, len(keys))
	periods := make([]string, 0, len(keys))
	for _, key := range keys {
		categoryIDs = append(categoryIDs, key.CategoryID)
		periods = append(periods, key.periodStart())
	}
	err := s.db.SelectContext(ctx, &reports, `
		SELECT k.category_id::text AS category_id,
		       EXTRACT(YEAR FROM k.period_start)::int AS year,
		       EXTRACT(MONTH FROM k.period_start)::int AS month,
		       COUNT(t.id) AS total_count,
		       SUM(t.amount_cents)::bigint AS total_amount_cents,
		       ROUND(AVG(t.amount_cents))::bigint AS average_amount_cents
		FROM unnest($1::uuid[], $2::date[]) AS k(category_id, period_start)
		JOIN transaction_ledger t
		  ON t.category_id = k.category_id
		 AND t.type = 'expense'
		 AND t.archived_at IS NULL
		 AND t.transacted_at >= (k.period_start::timestamp AT TIME ZONE 'UTC')
		 AND t.transacted_at < ((k.period_start + INTERVAL '1 month') AT TIME ZONE 'UTC')
		GROUP BY k.category_id, k.period_start
	`, pq.Array(categoryIDs), pq.Array(periods))
	return reports, err
}
