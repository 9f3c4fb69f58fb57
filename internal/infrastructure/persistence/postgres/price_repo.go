package postgres

import (
	"context"
	"database/sql"
	"errors"

	"stock-alerts/internal/domain/market"
)

// PriceRepo 提供價格事件的 Postgres 存取。
type PriceRepo struct {
	db *sql.DB
}

// NewPriceRepo 建立價格事件 repo。
func NewPriceRepo(db *sql.DB) *PriceRepo {
	return &PriceRepo{db: db}
}

// Append 寫入一筆價格事件並回傳資料庫產生的 id。
func (r *PriceRepo) Append(ctx context.Context, event market.PriceEvent) (int64, error) {
	const q = `
INSERT INTO prices (company_id, price, time, trend, change_percent, is_trend_change, news_related)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id;
`
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		event.CompanyID,
		event.Price,
		event.Time,
		string(event.Trend),
		nullFloat(event.ChangePercent),
		event.IsTrendChange,
		event.NewsRelated,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Latest 取同公司時間上最近的一筆事件；時間相同時取後寫入者（id 較大）。
// 查無資料時回傳 nil。
func (r *PriceRepo) Latest(ctx context.Context, companyID string) (*market.PriceEvent, error) {
	const q = `
SELECT id, company_id, price, time, trend, change_percent, is_trend_change, news_related
FROM prices
WHERE company_id = $1
ORDER BY time DESC, id DESC
LIMIT 1;
`
	var (
		event  market.PriceEvent
		trend  string
		change sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx, q, companyID).Scan(
		&event.ID,
		&event.CompanyID,
		&event.Price,
		&event.Time,
		&trend,
		&change,
		&event.IsTrendChange,
		&event.NewsRelated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	event.Trend = market.Trend(trend)
	if change.Valid {
		event.ChangePercent = &change.Float64
	}
	return &event, nil
}

// RecentEvents 取同公司最近的 limit 筆事件，依時間由新到舊排序。
func (r *PriceRepo) RecentEvents(ctx context.Context, companyID string, limit int) ([]market.PriceEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, company_id, price, time, trend, change_percent, is_trend_change, news_related
FROM prices
WHERE company_id = $1
ORDER BY time DESC, id DESC
LIMIT $2;
`
	rows, err := r.db.QueryContext(ctx, q, companyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.PriceEvent
	for rows.Next() {
		var (
			event  market.PriceEvent
			trend  string
			change sql.NullFloat64
		)
		if err := rows.Scan(
			&event.ID,
			&event.CompanyID,
			&event.Price,
			&event.Time,
			&trend,
			&change,
			&event.IsTrendChange,
			&event.NewsRelated,
		); err != nil {
			return nil, err
		}
		event.Trend = market.Trend(trend)
		if change.Valid {
			event.ChangePercent = &change.Float64
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
