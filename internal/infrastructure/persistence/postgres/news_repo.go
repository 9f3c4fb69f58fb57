package postgres

import (
	"context"
	"database/sql"
	"time"

	"stock-alerts/internal/domain/news"
)

// NewsRepo 提供新聞的 Postgres 存取，寫入以 url_hash 去重。
type NewsRepo struct {
	db *sql.DB
}

// NewNewsRepo 建立新聞 repo。
func NewNewsRepo(db *sql.DB) *NewsRepo {
	return &NewsRepo{db: db}
}

// InsertItem 寫入一則新聞；url_hash 衝突時為 no-op 並回傳 false。
func (r *NewsRepo) InsertItem(ctx context.Context, item news.Item) (bool, error) {
	const q = `
INSERT INTO news_data (company_id, news_text, time, url, url_hash, summary, provider)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (url_hash) DO NOTHING;
`
	res, err := r.db.ExecContext(ctx, q,
		item.CompanyID,
		item.Text,
		item.Time,
		item.URL,
		item.Key(),
		item.Summary,
		item.Provider,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// FindNearby 取時間區間（含邊界）內的新聞，依時間由新到舊排序。
func (r *NewsRepo) FindNearby(ctx context.Context, companyID string, from, to time.Time) ([]news.Item, error) {
	const q = `
SELECT company_id, news_text, time, url, summary, provider
FROM news_data
WHERE company_id = $1 AND time BETWEEN $2 AND $3
ORDER BY time DESC;
`
	rows, err := r.db.QueryContext(ctx, q, companyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []news.Item
	for rows.Next() {
		var item news.Item
		if err := rows.Scan(&item.CompanyID, &item.Text, &item.Time, &item.URL, &item.Summary, &item.Provider); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// Exists 判斷時間區間（含邊界）內是否至少有一則新聞。
func (r *NewsRepo) Exists(ctx context.Context, companyID string, from, to time.Time) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM news_data WHERE company_id = $1 AND time BETWEEN $2 AND $3);`
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, companyID, from, to).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
