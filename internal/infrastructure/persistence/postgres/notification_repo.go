package postgres

import (
	"context"
	"database/sql"
	"time"
)

// NotificationRepo 提供通知紀錄的 Postgres 存取。
// (price_id, user_id) 的唯一性由資料庫約束保證，併發寫入也只會留下一筆。
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo 建立通知紀錄 repo。
func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Record 寫入一筆通知紀錄；(event, user) 已存在時為 no-op 並回傳 false。
func (r *NotificationRepo) Record(ctx context.Context, eventID, userID int64, sentAt time.Time, delivered bool) (bool, error) {
	const q = `
INSERT INTO notifications (price_id, user_id, sent_at, delivered)
VALUES ($1, $2, $3, $4)
ON CONFLICT (price_id, user_id) DO NOTHING;
`
	res, err := r.db.ExecContext(ctx, q, eventID, userID, sentAt, delivered)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// RecordExists 判斷 (event, user) 是否已有通知紀錄。
func (r *NotificationRepo) RecordExists(ctx context.Context, eventID, userID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM notifications WHERE price_id = $1 AND user_id = $2);`
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, eventID, userID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
