package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	alertDomain "stock-alerts/internal/domain/alert"
)

// RegistryRepo 提供 campaigns 與 alerts 的 Postgres 存取。
type RegistryRepo struct {
	db *sql.DB
}

// NewRegistryRepo 建立訂閱 registry repo。
func NewRegistryRepo(db *sql.DB) *RegistryRepo {
	return &RegistryRepo{db: db}
}

// ActiveCompanies 列出仍有啟用中 campaign 的公司。
func (r *RegistryRepo) ActiveCompanies(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT company_id FROM campaigns WHERE is_active = TRUE ORDER BY company_id;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var company string
		if err := rows.Scan(&company); err != nil {
			return nil, err
		}
		out = append(out, company)
	}
	return out, rows.Err()
}

// ActiveRules 取某公司所有啟用中 campaign 上的啟用規則（含訂閱者 email）。
func (r *RegistryRepo) ActiveRules(ctx context.Context, companyID string) ([]alertDomain.Rule, error) {
	const q = `
SELECT a.id, a.campaign_id, a.user_id, u.email, a.alert_condition, a.is_active, c.is_active
FROM alerts a
JOIN campaigns c ON a.campaign_id = c.id
JOIN users u ON a.user_id = u.id
WHERE c.company_id = $1 AND a.is_active = TRUE AND c.is_active = TRUE
ORDER BY a.id;
`
	rows, err := r.db.QueryContext(ctx, q, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []alertDomain.Rule
	for rows.Next() {
		var (
			rule      alertDomain.Rule
			condition string
		)
		if err := rows.Scan(&rule.ID, &rule.CampaignID, &rule.UserID, &rule.Email, &condition, &rule.Active, &rule.CampaignActive); err != nil {
			return nil, err
		}
		rule.Condition = alertDomain.Condition(condition)
		out = append(out, rule)
	}
	return out, rows.Err()
}

// CreateCampaign 建立 campaign 並自動掛上擁有者的 trend_change 警示規則。
// 同一使用者對同一公司已有啟用中 campaign 時回傳 ErrCampaignExists。
func (r *RegistryRepo) CreateCampaign(ctx context.Context, companyID string, userID int64, condition alertDomain.Condition) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM campaigns WHERE company_id = $1 AND created_by = $2 AND is_active = TRUE LIMIT 1;`,
		companyID, userID,
	).Scan(&existing)
	if err == nil {
		return 0, alertDomain.ErrCampaignExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	var campaignID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO campaigns (company_id, created_by, is_active, date_created) VALUES ($1, $2, TRUE, NOW()) RETURNING id;`,
		companyID, userID,
	).Scan(&campaignID)
	if err != nil {
		return 0, fmt.Errorf("insert campaign: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO alerts (campaign_id, user_id, alert_type, alert_condition, is_active, created_at) VALUES ($1, $2, 'trend_change', $3, TRUE, NOW());`,
		campaignID, userID, string(condition),
	)
	if err != nil {
		return 0, fmt.Errorf("insert alert rule: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return campaignID, nil
}

// ArchiveCampaign 將使用者自己的 campaign 停用。
func (r *RegistryRepo) ArchiveCampaign(ctx context.Context, campaignID, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE campaigns SET is_active = FALSE WHERE id = $1 AND created_by = $2;`,
		campaignID, userID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return alertDomain.ErrNotOwner
	}
	return nil
}

// ListAlertsByUser 列出使用者的所有警示規則（含公司與 campaign 狀態）。
func (r *RegistryRepo) ListAlertsByUser(ctx context.Context, userID int64) ([]alertDomain.Rule, error) {
	const q = `
SELECT a.id, a.campaign_id, a.user_id, u.email, c.company_id, a.alert_condition, a.is_active, c.is_active, a.created_at
FROM alerts a
JOIN campaigns c ON a.campaign_id = c.id
JOIN users u ON a.user_id = u.id
WHERE a.user_id = $1
ORDER BY a.created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []alertDomain.Rule
	for rows.Next() {
		var (
			rule      alertDomain.Rule
			condition string
		)
		if err := rows.Scan(&rule.ID, &rule.CampaignID, &rule.UserID, &rule.Email, &rule.Company, &condition, &rule.Active, &rule.CampaignActive, &rule.CreatedAt); err != nil {
			return nil, err
		}
		rule.Condition = alertDomain.Condition(condition)
		out = append(out, rule)
	}
	return out, rows.Err()
}

// ListCampaignsByUser 列出使用者建立的所有 campaign。
func (r *RegistryRepo) ListCampaignsByUser(ctx context.Context, userID int64) ([]alertDomain.Campaign, error) {
	const q = `
SELECT id, company_id, created_by, is_active, date_created
FROM campaigns
WHERE created_by = $1
ORDER BY date_created DESC;
`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []alertDomain.Campaign
	for rows.Next() {
		var c alertDomain.Campaign
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.CreatedBy, &c.Active, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CampaignByAlert 取警示規則所屬的公司，供 API 顯示使用。
func (r *RegistryRepo) CampaignByAlert(ctx context.Context, alertID int64) (string, error) {
	const q = `
SELECT c.company_id FROM alerts a JOIN campaigns c ON a.campaign_id = c.id WHERE a.id = $1;
`
	var company string
	if err := r.db.QueryRowContext(ctx, q, alertID).Scan(&company); err != nil {
		return "", err
	}
	return company, nil
}

// UpdateAlertCondition 更新使用者自己的警示條件。
func (r *RegistryRepo) UpdateAlertCondition(ctx context.Context, alertID, userID int64, condition alertDomain.Condition) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE alerts SET alert_condition = $1 WHERE id = $2 AND user_id = $3;`,
		string(condition), alertID, userID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return alertDomain.ErrNotOwner
	}
	return nil
}
