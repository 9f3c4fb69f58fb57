package alert

import (
	"errors"
	"fmt"
	"time"

	"stock-alerts/internal/domain/market"
)

// ErrCampaignExists 表示同一使用者已有該公司的啟用中 campaign。
var ErrCampaignExists = errors.New("campaign already exists")

// ErrNotOwner 表示資源不存在或不屬於該使用者。
var ErrNotOwner = errors.New("not found or not owned by user")

// Condition 列舉訂閱者想收到的走勢方向。
type Condition string

const (
	ConditionAll  Condition = "all"
	ConditionUp   Condition = "up"
	ConditionDown Condition = "down"
)

// Valid 檢查條件是否為支援值。
func (c Condition) Valid() bool {
	switch c {
	case ConditionAll, ConditionUp, ConditionDown:
		return true
	}
	return false
}

// Matches 判斷事件走勢是否落在條件範圍內。
func (c Condition) Matches(t market.Trend) bool {
	switch c {
	case ConditionAll:
		return true
	case ConditionUp:
		return t == market.TrendUp
	case ConditionDown:
		return t == market.TrendDown
	}
	return false
}

// Campaign 表示使用者對單一公司的追蹤活動。
type Campaign struct {
	ID        int64
	CompanyID string
	CreatedBy int64
	Active    bool
	CreatedAt time.Time
}

// Rule 為掛在 campaign 上、屬於單一使用者的警示規則。
type Rule struct {
	ID             int64
	CampaignID     int64
	UserID         int64
	Email          string
	Company        string
	Condition      Condition
	Active         bool
	CampaignActive bool
	CreatedAt      time.Time
}

// Validate 基本欄位檢查。
func (r Rule) Validate() error {
	if r.CampaignID == 0 {
		return fmt.Errorf("campaign_id is required")
	}
	if r.UserID == 0 {
		return fmt.Errorf("user_id is required")
	}
	if !r.Condition.Valid() {
		return fmt.Errorf("unsupported alert condition: %s", r.Condition)
	}
	return nil
}

// Match 為一組應收到通知的 (價格事件, 使用者) 配對。
type Match struct {
	EventID int64
	UserID  int64
	Email   string
}

// NotificationRecord 證明某價格事件已通知過某使用者，用於避免重複寄送。
type NotificationRecord struct {
	EventID   int64
	UserID    int64
	SentAt    time.Time
	Delivered bool
}
