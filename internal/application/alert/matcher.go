package alert

import (
	"context"
	"fmt"
	"log"

	alertDomain "stock-alerts/internal/domain/alert"
	"stock-alerts/internal/domain/market"
)

// RuleRegistry 提供某公司當前生效的警示規則（含訂閱者 email）。
type RuleRegistry interface {
	ActiveRules(ctx context.Context, companyID string) ([]alertDomain.Rule, error)
}

// NotificationLedger 查詢 (事件, 使用者) 是否已有通知紀錄。
type NotificationLedger interface {
	RecordExists(ctx context.Context, eventID, userID int64) (bool, error)
}

// Matcher 根據價格事件找出應收到通知的使用者集合。
type Matcher struct {
	registry RuleRegistry
	ledger   NotificationLedger
}

// NewMatcher 建立比對器。
func NewMatcher(registry RuleRegistry, ledger NotificationLedger) *Matcher {
	return &Matcher{
		registry: registry,
		ledger:   ledger,
	}
}

// Match 回傳去重後的 (事件, 使用者) 配對：
// 事件必須是走勢轉折且有新聞關聯，規則與 campaign 皆為啟用、
// 條件涵蓋該走勢，且尚無通知紀錄。同一使用者即使有多條規則命中，
// 也只產生一筆配對。
func (m *Matcher) Match(ctx context.Context, event market.PriceEvent) ([]alertDomain.Match, error) {
	if !event.IsTrendChange {
		return nil, nil
	}
	if !event.NewsRelated {
		// 無新聞關聯的轉折不通知，沿用既有行為
		return nil, nil
	}

	rules, err := m.registry.ActiveRules(ctx, event.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("list alert rules for %s: %w", event.CompanyID, err)
	}

	seen := make(map[int64]struct{}, len(rules))
	var matches []alertDomain.Match
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			continue
		}
		if !r.Active || !r.CampaignActive {
			continue
		}
		if !r.Condition.Matches(event.Trend) {
			continue
		}
		if _, dup := seen[r.UserID]; dup {
			continue
		}

		exists, err := m.ledger.RecordExists(ctx, event.ID, r.UserID)
		if err != nil {
			log.Printf("[Matcher] ledger lookup failed event_id=%d user_id=%d: %v", event.ID, r.UserID, err)
			continue
		}
		if exists {
			continue
		}

		seen[r.UserID] = struct{}{}
		matches = append(matches, alertDomain.Match{
			EventID: event.ID,
			UserID:  r.UserID,
			Email:   r.Email,
		})
	}

	return matches, nil
}
