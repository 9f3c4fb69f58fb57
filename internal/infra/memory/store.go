package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	appauth "stock-alerts/internal/application/auth"
	alertDomain "stock-alerts/internal/domain/alert"
	authDomain "stock-alerts/internal/domain/auth"
	"stock-alerts/internal/domain/market"
	"stock-alerts/internal/domain/news"
)

// Store 為無資料庫模式與測試使用的記憶體資料庫。
// notifications 的 (event, user) 唯一性在鎖內保證，與資料庫約束等價。
type Store struct {
	mu            sync.RWMutex
	users         map[int64]authDomain.User
	campaigns     map[int64]alertDomain.Campaign
	rules         map[int64]alertDomain.Rule
	events        map[int64]market.PriceEvent
	newsItems     map[string]news.Item // url hash -> item
	notifications map[notifKey]alertDomain.NotificationRecord
	userSeq       int64
	campaignSeq   int64
	ruleSeq       int64
	eventSeq      int64
}

type notifKey struct {
	EventID int64
	UserID  int64
}

// NewStore 建立新的記憶體 Store 實例。
func NewStore() *Store {
	return &Store{
		users:         make(map[int64]authDomain.User),
		campaigns:     make(map[int64]alertDomain.Campaign),
		rules:         make(map[int64]alertDomain.Rule),
		events:        make(map[int64]market.PriceEvent),
		newsItems:     make(map[string]news.Item),
		notifications: make(map[notifKey]alertDomain.NotificationRecord),
	}
}

// --- UserRepository impl ---

// Create 建立使用者；username 或 email 已存在時回傳 ErrUserExists。
func (s *Store) Create(ctx context.Context, user authDomain.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return 0, appauth.ErrUserExists
		}
	}
	s.userSeq++
	user.ID = s.userSeq
	user.CreatedAt = time.Now()
	s.users[user.ID] = user
	return user.ID, nil
}

// FindByUsername 依 username 查詢使用者。
func (s *Store) FindByUsername(ctx context.Context, username string) (authDomain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return authDomain.User{}, fmt.Errorf("user not found")
}

// FindByID 依 ID 查詢使用者。
func (s *Store) FindByID(ctx context.Context, id int64) (authDomain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return authDomain.User{}, fmt.Errorf("user not found")
	}
	return u, nil
}

// UpdateEmail 更新 email；新 email 已被他人使用時回傳 ErrUserExists。
func (s *Store) UpdateEmail(ctx context.Context, userID int64, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if u.Email == email && id != userID {
			return appauth.ErrUserExists
		}
	}
	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.Email = email
	s.users[userID] = u
	return nil
}

// --- CampaignDirectory / RuleRegistry impl ---

// ActiveCompanies 列出仍有啟用中 campaign 的公司。
func (s *Store) ActiveCompanies(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := make(map[string]struct{})
	for _, c := range s.campaigns {
		if c.Active {
			set[c.CompanyID] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for company := range set {
		out = append(out, company)
	}
	sort.Strings(out)
	return out, nil
}

// ActiveRules 取某公司所有啟用中 campaign 上的啟用規則。
func (s *Store) ActiveRules(ctx context.Context, companyID string) ([]alertDomain.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []alertDomain.Rule
	for _, r := range s.rules {
		c, ok := s.campaigns[r.CampaignID]
		if !ok || c.CompanyID != companyID {
			continue
		}
		if !r.Active || !c.Active {
			continue
		}
		rule := r
		rule.CampaignActive = c.Active
		if u, ok := s.users[r.UserID]; ok {
			rule.Email = u.Email
		}
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateCampaign 建立 campaign 並自動掛上擁有者的警示規則。
func (s *Store) CreateCampaign(ctx context.Context, companyID string, userID int64, condition alertDomain.Condition) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.campaigns {
		if c.CompanyID == companyID && c.CreatedBy == userID && c.Active {
			return 0, alertDomain.ErrCampaignExists
		}
	}
	s.campaignSeq++
	campaign := alertDomain.Campaign{
		ID:        s.campaignSeq,
		CompanyID: companyID,
		CreatedBy: userID,
		Active:    true,
		CreatedAt: time.Now(),
	}
	s.campaigns[campaign.ID] = campaign

	s.ruleSeq++
	s.rules[s.ruleSeq] = alertDomain.Rule{
		ID:         s.ruleSeq,
		CampaignID: campaign.ID,
		UserID:     userID,
		Condition:  condition,
		Active:     true,
		CreatedAt:  time.Now(),
	}
	return campaign.ID, nil
}

// ArchiveCampaign 將使用者自己的 campaign 停用。
func (s *Store) ArchiveCampaign(ctx context.Context, campaignID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[campaignID]
	if !ok || c.CreatedBy != userID {
		return alertDomain.ErrNotOwner
	}
	c.Active = false
	s.campaigns[campaignID] = c
	return nil
}

// ListAlertsByUser 列出使用者的所有警示規則。
func (s *Store) ListAlertsByUser(ctx context.Context, userID int64) ([]alertDomain.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []alertDomain.Rule
	for _, r := range s.rules {
		if r.UserID != userID {
			continue
		}
		rule := r
		if c, ok := s.campaigns[r.CampaignID]; ok {
			rule.CampaignActive = c.Active
			rule.Company = c.CompanyID
		}
		if u, ok := s.users[r.UserID]; ok {
			rule.Email = u.Email
		}
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListCampaignsByUser 列出使用者建立的所有 campaign。
func (s *Store) ListCampaignsByUser(ctx context.Context, userID int64) ([]alertDomain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []alertDomain.Campaign
	for _, c := range s.campaigns {
		if c.CreatedBy == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// CampaignByAlert 取警示規則所屬的公司。
func (s *Store) CampaignByAlert(ctx context.Context, alertID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[alertID]
	if !ok {
		return "", fmt.Errorf("alert not found")
	}
	c, ok := s.campaigns[r.CampaignID]
	if !ok {
		return "", fmt.Errorf("campaign not found")
	}
	return c.CompanyID, nil
}

// UpdateAlertCondition 更新使用者自己的警示條件。
func (s *Store) UpdateAlertCondition(ctx context.Context, alertID, userID int64, condition alertDomain.Condition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[alertID]
	if !ok || r.UserID != userID {
		return alertDomain.ErrNotOwner
	}
	r.Condition = condition
	s.rules[alertID] = r
	return nil
}

// --- EventStore impl ---

// Append 寫入一筆價格事件並回傳產生的 id。
func (s *Store) Append(ctx context.Context, event market.PriceEvent) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventSeq++
	event.ID = s.eventSeq
	s.events[event.ID] = event
	return event.ID, nil
}

// Latest 取同公司時間上最近的一筆事件；時間相同時取後寫入者（id 較大）。
func (s *Store) Latest(ctx context.Context, companyID string) (*market.PriceEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *market.PriceEvent
	for id := range s.events {
		e := s.events[id]
		if e.CompanyID != companyID {
			continue
		}
		if latest == nil || e.Time.After(latest.Time) || (e.Time.Equal(latest.Time) && e.ID > latest.ID) {
			copied := e
			latest = &copied
		}
	}
	return latest, nil
}

// RecentEvents 取同公司最近的 limit 筆事件，依時間由新到舊排序。
func (s *Store) RecentEvents(ctx context.Context, companyID string, limit int) ([]market.PriceEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []market.PriceEvent
	for _, e := range s.events {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Time.Equal(out[j].Time) {
			return out[i].Time.After(out[j].Time)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- News index impl ---

// InsertItem 寫入一則新聞；相同 URL 雜湊的重複寫入為 no-op。
func (s *Store) InsertItem(ctx context.Context, item news.Item) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := item.Key()
	if _, ok := s.newsItems[key]; ok {
		return false, nil
	}
	s.newsItems[key] = item
	return true, nil
}

// FindNearby 取時間區間（含邊界）內的新聞，依時間由新到舊排序。
func (s *Store) FindNearby(ctx context.Context, companyID string, from, to time.Time) ([]news.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []news.Item
	for _, item := range s.newsItems {
		if item.CompanyID != companyID {
			continue
		}
		if item.Time.Before(from) || item.Time.After(to) {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	return out, nil
}

// Exists 判斷時間區間（含邊界）內是否至少有一則新聞。
func (s *Store) Exists(ctx context.Context, companyID string, from, to time.Time) (bool, error) {
	items, err := s.FindNearby(ctx, companyID, from, to)
	if err != nil {
		return false, err
	}
	return len(items) > 0, nil
}

// --- Notification ledger impl ---

// Record 寫入一筆通知紀錄；(event, user) 已存在時為 no-op 並回傳 false。
func (s *Store) Record(ctx context.Context, eventID, userID int64, sentAt time.Time, delivered bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := notifKey{EventID: eventID, UserID: userID}
	if _, ok := s.notifications[key]; ok {
		return false, nil
	}
	s.notifications[key] = alertDomain.NotificationRecord{
		EventID:   eventID,
		UserID:    userID,
		SentAt:    sentAt,
		Delivered: delivered,
	}
	return true, nil
}

// RecordExists 判斷 (event, user) 是否已有通知紀錄。
func (s *Store) RecordExists(ctx context.Context, eventID, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.notifications[notifKey{EventID: eventID, UserID: userID}]
	return ok, nil
}
