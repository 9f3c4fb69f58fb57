package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	appauth "stock-alerts/internal/application/auth"
	alertDomain "stock-alerts/internal/domain/alert"
	authDomain "stock-alerts/internal/domain/auth"
	"stock-alerts/internal/domain/market"
	"stock-alerts/internal/domain/news"
)

func newUser(t *testing.T, s *Store, username, email string) int64 {
	t.Helper()
	id, err := s.Create(context.Background(), authDomain.User{
		Username:     username,
		Email:        email,
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return id
}

func TestStore_Users(t *testing.T) {
	s := NewStore()
	id := newUser(t, s, "alice", "alice@example.com")

	if _, err := s.Create(context.Background(), authDomain.User{Username: "alice", Email: "other@example.com"}); !errors.Is(err, appauth.ErrUserExists) {
		t.Errorf("duplicate username: expected ErrUserExists, got %v", err)
	}
	if _, err := s.Create(context.Background(), authDomain.User{Username: "bob", Email: "alice@example.com"}); !errors.Is(err, appauth.ErrUserExists) {
		t.Errorf("duplicate email: expected ErrUserExists, got %v", err)
	}

	u, err := s.FindByUsername(context.Background(), "alice")
	if err != nil || u.ID != id {
		t.Fatalf("find by username: %+v %v", u, err)
	}
	if _, err := s.FindByUsername(context.Background(), "ghost"); err == nil {
		t.Error("expected error for unknown username")
	}

	if err := s.UpdateEmail(context.Background(), id, "new@example.com"); err != nil {
		t.Fatalf("update email: %v", err)
	}
	u, _ = s.FindByID(context.Background(), id)
	if u.Email != "new@example.com" {
		t.Errorf("email = %s", u.Email)
	}

	other := newUser(t, s, "bob", "bob@example.com")
	if err := s.UpdateEmail(context.Background(), other, "new@example.com"); !errors.Is(err, appauth.ErrUserExists) {
		t.Errorf("taken email: expected ErrUserExists, got %v", err)
	}
}

func TestStore_Campaigns(t *testing.T) {
	s := NewStore()
	alice := newUser(t, s, "alice", "alice@example.com")
	bob := newUser(t, s, "bob", "bob@example.com")

	id, err := s.CreateCampaign(context.Background(), "ACME", alice, alertDomain.ConditionUp)
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}

	if _, err := s.CreateCampaign(context.Background(), "ACME", alice, alertDomain.ConditionAll); !errors.Is(err, alertDomain.ErrCampaignExists) {
		t.Errorf("duplicate active campaign: expected ErrCampaignExists, got %v", err)
	}
	// 另一位使用者可以追蹤同一家公司
	if _, err := s.CreateCampaign(context.Background(), "ACME", bob, alertDomain.ConditionAll); err != nil {
		t.Errorf("second user campaign: %v", err)
	}

	companies, err := s.ActiveCompanies(context.Background())
	if err != nil || len(companies) != 1 || companies[0] != "ACME" {
		t.Errorf("active companies = %v, %v", companies, err)
	}

	rules, err := s.ActiveRules(context.Background(), "ACME")
	if err != nil || len(rules) != 2 {
		t.Fatalf("active rules = %+v, %v", rules, err)
	}
	if rules[0].Email != "alice@example.com" {
		t.Errorf("rule email = %s, want owner's email joined in", rules[0].Email)
	}

	if err := s.ArchiveCampaign(context.Background(), id, bob); !errors.Is(err, alertDomain.ErrNotOwner) {
		t.Errorf("archive by non-owner: expected ErrNotOwner, got %v", err)
	}
	if err := s.ArchiveCampaign(context.Background(), id, alice); err != nil {
		t.Fatalf("archive: %v", err)
	}
	rules, _ = s.ActiveRules(context.Background(), "ACME")
	if len(rules) != 1 {
		t.Errorf("archived campaign's rules must drop out, got %d", len(rules))
	}

	// 封存後可重新建立
	if _, err := s.CreateCampaign(context.Background(), "ACME", alice, alertDomain.ConditionDown); err != nil {
		t.Errorf("recreate after archive: %v", err)
	}
}

func TestStore_ListAlertsAndCampaigns(t *testing.T) {
	s := NewStore()
	alice := newUser(t, s, "alice", "alice@example.com")
	campaignID, _ := s.CreateCampaign(context.Background(), "ACME", alice, alertDomain.ConditionUp)
	s.CreateCampaign(context.Background(), "GLOBEX", alice, alertDomain.ConditionAll)

	alerts, err := s.ListAlertsByUser(context.Background(), alice)
	if err != nil || len(alerts) != 2 {
		t.Fatalf("alerts = %+v, %v", alerts, err)
	}
	for _, a := range alerts {
		if a.Company == "" || a.Email == "" || !a.CampaignActive {
			t.Errorf("alert not enriched: %+v", a)
		}
	}

	campaigns, err := s.ListCampaignsByUser(context.Background(), alice)
	if err != nil || len(campaigns) != 2 {
		t.Fatalf("campaigns = %+v, %v", campaigns, err)
	}
	if campaigns[0].ID < campaigns[1].ID {
		t.Error("campaigns should be newest first")
	}

	company, err := s.CampaignByAlert(context.Background(), alerts[len(alerts)-1].ID)
	if err != nil {
		t.Fatalf("campaign by alert: %v", err)
	}
	if company != "ACME" && company != "GLOBEX" {
		t.Errorf("company = %s", company)
	}

	ruleID := alerts[0].ID
	if err := s.UpdateAlertCondition(context.Background(), ruleID, alice, alertDomain.ConditionDown); err != nil {
		t.Fatalf("update condition: %v", err)
	}
	if err := s.UpdateAlertCondition(context.Background(), ruleID, 999, alertDomain.ConditionUp); !errors.Is(err, alertDomain.ErrNotOwner) {
		t.Errorf("update by non-owner: expected ErrNotOwner, got %v", err)
	}
	_ = campaignID
}

func TestStore_Events(t *testing.T) {
	s := NewStore()
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	latest, err := s.Latest(context.Background(), "ACME")
	if err != nil || latest != nil {
		t.Fatalf("empty store: latest = %+v, %v", latest, err)
	}

	id1, _ := s.Append(context.Background(), market.PriceEvent{CompanyID: "ACME", Price: 100, Time: at})
	id2, _ := s.Append(context.Background(), market.PriceEvent{CompanyID: "ACME", Price: 101, Time: at})
	s.Append(context.Background(), market.PriceEvent{CompanyID: "ACME", Price: 99, Time: at.Add(-time.Hour)})
	s.Append(context.Background(), market.PriceEvent{CompanyID: "OTHER", Price: 5, Time: at.Add(time.Hour)})

	if id1 != 1 || id2 != 2 {
		t.Errorf("ids = %d, %d", id1, id2)
	}

	latest, err = s.Latest(context.Background(), "ACME")
	if err != nil || latest == nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != id2 {
		t.Errorf("equal times must prefer the later insert, got id %d", latest.ID)
	}

	events, err := s.RecentEvents(context.Background(), "ACME", 2)
	if err != nil || len(events) != 2 {
		t.Fatalf("recent = %+v, %v", events, err)
	}
	if events[0].ID != id2 {
		t.Errorf("recent[0].ID = %d, want %d", events[0].ID, id2)
	}
}

func TestStore_News(t *testing.T) {
	s := NewStore()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	item := news.Item{CompanyID: "ACME", Text: "hello", Time: at, URL: "https://example.com/1"}

	inserted, err := s.InsertItem(context.Background(), item)
	if err != nil || !inserted {
		t.Fatalf("insert: %v %v", inserted, err)
	}
	inserted, _ = s.InsertItem(context.Background(), item)
	if inserted {
		t.Error("duplicate URL must be a no-op")
	}

	s.InsertItem(context.Background(), news.Item{CompanyID: "ACME", Text: "older", Time: at.Add(-time.Hour), URL: "https://example.com/2"})

	// 邊界時間要包含在內
	items, err := s.FindNearby(context.Background(), "ACME", at, at)
	if err != nil || len(items) != 1 {
		t.Fatalf("inclusive bounds: items = %+v, %v", items, err)
	}

	items, _ = s.FindNearby(context.Background(), "ACME", at.Add(-2*time.Hour), at)
	if len(items) != 2 || !items[0].Time.After(items[1].Time) {
		t.Errorf("expected newest first, got %+v", items)
	}

	ok, err := s.Exists(context.Background(), "ACME", at.Add(-time.Minute), at.Add(time.Minute))
	if err != nil || !ok {
		t.Errorf("exists = %v, %v", ok, err)
	}
	ok, _ = s.Exists(context.Background(), "ACME", at.Add(time.Minute), at.Add(time.Hour))
	if ok {
		t.Error("expected no news in the window")
	}
}

func TestStore_NotificationLedger(t *testing.T) {
	s := NewStore()

	exists, err := s.RecordExists(context.Background(), 1, 2)
	if err != nil || exists {
		t.Fatalf("exists = %v, %v", exists, err)
	}

	inserted, err := s.Record(context.Background(), 1, 2, time.Now(), true)
	if err != nil || !inserted {
		t.Fatalf("record: %v %v", inserted, err)
	}
	inserted, _ = s.Record(context.Background(), 1, 2, time.Now(), false)
	if inserted {
		t.Error("duplicate (event, user) must be a no-op")
	}
	exists, _ = s.RecordExists(context.Background(), 1, 2)
	if !exists {
		t.Error("record should exist")
	}
}

func TestStore_ConcurrentRecordExactlyOnce(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	var mu sync.Mutex
	insertedCount := 0

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.Record(context.Background(), 7, 10, time.Now(), true)
			if err != nil {
				t.Errorf("record: %v", err)
				return
			}
			if ok {
				mu.Lock()
				insertedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if insertedCount != 1 {
		t.Fatalf("exactly one concurrent insert must win, got %d", insertedCount)
	}
}
