package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appalert "stock-alerts/internal/application/alert"
	appnotify "stock-alerts/internal/application/notify"
	"stock-alerts/internal/application/pass"
	"stock-alerts/internal/application/trend"
	alertDomain "stock-alerts/internal/domain/alert"
	authDomain "stock-alerts/internal/domain/auth"
	"stock-alerts/internal/domain/market"
	"stock-alerts/internal/infra/memory"
	authinfra "stock-alerts/internal/infrastructure/auth"
	notifyinfra "stock-alerts/internal/infrastructure/notify"
)

type gateCollector struct {
	entered chan struct{}
	release chan struct{}
}

func (c *gateCollector) Collect(context.Context, string) (market.PriceSample, int, error) {
	c.entered <- struct{}{}
	<-c.release
	return market.PriceSample{CompanyID: "ACME", Price: 55, Time: time.Now().UTC()}, 0, nil
}

// 手動觸發與進行中的巡檢共用同一把鎖：第二個請求要拿到 409。
func TestCollectNow_ConflictWhilePassRunning(t *testing.T) {
	store := memory.NewStore()
	userID, err := store.Create(context.Background(), authDomain.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := store.CreateCampaign(context.Background(), "ACME", userID, alertDomain.ConditionAll); err != nil {
		t.Fatalf("create campaign: %v", err)
	}

	gate := &gateCollector{entered: make(chan struct{}, 1), release: make(chan struct{})}
	runner := pass.NewRunner(store, gate,
		trend.NewEvaluator(store, 0),
		store,
		appalert.NewMatcher(store, store),
		appnotify.NewDispatcher(notifyinfra.NewLogMailer(nil), store),
		store, 0, 1)
	tokenSvc := authinfra.NewJWTIssuer("test-secret", time.Hour)

	s := &Server{mux: http.NewServeMux(), runner: runner, tokenSvc: tokenSvc, tokenTTL: time.Hour}
	s.registerRoutes()

	token, _, err := tokenSvc.Issue(context.Background(), authDomain.User{ID: userID, Username: "alice"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	doCollect := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/collect", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		s.mux.ServeHTTP(rec, req)
		return rec
	}

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() { first <- doCollect() }()
	<-gate.entered

	rec := doCollect()
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while a pass is running, got %d", rec.Code)
	}
	var body struct {
		ErrorCode string `json:"error_code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.ErrorCode != errCodeConflict {
		t.Errorf("error_code = %s, want %s", body.ErrorCode, errCodeConflict)
	}

	close(gate.release)
	if rec := <-first; rec.Code != http.StatusOK {
		t.Fatalf("first pass should finish with 200, got %d", rec.Code)
	}
}
