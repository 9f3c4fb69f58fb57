package httpapi

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	appalert "stock-alerts/internal/application/alert"
	appauth "stock-alerts/internal/application/auth"
	"stock-alerts/internal/application/collect"
	appnotify "stock-alerts/internal/application/notify"
	"stock-alerts/internal/application/pass"
	"stock-alerts/internal/application/trend"
	alertDomain "stock-alerts/internal/domain/alert"
	"stock-alerts/internal/domain/market"
	"stock-alerts/internal/infra/memory"
	authinfra "stock-alerts/internal/infrastructure/auth"
	"stock-alerts/internal/infrastructure/config"
	"stock-alerts/internal/infrastructure/external/marketdata"
	notifyinfra "stock-alerts/internal/infrastructure/notify"
	"stock-alerts/internal/infrastructure/persistence/postgres"
)

const (
	errCodeBadRequest         = "BAD_REQUEST"
	errCodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	errCodeUnauthorized       = "AUTH_UNAUTHORIZED"
	errCodeConflict           = "CONFLICT"
	errCodeNotFound           = "NOT_FOUND"
	errCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	errCodeInternal           = "INTERNAL_ERROR"
)

// SubscriptionRegistry 定義 API 層需要的訂閱存取接口。
type SubscriptionRegistry interface {
	CreateCampaign(ctx context.Context, companyID string, userID int64, condition alertDomain.Condition) (int64, error)
	ArchiveCampaign(ctx context.Context, campaignID, userID int64) error
	ListCampaignsByUser(ctx context.Context, userID int64) ([]alertDomain.Campaign, error)
	ListAlertsByUser(ctx context.Context, userID int64) ([]alertDomain.Rule, error)
	UpdateAlertCondition(ctx context.Context, alertID, userID int64, condition alertDomain.Condition) error
}

// EventReader 查詢公司最近的價格事件，供走勢查詢端點使用。
type EventReader interface {
	RecentEvents(ctx context.Context, companyID string, limit int) ([]market.PriceEvent, error)
}

// Server 封裝 HTTP 路由與依賴。
type Server struct {
	mux          *http.ServeMux
	registry     SubscriptionRegistry
	events       EventReader
	newsFinder   pass.NewsFinder
	registerUC   *appauth.RegisterUseCase
	loginUC      *appauth.LoginUseCase
	emailUC      *appauth.UpdateEmailUseCase
	tokenSvc     *authinfra.JWTIssuer
	tokenTTL     time.Duration
	runner       *pass.Runner
	worker       *pass.BackgroundWorker
	db           *sql.DB
	useSynthetic bool
	window       time.Duration
}

// NewServer 建立 API 伺服器。db 為 nil 時改用記憶體資料存儲，
// 其餘依賴（行情來源、寄送器）依組態決定實作。
func NewServer(cfg config.Config, db *sql.DB) *Server {
	var (
		registry   SubscriptionRegistry
		events     EventReader
		userRepo   appauth.UserRepository
		eventStore pass.EventStore
		newsStore  collect.NewsStore
		newsIndex  trend.NewsIndex
		newsFinder pass.NewsFinder
		rules      appalert.RuleRegistry
		ledgerRead appalert.NotificationLedger
		ledger     appnotify.Ledger
		directory  pass.CampaignDirectory
	)

	if db != nil {
		registryRepo := postgres.NewRegistryRepo(db)
		priceRepo := postgres.NewPriceRepo(db)
		newsRepo := postgres.NewNewsRepo(db)
		notifRepo := postgres.NewNotificationRepo(db)

		registry = registryRepo
		events = priceRepo
		eventStore = priceRepo
		newsStore = newsRepo
		newsIndex = newsRepo
		newsFinder = newsRepo
		rules = registryRepo
		ledgerRead = notifRepo
		ledger = notifRepo
		directory = registryRepo
		userRepo = postgres.NewAuthRepo(db)
	} else {
		store := memory.NewStore()
		registry = store
		events = store
		eventStore = store
		newsStore = store
		newsIndex = store
		newsFinder = store
		rules = store
		ledgerRead = store
		ledger = store
		directory = store
		userRepo = store
	}

	var quotes collect.QuoteSource
	var newsSource collect.NewsSource
	if cfg.Collector.UseSynthetic || cfg.Collector.MarketDataURL == "" {
		synthetic := marketdata.NewSyntheticSource(time.Now().UnixNano())
		quotes = synthetic
		newsSource = synthetic
	} else {
		client := marketdata.NewClient(cfg.Collector.MarketDataURL)
		quotes = client
		newsSource = client
	}

	var mailer appnotify.Mailer
	if cfg.SMTP.Enabled && cfg.SMTP.Host != "" {
		mailer = notifyinfra.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		log.Printf("SMTP not configured; notifications will be logged only")
		mailer = notifyinfra.NewLogMailer(log.Printf)
	}

	evaluator := trend.NewEvaluator(newsIndex, cfg.Collector.NewsWindow)
	matcher := appalert.NewMatcher(rules, ledgerRead)
	dispatcher := appnotify.NewDispatcher(mailer, ledger)
	collector := collect.NewCollector(quotes, newsSource, newsStore)
	runner := pass.NewRunner(directory, collector, evaluator, eventStore, matcher, dispatcher, newsFinder, cfg.Collector.NewsWindow, cfg.Collector.Workers)
	worker := pass.NewBackgroundWorker(runner, cfg.Collector.Interval)

	ttl := cfg.Auth.TokenTTL
	if ttl == 0 {
		ttl = 30 * time.Minute
	}
	tokenSvc := authinfra.NewJWTIssuer(cfg.Auth.Secret, ttl)
	hasher := authinfra.BcryptHasher{}

	s := &Server{
		mux:          http.NewServeMux(),
		registry:     registry,
		events:       events,
		newsFinder:   newsFinder,
		registerUC:   appauth.NewRegisterUseCase(userRepo, hasher),
		loginUC:      appauth.NewLoginUseCase(userRepo, hasher, tokenSvc),
		emailUC:      appauth.NewUpdateEmailUseCase(userRepo),
		tokenSvc:     tokenSvc,
		tokenTTL:     ttl,
		runner:       runner,
		worker:       worker,
		db:           db,
		useSynthetic: cfg.Collector.UseSynthetic || cfg.Collector.MarketDataURL == "",
		window:       evaluator.Window(),
	}
	s.registerRoutes()
	return s
}

// Handler 回傳路由處理器，供 HTTP server 掛載。
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Worker 回傳背景巡檢工作者，由進入點決定何時啟動與停止。
func (s *Server) Worker() *pass.BackgroundWorker {
	return s.worker
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/api/ping", s.wrapGet(s.handlePing))
	s.mux.Handle("/api/health", s.wrapGet(s.handleHealth))
	s.mux.Handle("/api/auth/register", s.wrapPost(s.handleRegister))
	s.mux.Handle("/api/auth/login", s.wrapPost(s.handleLogin))
	s.mux.Handle("/api/user/email", s.requireAuth(s.wrapPost(s.handleUpdateEmail)))
	s.mux.Handle("/api/campaigns", s.requireAuth(http.HandlerFunc(s.handleCampaigns)))
	s.mux.Handle("/api/campaigns/", s.requireAuth(s.wrapPost(s.handleCampaignArchive)))
	s.mux.Handle("/api/alerts", s.requireAuth(s.wrapGet(s.handleListAlerts)))
	s.mux.Handle("/api/alerts/", s.requireAuth(s.wrapPut(s.handleUpdateAlert)))
	s.mux.Handle("/api/trends/", s.requireAuth(s.wrapGet(s.handleTrends)))
	s.mux.Handle("/api/admin/collect", s.requireAuth(s.wrapPost(s.handleCollectNow)))
}
