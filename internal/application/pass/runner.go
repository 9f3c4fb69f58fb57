package pass

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"stock-alerts/internal/application/notify"
	alertDomain "stock-alerts/internal/domain/alert"
	"stock-alerts/internal/domain/market"
	"stock-alerts/internal/domain/news"
)

// CampaignDirectory 列出仍在追蹤中的公司。
type CampaignDirectory interface {
	ActiveCompanies(ctx context.Context) ([]string, error)
}

// EventStore 存取價格事件。Latest 回傳同公司時間上最近的一筆
// （時間相同時取後寫入者）；查無資料時回傳 nil。
type EventStore interface {
	Latest(ctx context.Context, companyID string) (*market.PriceEvent, error)
	Append(ctx context.Context, event market.PriceEvent) (int64, error)
}

// NewsFinder 查詢時間區間（含邊界）內的新聞，依時間由新到舊排序。
type NewsFinder interface {
	FindNearby(ctx context.Context, companyID string, from, to time.Time) ([]news.Item, error)
}

// Collector 為單一公司抓取報價並將新聞入庫。
type Collector interface {
	Collect(ctx context.Context, companyID string) (market.PriceSample, int, error)
}

// Evaluator 計算價格事件。
type Evaluator interface {
	Evaluate(ctx context.Context, sample market.PriceSample, prior *market.PriceEvent) (market.PriceEvent, error)
}

// Matcher 找出應收到通知的使用者。
type Matcher interface {
	Match(ctx context.Context, event market.PriceEvent) ([]alertDomain.Match, error)
}

// Dispatcher 寄送單筆通知並寫入紀錄。
type Dispatcher interface {
	Dispatch(ctx context.Context, match alertDomain.Match, event market.PriceEvent, items []news.Item) (notify.Outcome, error)
}

// Stage 標記失敗發生的流程階段。
type Stage string

const (
	StageCollect  Stage = "collect"
	StageEvaluate Stage = "evaluate"
	StagePersist  Stage = "persist"
	StageMatch    Stage = "match"
	StageDispatch Stage = "dispatch"
)

// ErrPassRunning 表示已有一次巡檢在執行中。
var ErrPassRunning = errors.New("a pass is already running")

// Failure 描述單一公司在某階段的失敗。
type Failure struct {
	Company string
	Stage   Stage
	Reason  string
}

// Result 統計一次巡檢的處理結果。
type Result struct {
	CompaniesProcessed  int
	EventsCreated       int
	NewsStored          int
	NotificationsSent   int
	NotificationsFailed int
	Failures            []Failure
}

// Runner 對所有追蹤公司執行「收集→評估→比對→寄送」流程。
// 單一公司的失敗不會中斷整個巡檢；失敗彙總於 Result.Failures。
type Runner struct {
	directory  CampaignDirectory
	collector  Collector
	evaluator  Evaluator
	events     EventStore
	matcher    Matcher
	dispatcher Dispatcher
	newsIndex  NewsFinder
	window     time.Duration
	workers    int
	running    sync.Mutex
}

// NewRunner 建立巡檢執行器；workers <= 0 時使用 3 個工作者，
// window <= 0 時使用預設 ±30 分鐘。
func NewRunner(directory CampaignDirectory, collector Collector, evaluator Evaluator, events EventStore, matcher Matcher, dispatcher Dispatcher, newsIndex NewsFinder, window time.Duration, workers int) *Runner {
	if workers <= 0 {
		workers = 3
	}
	if window <= 0 {
		window = news.DefaultWindow
	}
	return &Runner{
		directory:  directory,
		collector:  collector,
		evaluator:  evaluator,
		events:     events,
		matcher:    matcher,
		dispatcher: dispatcher,
		newsIndex:  newsIndex,
		window:     window,
		workers:    workers,
	}
}

// RunPassExclusive 保證同一時間只有一次巡檢：排程 tick 與手動觸發
// 共用同一把鎖，已有巡檢在跑時回傳 ErrPassRunning。
func (r *Runner) RunPassExclusive(ctx context.Context) (Result, error) {
	if !r.running.TryLock() {
		return Result{}, ErrPassRunning
	}
	defer r.running.Unlock()
	return r.RunPass(ctx)
}

// RunPass 執行一次完整巡檢。公司之間可並行；取消時不再派發
// 新公司，已完成的公司留下的狀態皆為一致。
func (r *Runner) RunPass(ctx context.Context) (Result, error) {
	companies, err := r.directory.ActiveCompanies(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list active companies: %w", err)
	}

	var (
		mu     sync.Mutex
		result Result
		wg     sync.WaitGroup
	)

	jobs := make(chan string)
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for company := range jobs {
				r.runCompany(ctx, company, &mu, &result)
			}
		}()
	}

feed:
	for _, company := range companies {
		select {
		case jobs <- company:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (r *Runner) runCompany(ctx context.Context, company string, mu *sync.Mutex, result *Result) {
	fail := func(stage Stage, err error) {
		log.Printf("[Pass] company=%s stage=%s: %v", company, stage, err)
		mu.Lock()
		result.Failures = append(result.Failures, Failure{Company: company, Stage: stage, Reason: err.Error()})
		mu.Unlock()
	}

	sample, stored, err := r.collector.Collect(ctx, company)
	if err != nil {
		fail(StageCollect, err)
		return
	}
	mu.Lock()
	result.NewsStored += stored
	mu.Unlock()

	prior, err := r.events.Latest(ctx, company)
	if err != nil {
		fail(StagePersist, err)
		return
	}

	event, err := r.evaluator.Evaluate(ctx, sample, prior)
	if err != nil {
		fail(StageEvaluate, err)
		return
	}

	// 事件先落地取得 id，後續的比對與通知紀錄都掛在這個 id 上
	id, err := r.events.Append(ctx, event)
	if err != nil {
		fail(StagePersist, err)
		return
	}
	event.ID = id

	mu.Lock()
	result.EventsCreated++
	mu.Unlock()

	matches, err := r.matcher.Match(ctx, event)
	if err != nil {
		fail(StageMatch, err)
		mu.Lock()
		result.CompaniesProcessed++
		mu.Unlock()
		return
	}

	var items []news.Item
	if len(matches) > 0 && event.NewsRelated {
		items, err = r.newsIndex.FindNearby(ctx, company, event.Time.Add(-r.window), event.Time.Add(r.window))
		if err != nil {
			log.Printf("[Pass] company=%s news listing failed, sending without news: %v", company, err)
			items = nil
		}
	}

	for _, match := range matches {
		outcome, err := r.dispatcher.Dispatch(ctx, match, event, items)
		if err != nil {
			fail(StageDispatch, err)
			continue
		}
		mu.Lock()
		switch outcome.Status {
		case notify.StatusSent:
			result.NotificationsSent++
		case notify.StatusFailed:
			result.NotificationsFailed++
			result.Failures = append(result.Failures, Failure{Company: company, Stage: StageDispatch, Reason: outcome.Reason})
		}
		mu.Unlock()
	}

	mu.Lock()
	result.CompaniesProcessed++
	mu.Unlock()
}
