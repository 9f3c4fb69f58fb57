package trend

import (
	"context"
	"fmt"
	"time"

	"stock-alerts/internal/domain/market"
	"stock-alerts/internal/domain/news"
)

// NewsIndex 查詢公司於時間區間（含邊界）內是否有新聞。
type NewsIndex interface {
	Exists(ctx context.Context, companyID string, from, to time.Time) (bool, error)
}

// Evaluator 將原始報價與前一事件轉換為已分類的價格事件。
type Evaluator struct {
	news   NewsIndex
	window time.Duration
}

// NewEvaluator 建立評估器；window <= 0 時使用預設 ±30 分鐘。
func NewEvaluator(index NewsIndex, window time.Duration) *Evaluator {
	if window <= 0 {
		window = news.DefaultWindow
	}
	return &Evaluator{
		news:   index,
		window: window,
	}
}

// Evaluate 依前一事件計算走勢、變動百分比與新聞關聯，不做任何持久化。
// prior 為同公司時間上最近的一筆事件；nil 代表首筆。
func (e *Evaluator) Evaluate(ctx context.Context, sample market.PriceSample, prior *market.PriceEvent) (market.PriceEvent, error) {
	if err := sample.Validate(); err != nil {
		return market.PriceEvent{}, err
	}

	event := market.PriceEvent{
		CompanyID: sample.CompanyID,
		Price:     sample.Price,
		Time:      sample.Time,
		Trend:     market.TrendFlat,
	}

	switch {
	case prior == nil:
		// 首筆事件：無基準可比，trend=flat、change_percent=nil、is_trend_change=false
	case prior.Price <= 0:
		event.IsTrendChange = market.TrendFlat != prior.Trend
	default:
		pct := (sample.Price - prior.Price) / prior.Price * 100
		event.ChangePercent = &pct
		switch {
		case pct > 0:
			event.Trend = market.TrendUp
		case pct < 0:
			event.Trend = market.TrendDown
		}
		event.IsTrendChange = event.Trend != prior.Trend
	}

	related, err := e.news.Exists(ctx, sample.CompanyID, sample.Time.Add(-e.window), sample.Time.Add(e.window))
	if err != nil {
		return market.PriceEvent{}, fmt.Errorf("query news window: %w", err)
	}
	event.NewsRelated = related

	return event, nil
}

// Window 回傳新聞關聯使用的對稱時間窗。
func (e *Evaluator) Window() time.Duration {
	return e.window
}
