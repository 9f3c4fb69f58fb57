package marketdata

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"stock-alerts/internal/domain/market"
	"stock-alerts/internal/domain/news"
)

// SyntheticSource 產生隨機漫步報價與模擬新聞，供無資料庫/離線模式使用。
type SyntheticSource struct {
	mu     sync.Mutex
	last   map[string]float64
	rng    *rand.Rand
	now    func() time.Time
	window time.Duration
}

// NewSyntheticSource 建立合成行情來源。
func NewSyntheticSource(seed int64) *SyntheticSource {
	return &SyntheticSource{
		last:   make(map[string]float64),
		rng:    rand.New(rand.NewSource(seed)),
		now:    time.Now,
		window: 30 * time.Minute,
	}
}

// FetchQuote 回傳該公司上一次報價附近的隨機漫步值，首次呼叫從 100 起步。
func (s *SyntheticSource) FetchQuote(ctx context.Context, companyID string) (market.PriceSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.last[companyID]
	if !ok {
		price = 100
	}
	price = price * (1 + (s.rng.Float64()-0.5)*0.04)
	if price < 1 {
		price = 1
	}
	s.last[companyID] = price

	return market.PriceSample{
		CompanyID: companyID,
		Price:     price,
		Time:      s.now().UTC(),
	}, nil
}

// FetchNews 每個時間窗產生一則固定 URL 的模擬新聞，讓去重邏輯被實際執行。
func (s *SyntheticSource) FetchNews(ctx context.Context, companyID string) ([]news.Item, error) {
	now := s.now().UTC()
	bucket := now.Truncate(s.window)
	return []news.Item{
		{
			CompanyID: companyID,
			Text:      fmt.Sprintf("Synthetic headline for %s", companyID),
			Time:      now,
			URL:       fmt.Sprintf("https://news.invalid/%s/%d", companyID, bucket.Unix()),
			Summary:   "generated item",
			Provider:  "synthetic",
		},
	}, nil
}
