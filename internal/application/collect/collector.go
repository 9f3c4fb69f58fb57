package collect

import (
	"context"
	"fmt"
	"log"

	"stock-alerts/internal/domain/market"
	"stock-alerts/internal/domain/news"
)

// QuoteSource 抽象化外部行情來源（行情 API、合成資料等）。
type QuoteSource interface {
	FetchQuote(ctx context.Context, companyID string) (market.PriceSample, error)
}

// NewsSource 取得公司近期新聞。
type NewsSource interface {
	FetchNews(ctx context.Context, companyID string) ([]news.Item, error)
}

// NewsStore 寫入新聞；相同 URL 雜湊的重複寫入為 no-op，回報 false。
type NewsStore interface {
	InsertItem(ctx context.Context, item news.Item) (bool, error)
}

// Collector 為單一公司抓取報價與新聞，新聞以 URL 雜湊去重後入庫。
type Collector struct {
	quotes QuoteSource
	news   NewsSource
	store  NewsStore
}

// NewCollector 建立收集器。
func NewCollector(quotes QuoteSource, source NewsSource, store NewsStore) *Collector {
	return &Collector{
		quotes: quotes,
		news:   source,
		store:  store,
	}
}

// Collect 抓取一筆報價並將近期新聞入庫，回傳報價與新入庫的新聞數。
// 行情或新聞來源不可用時回傳錯誤，由呼叫端決定略過該公司。
func (c *Collector) Collect(ctx context.Context, companyID string) (market.PriceSample, int, error) {
	sample, err := c.quotes.FetchQuote(ctx, companyID)
	if err != nil {
		return market.PriceSample{}, 0, fmt.Errorf("fetch quote for %s: %w", companyID, err)
	}

	items, err := c.news.FetchNews(ctx, companyID)
	if err != nil {
		return market.PriceSample{}, 0, fmt.Errorf("fetch news for %s: %w", companyID, err)
	}

	stored := 0
	for _, item := range items {
		if item.URL == "" {
			continue
		}
		inserted, err := c.store.InsertItem(ctx, item)
		if err != nil {
			// 單則新聞寫入失敗不中斷收集，報價仍要照常評估
			log.Printf("[Collect] store news failed company=%s url=%s: %v", companyID, item.URL, err)
			continue
		}
		if inserted {
			stored++
		}
	}

	return sample, stored, nil
}
