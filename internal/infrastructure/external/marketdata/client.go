package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"stock-alerts/internal/domain/market"
	"stock-alerts/internal/domain/news"
)

// Client 封裝行情供應商的 quote/news JSON API。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 建立行情客戶端。
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) call(ctx context.Context, path string, params url.Values) ([]byte, error) {
	fullURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market data api error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

type quoteResponse struct {
	Symbol        string   `json:"symbol"`
	Price         float64  `json:"price"`
	PreviousClose *float64 `json:"previousClose"`
	Open          *float64 `json:"open"`
	DayLow        *float64 `json:"dayLow"`
	DayHigh       *float64 `json:"dayHigh"`
	Volume        *int64   `json:"volume"`
	Timestamp     int64    `json:"timestamp"`
}

// FetchQuote 取得單一公司的即時報價。
func (c *Client) FetchQuote(ctx context.Context, companyID string) (market.PriceSample, error) {
	params := url.Values{}
	params.Set("symbol", companyID)
	body, err := c.call(ctx, "/v1/quote", params)
	if err != nil {
		return market.PriceSample{}, err
	}

	var q quoteResponse
	if err := json.Unmarshal(body, &q); err != nil {
		return market.PriceSample{}, fmt.Errorf("decode quote: %w", err)
	}

	sampleTime := time.Now().UTC()
	if q.Timestamp > 0 {
		sampleTime = time.Unix(q.Timestamp, 0).UTC()
	}

	return market.PriceSample{
		CompanyID: companyID,
		Price:     q.Price,
		Time:      sampleTime,
		PrevClose: q.PreviousClose,
		Open:      q.Open,
		DayLow:    q.DayLow,
		DayHigh:   q.DayHigh,
		Volume:    q.Volume,
	}, nil
}

type newsResponse struct {
	Items []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Summary     string `json:"summary"`
		Provider    string `json:"provider"`
		PublishedAt int64  `json:"publishedAt"`
	} `json:"items"`
}

// FetchNews 取得公司近期新聞。
func (c *Client) FetchNews(ctx context.Context, companyID string) ([]news.Item, error) {
	params := url.Values{}
	params.Set("symbol", companyID)
	body, err := c.call(ctx, "/v1/news", params)
	if err != nil {
		return nil, err
	}

	var nr newsResponse
	if err := json.Unmarshal(body, &nr); err != nil {
		return nil, fmt.Errorf("decode news: %w", err)
	}

	items := make([]news.Item, 0, len(nr.Items))
	for _, it := range nr.Items {
		published := time.Now().UTC()
		if it.PublishedAt > 0 {
			published = time.Unix(it.PublishedAt, 0).UTC()
		}
		items = append(items, news.Item{
			CompanyID: companyID,
			Text:      it.Title,
			Time:      published,
			URL:       it.URL,
			Summary:   it.Summary,
			Provider:  it.Provider,
		})
	}
	return items, nil
}
