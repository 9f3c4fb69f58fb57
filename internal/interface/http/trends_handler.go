package httpapi

import (
	"log"
	"net/http"
	"strings"
)

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/trends/")))
	if ticker == "" || strings.Contains(ticker, "/") {
		writeError(w, http.StatusBadRequest, errCodeBadRequest, "ticker is required")
		return
	}

	limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
	if limit > 500 {
		limit = 500
	}

	events, err := s.events.RecentEvents(r.Context(), ticker, limit)
	if err != nil {
		log.Printf("trends query failed company=%s: %v", ticker, err)
		writeError(w, http.StatusInternalServerError, errCodeInternal, "internal error")
		return
	}
	if len(events) == 0 {
		writeError(w, http.StatusNotFound, errCodeNotFound, "no price events for ticker")
		return
	}

	type item struct {
		ID            int64    `json:"id"`
		Price         float64  `json:"price"`
		Time          string   `json:"time"`
		Trend         string   `json:"trend"`
		ChangePercent *float64 `json:"change_percent"`
		IsTrendChange bool     `json:"is_trend_change"`
		NewsRelated   bool     `json:"news_related"`
	}
	items := make([]item, 0, len(events))
	for _, e := range events {
		items = append(items, item{
			ID:            e.ID,
			Price:         e.Price,
			Time:          e.Time.Format("2006-01-02 15:04:05"),
			Trend:         string(e.Trend),
			ChangePercent: e.ChangePercent,
			IsTrendChange: e.IsTrendChange,
			NewsRelated:   e.NewsRelated,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"ticker":  ticker,
		"count":   len(items),
		"trends":  items,
	})
}
