package httpapi

import (
	"errors"
	"log"
	"net/http"
	"time"

	"stock-alerts/internal/application/pass"
)

// handleCollectNow 立即執行一次完整巡檢。與背景排程共用 Runner 上的
// 互斥鎖，同一時間只會有一次巡檢在跑。
func (s *Server) handleCollectNow(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result, err := s.runner.RunPassExclusive(r.Context())
	if errors.Is(err, pass.ErrPassRunning) {
		writeError(w, http.StatusConflict, errCodeConflict, "a pass is already running")
		return
	}
	if err != nil {
		log.Printf("manual pass aborted user_id=%d: %v", currentUserID(r), err)
		writeError(w, http.StatusInternalServerError, errCodeInternal, "pass aborted: "+err.Error())
		return
	}

	type failure struct {
		Company string `json:"company"`
		Stage   string `json:"stage"`
		Reason  string `json:"reason"`
	}
	failures := make([]failure, 0, len(result.Failures))
	for _, f := range result.Failures {
		failures = append(failures, failure{
			Company: f.Company,
			Stage:   string(f.Stage),
			Reason:  f.Reason,
		})
	}

	log.Printf("manual pass done user_id=%d duration=%v companies=%d sent=%d",
		currentUserID(r), time.Since(start), result.CompaniesProcessed, result.NotificationsSent)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":              true,
		"duration_seconds":     int(time.Since(start).Seconds()),
		"companies_processed":  result.CompaniesProcessed,
		"events_created":       result.EventsCreated,
		"news_stored":          result.NewsStored,
		"notifications_sent":   result.NotificationsSent,
		"notifications_failed": result.NotificationsFailed,
		"failures":             failures,
	})
}
