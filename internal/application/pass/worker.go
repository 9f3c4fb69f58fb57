package pass

import (
	"context"
	"errors"
	"log"
	"time"
)

// BackgroundWorker 週期性執行巡檢。前後兩次巡檢不重疊：
// 互斥鎖在 Runner 上，手動觸發的巡檢也算在內，
// 上一輪尚未結束時該次 tick 直接略過。
type BackgroundWorker struct {
	runner   *Runner
	interval time.Duration
	stopChan chan struct{}
}

// NewBackgroundWorker 建立背景工作者；interval <= 0 時使用 30 分鐘。
func NewBackgroundWorker(runner *Runner, interval time.Duration) *BackgroundWorker {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &BackgroundWorker{
		runner:   runner,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start 啟動迴圈。
func (w *BackgroundWorker) Start() {
	log.Printf("[Worker] Starting alert pass worker with interval: %v", w.interval)
	ticker := time.NewTicker(w.interval)
	go func() {
		// 啟動後立即執行一次
		w.runOnce()

		for {
			select {
			case <-ticker.C:
				w.runOnce()
			case <-w.stopChan:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop 停止迴圈。
func (w *BackgroundWorker) Stop() {
	close(w.stopChan)
}

func (w *BackgroundWorker) runOnce() {
	ctx := context.Background()
	start := time.Now()
	result, err := w.runner.RunPassExclusive(ctx)
	if errors.Is(err, ErrPassRunning) {
		log.Printf("[Worker] previous pass still running, skipping this tick")
		return
	}
	if err != nil {
		log.Printf("[Worker] pass aborted after %v: %v", time.Since(start), err)
		return
	}
	log.Printf("[Worker] pass done in %v: companies=%d events=%d news=%d sent=%d failed=%d failures=%d",
		time.Since(start),
		result.CompaniesProcessed,
		result.EventsCreated,
		result.NewsStored,
		result.NotificationsSent,
		result.NotificationsFailed,
		len(result.Failures),
	)
}
