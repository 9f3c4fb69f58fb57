package pass

import (
	"context"
	"testing"
	"time"

	appalert "stock-alerts/internal/application/alert"
	"stock-alerts/internal/application/notify"
	"stock-alerts/internal/application/trend"
	"stock-alerts/internal/infra/memory"
)

func emptyRunner() *Runner {
	store := memory.NewStore()
	return NewRunner(store,
		stubCollector{},
		trend.NewEvaluator(store, 0),
		store,
		appalert.NewMatcher(store, store),
		notify.NewDispatcher(&recordingMailer{}, store),
		store, 0, 1)
}

func TestNewBackgroundWorker_DefaultInterval(t *testing.T) {
	w := NewBackgroundWorker(emptyRunner(), 0)
	if w.interval != 30*time.Minute {
		t.Errorf("interval = %v, want 30m", w.interval)
	}
}

func TestBackgroundWorker_StartStop(t *testing.T) {
	runner := emptyRunner()
	w := NewBackgroundWorker(runner, 5*time.Millisecond)
	w.Start()
	time.Sleep(20 * time.Millisecond)
	w.Stop()
	// Stop 之後鎖必須可再取得，代表迴圈已不再執行巡檢
	time.Sleep(10 * time.Millisecond)
	if _, err := runner.RunPassExclusive(context.Background()); err != nil {
		t.Fatalf("pass after Stop: %v", err)
	}
}

func TestBackgroundWorker_SkipsOverlappingRun(t *testing.T) {
	runner := emptyRunner()
	w := NewBackgroundWorker(runner, time.Hour)

	runner.running.Lock()
	done := make(chan struct{})
	go func() {
		w.runOnce() // 上一輪仍在進行，必須立即略過
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runOnce blocked instead of skipping an overlapping run")
	}
	runner.running.Unlock()

	// 鎖釋放後照常執行
	if _, err := runner.RunPassExclusive(context.Background()); err != nil {
		t.Fatalf("run pass: %v", err)
	}
}
