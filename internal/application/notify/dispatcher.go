package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	alertDomain "stock-alerts/internal/domain/alert"
	"stock-alerts/internal/domain/market"
	"stock-alerts/internal/domain/news"
)

// Mailer 寄送 HTML 電子郵件。
type Mailer interface {
	Deliver(ctx context.Context, to, subject, htmlBody string) error
}

// Ledger 寫入通知紀錄；(event, user) 已存在時回報 false 而非錯誤。
type Ledger interface {
	Record(ctx context.Context, eventID, userID int64, sentAt time.Time, delivered bool) (bool, error)
}

// Status 列舉單次寄送結果。
type Status string

const (
	StatusSent      Status = "sent"
	StatusFailed    Status = "failed"
	StatusDuplicate Status = "duplicate"
)

// Outcome 描述單次寄送結果與失敗原因。
type Outcome struct {
	Status Status
	Reason string
}

// Dispatcher 渲染警示郵件、嘗試寄送，並於寄送後寫入通知紀錄。
// 寄送失敗仍寫入紀錄，避免對無法送達的收件者無限重試；
// 紀錄寫入衝突視為已通知過（成功的 no-op）。
type Dispatcher struct {
	mailer Mailer
	ledger Ledger
	now    func() time.Time
}

// NewDispatcher 建立寄送器。
func NewDispatcher(mailer Mailer, ledger Ledger) *Dispatcher {
	return &Dispatcher{
		mailer: mailer,
		ledger: ledger,
		now:    time.Now,
	}
}

// Dispatch 對單一配對寄送一封警示郵件。同一回合內的重複配對
// 由 Matcher 的排除規則避免，這裡不做重複檢查。
func (d *Dispatcher) Dispatch(ctx context.Context, match alertDomain.Match, event market.PriceEvent, items []news.Item) (Outcome, error) {
	subject := fmt.Sprintf("Stock Alert: %s -> %s", event.CompanyID, strings.ToUpper(string(event.Trend)))
	body := renderBody(event, items)

	delivered := true
	reason := ""
	if err := d.mailer.Deliver(ctx, match.Email, subject, body); err != nil {
		delivered = false
		reason = err.Error()
		log.Printf("[Dispatch] send failed company=%s user_id=%d: %v", event.CompanyID, match.UserID, err)
	}

	inserted, err := d.ledger.Record(ctx, match.EventID, match.UserID, d.now(), delivered)
	if err != nil {
		return Outcome{Status: StatusFailed, Reason: reason}, fmt.Errorf("record notification: %w", err)
	}
	if !inserted {
		return Outcome{Status: StatusDuplicate}, nil
	}
	if !delivered {
		return Outcome{Status: StatusFailed, Reason: reason}, nil
	}
	return Outcome{Status: StatusSent}, nil
}

func renderBody(event market.PriceEvent, items []news.Item) string {
	trendColor := "gray"
	switch event.Trend {
	case market.TrendUp:
		trendColor = "green"
	case market.TrendDown:
		trendColor = "red"
	}

	var newsHTML strings.Builder
	if event.NewsRelated && len(items) > 0 {
		newsHTML.WriteString("<h3>Related News:</h3><ul>")
		for _, item := range items {
			fmt.Fprintf(&newsHTML, `<li><a href="%s" target="_blank">%s</a></li>`, item.URL, item.Text)
		}
		newsHTML.WriteString("</ul>")
	}

	return fmt.Sprintf(`<html>
  <body style="margin: 0; padding: 0; font-family: 'Segoe UI', sans-serif; background-color: #e6ecf0;">
    <div style="max-width: 600px; margin: 40px auto; border-radius: 12px; background-color: white; padding: 30px;">
      <h2 style="color: %s;">Alert: %s</h2>
      <p><strong>Trend:</strong> %s</p>
      <p><strong>Change:</strong> %s</p>
      <p><strong>Time:</strong> %s</p>
      %s
      <div style="color: #666; font-size: 0.8em; border-top: 1px solid #ddd; padding-top: 8px;">
        You are receiving this alert because you are tracking <strong>%s</strong>.
      </div>
    </div>
  </body>
</html>`,
		trendColor,
		event.CompanyID,
		string(event.Trend),
		formatChangePercent(event.ChangePercent),
		event.Time.Format("2006-01-02 15:04"),
		newsHTML.String(),
		event.CompanyID,
	)
}

func formatChangePercent(pct *float64) string {
	if pct == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *pct)
}
