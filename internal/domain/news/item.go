package news

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DefaultWindow 為新聞關聯的對稱時間窗（事件時間 ±30 分鐘，含邊界）。
const DefaultWindow = 30 * time.Minute

// Item 描述單則公司新聞。
type Item struct {
	CompanyID string
	Text      string
	Time      time.Time
	URL       string
	Summary   string
	Provider  string
}

// Key 回傳以 URL 雜湊導出的穩定識別碼；相同 URL 視為同一則新聞。
func (i Item) Key() string {
	sum := sha256.Sum256([]byte(i.URL))
	return hex.EncodeToString(sum[:])
}
