package market

import (
	"errors"
	"fmt"
	"time"
)

// Trend 列舉價格走勢分類。
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// PriceSample 描述外部行情來源取得的原始報價，寫入前不落地。
type PriceSample struct {
	CompanyID string
	Price     float64
	Time      time.Time
	PrevClose *float64
	Open      *float64
	DayLow    *float64
	DayHigh   *float64
	Volume    *int64
}

// PriceEvent 為已分類、已註記的價格事件，建立後不再變更。
type PriceEvent struct {
	ID            int64
	CompanyID     string
	Price         float64
	Time          time.Time
	Trend         Trend
	ChangePercent *float64 // 無前筆事件時為 nil
	IsTrendChange bool
	NewsRelated   bool
}

// ValidationError 收集多個驗證失敗原因。
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("price sample validation failed: %v", e.Reasons)
}

// Validate 檢查欄位是否符合基本完整性條件。
func (p PriceSample) Validate() error {
	var reasons []string

	if p.CompanyID == "" {
		reasons = append(reasons, "company_id is required")
	}

	if p.Time.IsZero() {
		reasons = append(reasons, "time is required")
	}

	if p.Price < 0 {
		reasons = append(reasons, "price must be >= 0")
	}

	if p.Volume != nil && *p.Volume < 0 {
		reasons = append(reasons, "volume must be >= 0")
	}

	if p.DayLow != nil && p.DayHigh != nil && *p.DayLow > *p.DayHigh {
		reasons = append(reasons, "day_low must be <= day_high")
	}

	if len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}

	return nil
}

// IsValidationError 檢查錯誤是否為報價的驗證錯誤。
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
