package market

import (
	"testing"
	"time"
)

func TestPriceSampleValidate_OK(t *testing.T) {
	low, high := 98.0, 103.5
	vol := int64(1000)
	sample := PriceSample{
		CompanyID: "ACME",
		Price:     100.5,
		Time:      time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		DayLow:    &low,
		DayHigh:   &high,
		Volume:    &vol,
	}
	if err := sample.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPriceSampleValidate_CollectsAllReasons(t *testing.T) {
	low, high := 110.0, 90.0
	vol := int64(-5)
	sample := PriceSample{
		Price:   -1,
		DayLow:  &low,
		DayHigh: &high,
		Volume:  &vol,
	}
	err := sample.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Reasons) != 5 {
		t.Fatalf("expected 5 reasons, got %d: %v", len(ve.Reasons), ve.Reasons)
	}
}

func TestPriceSampleValidate_ZeroPriceAllowed(t *testing.T) {
	sample := PriceSample{
		CompanyID: "ACME",
		Price:     0,
		Time:      time.Now(),
	}
	if err := sample.Validate(); err != nil {
		t.Fatalf("price 0 should be valid: %v", err)
	}
}

func TestIsValidationError(t *testing.T) {
	sample := PriceSample{}
	err := sample.Validate()
	if !IsValidationError(err) {
		t.Fatal("expected IsValidationError to report true")
	}
}
