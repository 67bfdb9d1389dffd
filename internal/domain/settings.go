package domain

import (
	"fmt"
	"strings"
	"time"
)

// Documented defaults substituted field-wise when a shop has no saved
// settings, or when an individual field is unset (zero).
const (
	DefaultShortageThresholdDays      = 10
	DefaultOverstockThresholdDays     = 90
	DefaultMildOverstockThresholdDays = 60
	DefaultSafetyDays                 = 7
	DefaultLeadTimeDays               = 14
	DefaultHistoryWindowDays          = 90
	DefaultMinRecommendedQty          = 5
	DefaultMinSalesForForecast        = 10
	DefaultDigestCadence              = "daily"
	DefaultDigestChannel              = "email"
)

// ThresholdSettings is the per-shop configuration read by the forecast engine
// and reporting aggregator. Written only through the settings-save operation;
// the core assumes validated values.
type ThresholdSettings struct {
	ShopDomain                 string    `json:"shop_domain" db:"shop_domain"`
	ShortageThresholdDays      int       `json:"shortage_threshold_days" db:"shortage_threshold_days"`
	OverstockThresholdDays     int       `json:"overstock_threshold_days" db:"overstock_threshold_days"`
	MildOverstockThresholdDays int       `json:"mild_overstock_threshold_days" db:"mild_overstock_threshold_days"`
	SafetyDays                 int       `json:"safety_days" db:"safety_days"`
	LeadTimeDays               int       `json:"lead_time_days" db:"lead_time_days"`
	HistoryWindowDays          int       `json:"history_window_days" db:"history_window_days"`
	MinRecommendedQty          int       `json:"min_recommended_qty" db:"min_recommended_qty"`
	MinSalesForForecast        int       `json:"min_sales_for_forecast" db:"min_sales_for_forecast"`
	DigestCadence              string    `json:"digest_cadence" db:"digest_cadence"`
	DigestChannel              string    `json:"digest_channel" db:"digest_channel"`
	UpdatedAt                  time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultSettings returns the documented defaults for a shop.
func DefaultSettings(shop string) ThresholdSettings {
	return ThresholdSettings{
		ShopDomain:                 shop,
		ShortageThresholdDays:      DefaultShortageThresholdDays,
		OverstockThresholdDays:     DefaultOverstockThresholdDays,
		MildOverstockThresholdDays: DefaultMildOverstockThresholdDays,
		SafetyDays:                 DefaultSafetyDays,
		LeadTimeDays:               DefaultLeadTimeDays,
		HistoryWindowDays:          DefaultHistoryWindowDays,
		MinRecommendedQty:          DefaultMinRecommendedQty,
		MinSalesForForecast:        DefaultMinSalesForForecast,
		DigestCadence:              DefaultDigestCadence,
		DigestChannel:              DefaultDigestChannel,
	}
}

// WithDefaults fills any unset (zero) field from the documented defaults.
func (s ThresholdSettings) WithDefaults() ThresholdSettings {
	d := DefaultSettings(s.ShopDomain)
	if s.ShortageThresholdDays <= 0 {
		s.ShortageThresholdDays = d.ShortageThresholdDays
	}
	if s.OverstockThresholdDays <= 0 {
		s.OverstockThresholdDays = d.OverstockThresholdDays
	}
	if s.MildOverstockThresholdDays <= 0 {
		s.MildOverstockThresholdDays = d.MildOverstockThresholdDays
	}
	if s.SafetyDays <= 0 {
		s.SafetyDays = d.SafetyDays
	}
	if s.LeadTimeDays <= 0 {
		s.LeadTimeDays = d.LeadTimeDays
	}
	if s.HistoryWindowDays <= 0 {
		s.HistoryWindowDays = d.HistoryWindowDays
	}
	if s.MinRecommendedQty <= 0 {
		s.MinRecommendedQty = d.MinRecommendedQty
	}
	if s.MinSalesForForecast <= 0 {
		s.MinSalesForForecast = d.MinSalesForForecast
	}
	if strings.TrimSpace(s.DigestCadence) == "" {
		s.DigestCadence = d.DigestCadence
	}
	if strings.TrimSpace(s.DigestChannel) == "" {
		s.DigestChannel = d.DigestChannel
	}
	return s
}

// Validate rejects malformed settings at the save boundary so the forecast
// engine can assume well-formed thresholds.
func (s ThresholdSettings) Validate() error {
	if s.ShortageThresholdDays <= 0 {
		return fmt.Errorf("shortage threshold must be positive, got %d", s.ShortageThresholdDays)
	}
	if s.OverstockThresholdDays <= 0 {
		return fmt.Errorf("overstock threshold must be positive, got %d", s.OverstockThresholdDays)
	}
	if s.MildOverstockThresholdDays <= 0 {
		return fmt.Errorf("mild overstock threshold must be positive, got %d", s.MildOverstockThresholdDays)
	}
	if s.MildOverstockThresholdDays > s.OverstockThresholdDays {
		return fmt.Errorf("mild overstock threshold %d exceeds overstock threshold %d",
			s.MildOverstockThresholdDays, s.OverstockThresholdDays)
	}
	if s.SafetyDays < 0 {
		return fmt.Errorf("safety days must not be negative, got %d", s.SafetyDays)
	}
	if s.LeadTimeDays < 0 {
		return fmt.Errorf("lead time days must not be negative, got %d", s.LeadTimeDays)
	}
	if s.HistoryWindowDays <= 0 {
		return fmt.Errorf("history window must be positive, got %d", s.HistoryWindowDays)
	}
	if s.MinRecommendedQty < 0 {
		return fmt.Errorf("min recommended qty must not be negative, got %d", s.MinRecommendedQty)
	}
	if s.MinSalesForForecast < 0 {
		return fmt.Errorf("min sales for forecast must not be negative, got %d", s.MinSalesForForecast)
	}
	switch strings.ToLower(s.DigestCadence) {
	case "daily", "weekly", "off":
	default:
		return fmt.Errorf("unknown digest cadence %q", s.DigestCadence)
	}
	return nil
}

// TargetCoverageDays is the reorder horizon: lead time plus safety stock days,
// floored at 30 so short lead-time shops do not get degenerate tiny targets.
func (s ThresholdSettings) TargetCoverageDays() int {
	target := s.LeadTimeDays + s.SafetyDays
	if target < 30 {
		return 30
	}
	return target
}
