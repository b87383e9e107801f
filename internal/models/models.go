package models

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var (
	ErrNameRequired      = errors.New("name is required")
	ErrNegativeAmount    = errors.New("amount must not be negative")
	ErrInvalidCycleValue = errors.New("cycle_value must be greater than zero")
	ErrInvalidCycleUnit  = errors.New("invalid cycle_unit")
	ErrInvalidDate       = errors.New("date must be formatted as YYYY-MM-DD")
	ErrNegativeRemind    = errors.New("remind_days must not be negative")
)

type CycleUnit string

const (
	CycleUnitDay      CycleUnit = "day"
	CycleUnitMonth    CycleUnit = "month"
	CycleUnitQuarter  CycleUnit = "quarter"
	CycleUnitHalfYear CycleUnit = "half_year"
	CycleUnitYear     CycleUnit = "year"
)

func (u CycleUnit) Valid() bool {
	switch u {
	case CycleUnitDay, CycleUnitMonth, CycleUnitQuarter, CycleUnitHalfYear, CycleUnitYear:
		return true
	}
	return false
}

// Subscription is the client-side copy of a server-owned record. Dates travel
// as YYYY-MM-DD strings; a nil ExpireDate means no fixed expiry.
type Subscription struct {
	ID         int64     `json:"id,omitempty"`
	Name       string    `json:"name"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	StartDate  string    `json:"start_date"`
	CycleValue int       `json:"cycle_value"`
	CycleUnit  CycleUnit `json:"cycle_unit"`
	ExpireDate *string   `json:"expire_date"`
	AutoRenew  bool      `json:"auto_renew"`
	RenewCount int       `json:"renew_count,omitempty"`
	RemindDays int       `json:"remind_days"`
	Remark     string    `json:"remark,omitempty"`
}

// Validate mirrors the server's create/update rules so obviously bad input
// never leaves the client.
func (s *Subscription) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrNameRequired
	}
	if s.Amount < 0 {
		return ErrNegativeAmount
	}
	if s.CycleValue <= 0 {
		return ErrInvalidCycleValue
	}
	if !s.CycleUnit.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCycleUnit, s.CycleUnit)
	}
	if _, err := time.Parse(DateLayout, s.StartDate); err != nil {
		return fmt.Errorf("start_date: %w", ErrInvalidDate)
	}
	if s.ExpireDate != nil && *s.ExpireDate != "" {
		if _, err := time.Parse(DateLayout, *s.ExpireDate); err != nil {
			return fmt.Errorf("expire_date: %w", ErrInvalidDate)
		}
	}
	if s.RemindDays < 0 {
		return ErrNegativeRemind
	}
	return nil
}

// ExpectedExpireDate projects the renewal period onto the start date, the
// same way the server fills in expire_date when a request omits it.
func (s *Subscription) ExpectedExpireDate() (string, error) {
	start, err := time.Parse(DateLayout, s.StartDate)
	if err != nil {
		return "", fmt.Errorf("start_date: %w", ErrInvalidDate)
	}
	var end time.Time
	switch s.CycleUnit {
	case CycleUnitDay:
		end = start.AddDate(0, 0, s.CycleValue)
	case CycleUnitQuarter:
		end = start.AddDate(0, s.CycleValue*3, 0)
	case CycleUnitHalfYear:
		end = start.AddDate(0, s.CycleValue*6, 0)
	case CycleUnitYear:
		end = start.AddDate(s.CycleValue, 0, 0)
	default:
		end = start.AddDate(0, s.CycleValue, 0)
	}
	return end.Format(DateLayout), nil
}

// DaysLeft returns the whole days between now and the expiry date, negative
// once expired. ok is false when there is no fixed expiry.
func (s *Subscription) DaysLeft(now time.Time) (days int, ok bool) {
	if s.ExpireDate == nil || *s.ExpireDate == "" {
		return 0, false
	}
	expire, err := time.Parse(DateLayout, *s.ExpireDate)
	if err != nil {
		return 0, false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(expire.Sub(today).Hours() / 24), true
}

// Settings is the structured form used inside the client; SettingsWire is
// what the service speaks, with notify_hours comma-joined.
type Settings struct {
	NotifyHours      []int
	TelegramBotToken string
	TelegramChatID   string
	BarkURL          string
}

type SettingsWire struct {
	NotifyHours      string `json:"notify_hours"`
	TelegramBotToken string `json:"telegram_bot_token"`
	TelegramChatID   string `json:"telegram_chat_id"`
	BarkURL          string `json:"bark_url"`
}

func (s Settings) Wire() SettingsWire {
	return SettingsWire{
		NotifyHours:      JoinNotifyHours(s.NotifyHours),
		TelegramBotToken: s.TelegramBotToken,
		TelegramChatID:   s.TelegramChatID,
		BarkURL:          s.BarkURL,
	}
}

func (w SettingsWire) Structured() (Settings, error) {
	hours, err := ParseNotifyHours(w.NotifyHours)
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		NotifyHours:      hours,
		TelegramBotToken: w.TelegramBotToken,
		TelegramChatID:   w.TelegramChatID,
		BarkURL:          w.BarkURL,
	}, nil
}

// JoinNotifyHours serializes a set of hours as an ascending comma-joined
// string; the empty set becomes the empty string.
func JoinNotifyHours(hours []int) string {
	if len(hours) == 0 {
		return ""
	}
	sorted := make([]int, len(hours))
	copy(sorted, hours)
	sort.Ints(sorted)
	parts := make([]string, 0, len(sorted))
	for i, h := range sorted {
		if i > 0 && sorted[i-1] == h {
			continue
		}
		parts = append(parts, strconv.Itoa(h))
	}
	return strings.Join(parts, ",")
}

func ParseNotifyHours(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return []int{}, nil
	}
	parts := strings.Split(s, ",")
	hours := make([]int, 0, len(parts))
	for _, p := range parts {
		h, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("notify_hours: invalid hour %q", p)
		}
		hours = append(hours, h)
	}
	return hours, nil
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type TestNotifyRequest struct {
	Type string `json:"type"`
}

type PublicConfig struct {
	WebsiteTitle string `json:"website_title"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
