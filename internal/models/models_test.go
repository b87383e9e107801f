package models_test

import (
	"errors"
	"testing"
	"time"

	"github.com/subdock/subdock-cli/internal/models"
)

func TestJoinNotifyHours(t *testing.T) {
	tests := []struct {
		name  string
		hours []int
		want  string
	}{
		{name: "two hours", hours: []int{9, 18}, want: "9,18"},
		{name: "unsorted input is sorted", hours: []int{18, 9}, want: "9,18"},
		{name: "duplicates collapse", hours: []int{9, 9, 18}, want: "9,18"},
		{name: "single hour", hours: []int{0}, want: "0"},
		{name: "empty set", hours: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := models.JoinNotifyHours(tt.hours); got != tt.want {
				t.Errorf("JoinNotifyHours(%v) = %q, want %q", tt.hours, got, tt.want)
			}
		})
	}
}

func TestParseNotifyHours(t *testing.T) {
	tests := []struct {
		name    string
		wire    string
		want    []int
		wantErr bool
	}{
		{name: "two hours", wire: "9,18", want: []int{9, 18}},
		{name: "spaces tolerated", wire: "9, 18", want: []int{9, 18}},
		{name: "empty string is empty set", wire: "", want: []int{}},
		{name: "garbage", wire: "9,lunch", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := models.ParseNotifyHours(tt.wire)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseNotifyHours(%q) expected error, got %v", tt.wire, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseNotifyHours(%q) unexpected error = %v", tt.wire, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseNotifyHours(%q) = %v, want %v", tt.wire, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseNotifyHours(%q) = %v, want %v", tt.wire, got, tt.want)
					break
				}
			}
		})
	}
}

func TestSettings_WireRoundTrip(t *testing.T) {
	s := models.Settings{
		NotifyHours:      []int{9, 18},
		TelegramBotToken: "bot-token",
		TelegramChatID:   "chat-id",
		BarkURL:          "https://bark.example/key",
	}

	wire := s.Wire()
	if wire.NotifyHours != "9,18" {
		t.Errorf("Wire().NotifyHours = %q, want %q", wire.NotifyHours, "9,18")
	}

	back, err := wire.Structured()
	if err != nil {
		t.Fatalf("Structured() error = %v", err)
	}
	if len(back.NotifyHours) != 2 || back.NotifyHours[0] != 9 || back.NotifyHours[1] != 18 {
		t.Errorf("round trip NotifyHours = %v, want [9 18]", back.NotifyHours)
	}
	if back.TelegramBotToken != s.TelegramBotToken || back.BarkURL != s.BarkURL {
		t.Error("round trip dropped channel settings")
	}
}

func TestSubscription_Validate(t *testing.T) {
	expire := "2025-06-01"
	valid := models.Subscription{
		Name:       "Netflix",
		Amount:     15.99,
		Currency:   "USD",
		StartDate:  "2024-01-01",
		CycleValue: 1,
		CycleUnit:  models.CycleUnitMonth,
		ExpireDate: &expire,
		RemindDays: 3,
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() on valid record = %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*models.Subscription)
		wantErr error
	}{
		{name: "missing name", mutate: func(s *models.Subscription) { s.Name = " " }, wantErr: models.ErrNameRequired},
		{name: "negative amount", mutate: func(s *models.Subscription) { s.Amount = -1 }, wantErr: models.ErrNegativeAmount},
		{name: "zero cycle value", mutate: func(s *models.Subscription) { s.CycleValue = 0 }, wantErr: models.ErrInvalidCycleValue},
		{name: "bad cycle unit", mutate: func(s *models.Subscription) { s.CycleUnit = "fortnight" }, wantErr: models.ErrInvalidCycleUnit},
		{name: "bad start date", mutate: func(s *models.Subscription) { s.StartDate = "01/01/2024" }, wantErr: models.ErrInvalidDate},
		{name: "bad expire date", mutate: func(s *models.Subscription) { d := "soon"; s.ExpireDate = &d }, wantErr: models.ErrInvalidDate},
		{name: "negative remind days", mutate: func(s *models.Subscription) { s.RemindDays = -1 }, wantErr: models.ErrNegativeRemind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := valid
			tt.mutate(&sub)
			if err := sub.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscription_ExpectedExpireDate(t *testing.T) {
	tests := []struct {
		name  string
		value int
		unit  models.CycleUnit
		want  string
	}{
		{name: "one month", value: 1, unit: models.CycleUnitMonth, want: "2024-02-01"},
		{name: "seven days", value: 7, unit: models.CycleUnitDay, want: "2024-01-08"},
		{name: "one quarter", value: 1, unit: models.CycleUnitQuarter, want: "2024-04-01"},
		{name: "one half year", value: 1, unit: models.CycleUnitHalfYear, want: "2024-07-01"},
		{name: "two years", value: 2, unit: models.CycleUnitYear, want: "2026-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := models.Subscription{
				StartDate:  "2024-01-01",
				CycleValue: tt.value,
				CycleUnit:  tt.unit,
			}
			got, err := sub.ExpectedExpireDate()
			if err != nil {
				t.Fatalf("ExpectedExpireDate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExpectedExpireDate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubscription_DaysLeft(t *testing.T) {
	now := time.Date(2024, 5, 10, 13, 30, 0, 0, time.UTC)

	expire := "2024-05-13"
	sub := models.Subscription{ExpireDate: &expire}
	days, ok := sub.DaysLeft(now)
	if !ok || days != 3 {
		t.Errorf("DaysLeft() = %d, %v; want 3, true", days, ok)
	}

	past := "2024-05-01"
	sub.ExpireDate = &past
	days, ok = sub.DaysLeft(now)
	if !ok || days != -9 {
		t.Errorf("DaysLeft() = %d, %v; want -9, true", days, ok)
	}

	sub.ExpireDate = nil
	if _, ok := sub.DaysLeft(now); ok {
		t.Error("DaysLeft() with no expiry should report ok = false")
	}
}
