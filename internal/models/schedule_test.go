package models

import (
	"strings"
	"testing"
	"time"
)

func TestRecurrenceValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     Recurrence
		wantErr bool
		errMsg  string
	}{
		{
			name:    "missing kind",
			rec:     Recurrence{Hour: 9, Minute: 0},
			wantErr: true,
			errMsg:  "invalid schedule kind",
		},
		{
			name:    "hour out of range",
			rec:     Recurrence{Kind: ScheduleDaily, Hour: 24},
			wantErr: true,
			errMsg:  "hour must be 0-23",
		},
		{
			name:    "minute out of range",
			rec:     Recurrence{Kind: ScheduleDaily, Hour: 9, Minute: 60},
			wantErr: true,
			errMsg:  "minute must be 0-59",
		},
		{
			name:    "one_time without date",
			rec:     Recurrence{Kind: ScheduleOneTime, Hour: 9},
			wantErr: true,
			errMsg:  "valid date",
		},
		{
			name:    "one_time with malformed date",
			rec:     Recurrence{Kind: ScheduleOneTime, Hour: 9, Date: "01/06/2025"},
			wantErr: true,
			errMsg:  "valid date",
		},
		{
			name:    "weekly without day of week is sunday",
			rec:     Recurrence{Kind: ScheduleWeekly, Hour: 9},
			wantErr: false,
		},
		{
			name:    "weekly with day of week out of range",
			rec:     Recurrence{Kind: ScheduleWeekly, Hour: 9, DayOfWeek: 7},
			wantErr: true,
			errMsg:  "day_of_week 0-6",
		},
		{
			name:    "monthly without day of month",
			rec:     Recurrence{Kind: ScheduleMonthly, Hour: 9},
			wantErr: true,
			errMsg:  "day_of_month 1-31",
		},
		{
			name: "valid one_time",
			rec:  Recurrence{Kind: ScheduleOneTime, Hour: 9, Minute: 30, Date: "2025-06-01"},
		},
		{
			name: "valid daily",
			rec:  Recurrence{Kind: ScheduleDaily, Hour: 0, Minute: 0},
		},
		{
			name: "valid monthly",
			rec:  Recurrence{Kind: ScheduleMonthly, Hour: 23, Minute: 59, DayOfMonth: 31},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error %q does not contain %q", err, tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRecurrenceMatches(t *testing.T) {
	// Sunday, June 1st 2025, 09:00.
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rec  Recurrence
		at   time.Time
		want bool
	}{
		{
			name: "daily exact minute",
			rec:  Recurrence{Kind: ScheduleDaily, Hour: 9, Minute: 0},
			at:   now,
			want: true,
		},
		{
			name: "daily one minute late",
			rec:  Recurrence{Kind: ScheduleDaily, Hour: 9, Minute: 0},
			at:   now.Add(time.Minute),
			want: false,
		},
		{
			name: "daily one minute early",
			rec:  Recurrence{Kind: ScheduleDaily, Hour: 9, Minute: 0},
			at:   now.Add(-time.Minute),
			want: false,
		},
		{
			name: "daily ignores seconds",
			rec:  Recurrence{Kind: ScheduleDaily, Hour: 9, Minute: 0},
			at:   now.Add(30 * time.Second),
			want: true,
		},
		{
			name: "one_time matching date",
			rec:  Recurrence{Kind: ScheduleOneTime, Hour: 9, Minute: 0, Date: "2025-06-01"},
			at:   now,
			want: true,
		},
		{
			name: "one_time other date",
			rec:  Recurrence{Kind: ScheduleOneTime, Hour: 9, Minute: 0, Date: "2025-06-02"},
			at:   now,
			want: false,
		},
		{
			name: "weekly matching sunday",
			rec:  Recurrence{Kind: ScheduleWeekly, Hour: 9, Minute: 0, DayOfWeek: time.Sunday},
			at:   now,
			want: true,
		},
		{
			name: "weekly wrong day",
			rec:  Recurrence{Kind: ScheduleWeekly, Hour: 9, Minute: 0, DayOfWeek: time.Monday},
			at:   now,
			want: false,
		},
		{
			name: "monthly matching day",
			rec:  Recurrence{Kind: ScheduleMonthly, Hour: 9, Minute: 0, DayOfMonth: 1},
			at:   now,
			want: true,
		},
		{
			name: "monthly wrong day",
			rec:  Recurrence{Kind: ScheduleMonthly, Hour: 9, Minute: 0, DayOfMonth: 15},
			at:   now,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.Matches(tt.at); got != tt.want {
				t.Errorf("Matches(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestParseContainmentState(t *testing.T) {
	tests := []struct {
		in   string
		want ContainmentState
	}{
		{"inside", ContainmentInside},
		{"outside", ContainmentOutside},
		{"unknown", ContainmentUnknown},
		{"", ContainmentUnknown},
		{"garbage", ContainmentUnknown},
	}
	for _, tt := range tests {
		if got := ParseContainmentState(tt.in); got != tt.want {
			t.Errorf("ParseContainmentState(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
