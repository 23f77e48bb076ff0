package month

import (
	"testing"
	"time"
)

func TestBounds_TableTests(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)

	tests := []struct {
		name      string
		t         time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "middle of month",
			t:         time.Date(2025, 6, 15, 13, 45, 0, 0, time.UTC),
			wantStart: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "december rolls over the year",
			t:         time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
			wantStart: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "february in leap year",
			t:         time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "local zone is kept",
			t:         time.Date(2025, 3, 1, 1, 0, 0, 0, moscow),
			wantStart: time.Date(2025, 3, 1, 0, 0, 0, 0, moscow),
			wantEnd:   time.Date(2025, 4, 1, 0, 0, 0, 0, moscow),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := Bounds(tt.t)
			if !start.Equal(tt.wantStart) {
				t.Errorf("Bounds() start = %v, want %v", start, tt.wantStart)
			}
			if !end.Equal(tt.wantEnd) {
				t.Errorf("Bounds() end = %v, want %v", end, tt.wantEnd)
			}
		})
	}
}

func TestYearStart(t *testing.T) {
	got := YearStart(time.Date(2025, 8, 17, 10, 0, 0, 0, time.UTC))
	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("YearStart() = %v, want %v", got, want)
	}
}

func TestKey_UsesUTC(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{
			name: "plain utc",
			t:    time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
			want: "2025-03",
		},
		{
			name: "local midnight of april 1st is still march in utc",
			t:    time.Date(2025, 4, 1, 1, 0, 0, 0, time.FixedZone("MSK", 3*60*60)),
			want: "2025-03",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.t); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEndOfDayUTC(t *testing.T) {
	got := EndOfDayUTC(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))
	want := time.Date(2025, 6, 30, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	if !got.Equal(want) {
		t.Errorf("EndOfDayUTC() = %v, want %v", got, want)
	}
}

func TestDate(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	got := Date(time.Date(2025, 4, 1, 1, 30, 0, 0, msk))
	want := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Date() = %v, want %v", got, want)
	}
}
