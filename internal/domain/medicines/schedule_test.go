package medicines

import (
	"testing"
	"time"
)

func TestIsDue_DailyAlwaysTrue(t *testing.T) {
	m := Medicine{Schedule: Daily()}
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	for i := 0; i < 400; i++ {
		now := start.AddDate(0, 0, i)
		if !IsDue(m, now) {
			t.Fatalf("daily medicine not due on %s", FormatDate(now))
		}
	}
}

func TestIsDue_SpecificDays(t *testing.T) {
	m := Medicine{Schedule: OnWeekdays(time.Monday, time.Wednesday, time.Friday)}

	// 2024-03-10 es domingo
	sunday := time.Date(2024, 3, 10, 8, 0, 0, 0, time.Local)
	for i := 0; i < 14; i++ {
		now := sunday.AddDate(0, 0, i)
		wd := now.Weekday()
		want := wd == time.Monday || wd == time.Wednesday || wd == time.Friday
		if got := IsDue(m, now); got != want {
			t.Fatalf("%s (%s): got %v want %v", FormatDate(now), wd, got, want)
		}
	}
}

func TestIsDue_OneTimeExactString(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.Local)

	if !IsDue(Medicine{Schedule: OnceOn("2024-03-10")}, now) {
		t.Fatalf("expected due on the exact date")
	}
	if IsDue(Medicine{Schedule: OnceOn("2024-03-10")}, now.AddDate(0, 0, 1)) {
		t.Fatalf("one-time must not be due on 2024-03-11")
	}
	// sin normalización de fechas mal formadas
	if IsDue(Medicine{Schedule: OnceOn("2024-3-10")}, now) {
		t.Fatalf("malformed date must not match")
	}
}

func TestIsDue_CustomDates(t *testing.T) {
	m := Medicine{Schedule: OnDates("2024-03-10", "2024-03-12")}

	cases := map[string]bool{
		"2024-03-10": true,
		"2024-03-11": false,
		"2024-03-12": true,
	}
	for date, want := range cases {
		now, _ := time.ParseInLocation(DateLayout, date, time.Local)
		if got := IsDue(m, now); got != want {
			t.Fatalf("%s: got %v want %v", date, got, want)
		}
	}
}

func TestIsDue_UnknownTypeFailsOpen(t *testing.T) {
	m := Medicine{Schedule: Schedule{Type: "every-full-moon"}}
	if !IsDue(m, time.Now()) {
		t.Fatalf("unknown schedule type should be due")
	}
}

func TestIsDue_IgnoresStaleFields(t *testing.T) {
	// daily con días/fechas viejos cargados: siguen sin importar
	m := Medicine{Schedule: Schedule{Type: ScheduleDaily, Days: []time.Weekday{time.Monday}, Date: "1999-01-01"}}
	tuesday := time.Date(2024, 3, 12, 8, 0, 0, 0, time.Local)
	if !IsDue(m, tuesday) {
		t.Fatalf("daily must ignore stale fields")
	}
}

func TestFormatters(t *testing.T) {
	now := time.Date(2024, 3, 5, 7, 4, 59, 0, time.Local)
	if got := FormatDate(now); got != "2024-03-05" {
		t.Fatalf("FormatDate = %s", got)
	}
	if got := FormatTime(now); got != "07:04" {
		t.Fatalf("FormatTime = %s", got)
	}
}

func TestNormalizeTime(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"08:05", "08:05", true},
		{"8:05", "08:05", true},
		{" 23:59 ", "23:59", true},
		{"24:00", "", false},
		{"8:5", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := NormalizeTime(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("NormalizeTime(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("NormalizeTime(%q) expected error, got %q", tc.in, got)
		}
	}
}
