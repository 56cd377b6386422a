package medicines

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestRecord_ActiveFieldOnly(t *testing.T) {
	raw := `{
		"id": "m-1",
		"patientEmail": "ana@example.com",
		"caregiverEmail": "bob@example.com",
		"name": "Ibuprofeno",
		"time": "08:00",
		"scheduleType": "specific-days",
		"selectedDays": ["1", 3, "9", "x"],
		"oneTimeDate": "2024-03-10",
		"customDates": ["2024-03-11"],
		"stock": "5",
		"takenDates": "2024-03-01,2024-03-02"
	}`

	var r Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	m := r.Medicine()

	if m.Stock != 5 {
		t.Fatalf("expected stock 5, got %d", m.Stock)
	}
	if !reflect.DeepEqual(m.Schedule.Days, []time.Weekday{time.Monday, time.Wednesday}) {
		t.Fatalf("unexpected days %#v", m.Schedule.Days)
	}
	if m.Schedule.Date != "" || len(m.Schedule.Dates) != 0 {
		t.Fatalf("stale fields should be dropped: %#v", m.Schedule)
	}
	if !reflect.DeepEqual(m.TakenDates, []string{"2024-03-01", "2024-03-02"}) {
		t.Fatalf("unexpected taken dates %#v", m.TakenDates)
	}
}

func TestRecord_MissingTypeIsDaily(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`{"id":"m-2","stock":3.9,"customDates":null}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	m := r.Medicine()
	if m.Schedule.Type != ScheduleDaily {
		t.Fatalf("expected daily, got %s", m.Schedule.Type)
	}
	if m.Stock != 3 {
		t.Fatalf("expected truncated stock 3, got %d", m.Stock)
	}
	if m.TakenDates == nil {
		t.Fatalf("taken dates must never be nil")
	}
}

func TestRecord_CustomDatesFromSerializedString(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"scheduleType":"custom-dates","customDates":"[\"2024-03-10\",\"2024-03-12\"]"}`), &r)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	m := r.Medicine()
	if !reflect.DeepEqual(m.Schedule.Dates, []string{"2024-03-10", "2024-03-12"}) {
		t.Fatalf("unexpected dates %#v", m.Schedule.Dates)
	}
}

func TestToRecord_EmitsEmptyArrays(t *testing.T) {
	b, err := json.Marshal(ToRecord(Medicine{Name: "x"}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	_ = json.Unmarshal(b, &out)

	for _, k := range []string{"selectedDays", "customDates", "takenDates"} {
		arr, ok := out[k].([]any)
		if !ok || len(arr) != 0 {
			t.Fatalf("expected %s to be [], got %#v", k, out[k])
		}
	}
	if out["scheduleType"] != "daily" {
		t.Fatalf("expected default daily, got %#v", out["scheduleType"])
	}
}

func TestParseStock(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"5", 5, true},
		{" 12 ", 12, true},
		{"", 0, true},
		{"5.7", 5, true},
		{"-1", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseStock(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseStock(%q) = %d, %v; want %d", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseStock(%q) expected error", tc.in)
		}
	}
}

func TestRecord_BadStockDefaultsToZero(t *testing.T) {
	cases := []struct {
		raw  string
		want int
		warn bool
	}{
		{`{"id":"m-1","stock":"-1"}`, 0, true},
		{`{"id":"m-1","stock":-1}`, 0, true},
		{`{"id":"m-1","stock":"n/a"}`, 0, true},
		{`{"id":"m-1","stock":true}`, 0, true},
		{`{"id":"m-1","stock":"4"}`, 4, false},
		{`{"id":"m-1"}`, 0, false},
	}

	for _, tc := range cases {
		var r Record
		if err := json.Unmarshal([]byte(tc.raw), &r); err != nil {
			t.Fatalf("%s: unexpected error %v", tc.raw, err)
		}
		if got := r.Medicine().Stock; got != tc.want {
			t.Fatalf("%s: expected stock %d, got %d", tc.raw, tc.want, got)
		}
		if got := len(r.Warnings()) > 0; got != tc.warn {
			t.Fatalf("%s: expected warning=%v, got %v", tc.raw, tc.warn, r.Warnings())
		}
	}
}
