package timeofday

import (
	"encoding/json"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"17:00", 1020, false},
		{"24:00", 1440, false},
		{"24:01", 0, true},
		{"25:00", 0, true},
		{"09:60", 0, true},
		{"9:00", 540, false},
		{"abc", 0, true},
		{"", 0, true},
		{"09:00junk", 0, true},
		{"09:0x", 0, true},
		{"x09:00", 0, true},
		{"09:00:00", 0, true},
		{"09:", 0, true},
		{":30", 0, true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestString(t *testing.T) {
	if got := MustParse("09:05").String(); got != "09:05" {
		t.Errorf("String() = %q", got)
	}
	if got := TimeOfDay(0).String(); got != "00:00" {
		t.Errorf("String() = %q", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	type wrapper struct {
		At TimeOfDay `json:"at"`
	}
	data, err := json.Marshal(wrapper{At: MustParse("14:30")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"at":"14:30"}` {
		t.Errorf("marshal = %s", data)
	}
	var w wrapper
	if err := json.Unmarshal(data, &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if w.At != MustParse("14:30") {
		t.Errorf("round trip = %v", w.At)
	}

	if err := json.Unmarshal([]byte(`{"at":"99:00"}`), &w); err == nil {
		t.Error("expected error for out-of-range time")
	}
}

func TestOverlaps(t *testing.T) {
	nine := MustParse("09:00")
	ten := MustParse("10:00")
	tenThirty := MustParse("10:30")
	eleven := MustParse("11:00")

	tests := []struct {
		name           string
		s1, e1, s2, e2 TimeOfDay
		want           bool
	}{
		{"adjacent windows do not overlap", nine, ten, ten, eleven, false},
		{"containment overlaps", nine, eleven, ten, tenThirty, true},
		{"identical windows overlap", nine, ten, nine, ten, true},
		{"disjoint windows do not overlap", nine, ten, tenThirty, eleven, false},
		{"partial overlap", nine, tenThirty, ten, eleven, true},
		{"symmetric", ten, eleven, nine, tenThirty, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.s1, tt.e1, tt.s2, tt.e2); got != tt.want {
				t.Errorf("Overlaps(%v,%v,%v,%v) = %v, want %v", tt.s1, tt.e1, tt.s2, tt.e2, got, tt.want)
			}
		})
	}
}
