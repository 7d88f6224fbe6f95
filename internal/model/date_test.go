package model

import (
	"encoding/json"
	"testing"
)

func TestDate_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"2026-02-17"`, `"2026-02-17"`},
		{`"2026-02-17T18:00:00Z"`, `"2026-02-17T18:00:00Z"`},
		{`"2026-02-17T18:00:00.5Z"`, `"2026-02-17T18:00:00.5Z"`},
		{`"2026-02-17T18:00:00.123456789+07:00"`, `"2026-02-17T18:00:00.123456789+07:00"`},
		{`""`, `""`},
		{`null`, `""`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d Date
			if err := json.Unmarshal([]byte(tt.in), &d); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			out, err := json.Marshal(d)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(out) != tt.want {
				t.Errorf("round trip = %s, want %s", out, tt.want)
			}

			var again Date
			if err := json.Unmarshal(out, &again); err != nil {
				t.Fatalf("Unmarshal again: %v", err)
			}
			if !again.Equal(d.Time) {
				t.Errorf("second load = %v, want %v", again, d)
			}
		})
	}
}

func TestParseDate_Rejects(t *testing.T) {
	for _, in := range []string{"17/02/2026", "2026-02-30", "tomorrow"} {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("ParseDate(%q) should fail", in)
		}
	}
}
