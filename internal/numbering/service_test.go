package numbering

import "testing"

func TestFormat(t *testing.T) {
	tests := []struct {
		prefix string
		day    string
		seq    int64
		width  int
		want   string
	}{
		{"RES", "20260115", 1, 4, "RES-20260115-0001"},
		{"INV", "20260115", 42, 4, "INV-20260115-0042"},
		{"RES", "20261231", 12345, 4, "RES-20261231-12345"},
		{"INV", "20260101", 7, 6, "INV-20260101-000007"},
		{"RES", "20260101", 3, 0, "RES-20260101-0003"},
	}

	for _, tt := range tests {
		got := Format(tt.prefix, tt.day, tt.seq, tt.width)
		if got != tt.want {
			t.Errorf("Format(%q, %q, %d, %d) = %q, want %q",
				tt.prefix, tt.day, tt.seq, tt.width, got, tt.want)
		}
	}
}

func TestCounterKey(t *testing.T) {
	got := CounterKey("RES", "20260115")
	want := "atlastours:numbering:RES:20260115"
	if got != want {
		t.Errorf("CounterKey() = %q, want %q", got, want)
	}

	if CounterKey("RES", "20260115") == CounterKey("INV", "20260115") {
		t.Error("reservation and invoice counters must not share a key")
	}
	if CounterKey("RES", "20260115") == CounterKey("RES", "20260116") {
		t.Error("counters on different days must not share a key")
	}
}
