package annotation

import "testing"

func TestClosestColumn(t *testing.T) {
	columns := []string{"participant_id", "age", "sex"}

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"Age", "age", true},
		{"participant-id", "participant_id", true},
		{"handedness", "", false},
	}

	for _, tt := range tests {
		got, ok := closestColumn(tt.name, columns)
		if ok != tt.wantOK {
			t.Errorf("closestColumn(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("closestColumn(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
