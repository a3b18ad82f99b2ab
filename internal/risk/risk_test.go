package risk

import "testing"

func TestClassifySeverityBands(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{0, "info"}, {10, "info"}, {11, "low"}, {30, "low"},
		{31, "medium"}, {50, "medium"}, {51, "high"}, {75, "high"},
		{76, "critical"}, {100, "critical"},
	}
	for _, tc := range cases {
		if got := classifySeverity(tc.score); got != tc.want {
			t.Errorf("classifySeverity(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
