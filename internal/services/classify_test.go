package services

import "testing"

func intp(n int) *int { return &n }

func TestClassify(t *testing.T) {
	cases := []struct {
		name       string
		cpl        int
		evalBefore *int
		evalAfter  *int
		want       string
	}{
		{"best, tiny loss", 5, nil, nil, "best"},
		{"excellent, small loss", 20, nil, nil, "excellent"},
		{"good, moderate loss", 45, nil, nil, "good"},
		{"positional blunder, winning to losing", 60, intp(200), intp(-200), "blunder"},
		{"positional blunder, near-equal collapse", 60, intp(20), intp(-250), "blunder"},
		{"large cpl is always a blunder", 350, nil, nil, "blunder"},
		{"positional mistake, advantage thrown to equal", 60, intp(250), intp(0), "mistake"},
		{"mid-range cpl mistake, no eval context", 200, nil, nil, "mistake"},
		{"low-mid cpl with eval still losing", 100, intp(100), intp(-150), "mistake"},
		{"low-mid cpl, still roughly fine", 100, intp(100), intp(-50), "inaccuracy"},
		{"low-mid cpl, no eval context falls to default", 100, nil, nil, "good"},
		{"negative cpl uses absolute value", -5, nil, nil, "best"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.cpl, tc.evalBefore, tc.evalAfter)
			if got != tc.want {
				t.Errorf("Classify(%d, %v, %v) = %q, want %q", tc.cpl, tc.evalBefore, tc.evalAfter, got, tc.want)
			}
		})
	}
}
