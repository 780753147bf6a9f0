package accum

import "testing"

func TestStatus(t *testing.T) {
	cases := []struct {
		name       string
		fileType   string
		status     string
		reject     string
		wantFlag   bool
		wantReason string
	}{
		{"non-response file", "DQ", "", "", false, ""},
		{"non-response ignores reject fields", "DQ", "R", "0F3", false, ""},
		{"accepted acknowledgment", "DR", "A", "", true, ""},
		{"accumulator mismatch", "DR", "R", "0F3", true, "Accumulator Mismatch"},
		{"mismatch on any status", "DR", "E", "0F3", true, "Accumulator Mismatch"},
		{"duplicate record", "DR", "E", "081", true, "Duplicate Record"},
		{"081 without E status is passthrough", "DR", "R", "081", true, "081"},
		{"unknown reject code passthrough", "DR", "R", "089", true, "089"},
		{"response with no reject detail", "DR", "R", "", true, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			flag, reason := Status(tc.fileType, tc.status, tc.reject)
			if flag != tc.wantFlag || reason != tc.wantReason {
				t.Errorf("Status(%q,%q,%q) = (%v, %q), want (%v, %q)",
					tc.fileType, tc.status, tc.reject, flag, reason, tc.wantFlag, tc.wantReason)
			}
		})
	}
}
