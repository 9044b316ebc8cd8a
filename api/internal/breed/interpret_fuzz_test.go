package breed

import (
	"strings"
	"testing"
)

func FuzzInterpret(f *testing.F) {
	seeds := []string{
		"",
		"   ",
		RejectionSentinel,
		"A friendly dog.\n\nHere are four matching dog breeds:\n1. Labrador (40%)\n2. Poodle (30%)\n3. Beagle (20%)\n4. Boxer (10%)",
		"Here are four matching dog breeds:\n)\n(\n1. (%)\n2. x ()",
		"\xff\xfe\x00Here are matching breeds\n1. \xc3(1%)",
		strings.Repeat("Here are four matching dog breeds:\n1. A (1%)\n\n", 50),
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, raw string) {
		res := Interpret(raw)
		switch res.Outcome {
		case OutcomeRejected:
			if res.Summary != "" || res.Matches != nil || res.RawText != "" {
				t.Fatalf("rejected result carries data: %+v", res)
			}
		case OutcomeUnparseable:
			if res.RawText != raw {
				t.Fatalf("raw text not preserved")
			}
		case OutcomeIdentified:
			if len(res.Matches) == 0 || len(res.Matches) > MaxMatches {
				t.Fatalf("matches = %d", len(res.Matches))
			}
			for i, m := range res.Matches {
				if m.Rank != i+1 {
					t.Fatalf("rank %d at %d", m.Rank, i)
				}
				if m.Name == "" || m.Name != strings.TrimSpace(m.Name) {
					t.Fatalf("bad name %q", m.Name)
				}
				if m.Percentage < 0 || m.Percentage > 100 {
					t.Fatalf("percentage %v", m.Percentage)
				}
			}
		default:
			t.Fatalf("unknown outcome %q", res.Outcome)
		}
		if again := Interpret(raw); again.Outcome != res.Outcome || len(again.Matches) != len(res.Matches) {
			t.Fatalf("not deterministic")
		}
	})
}
