package breed

// MaxMatches: модель по контракту возвращает не больше четырёх пород.
const MaxMatches = 4

type Outcome string

const (
	OutcomeRejected    Outcome = "rejected"    // на фото не собака
	OutcomeIdentified  Outcome = "identified"  // summary + список пород
	OutcomeUnparseable Outcome = "unparseable" // ответ не совпал с ожидаемой грамматикой
)

// Match is one ranked candidate breed from the model's list.
type Match struct {
	Rank       int     `json:"rank"`
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

// Result is the interpreted model reply. Exactly one Outcome is set:
//
//	rejected     no other fields
//	identified   Summary and Matches (1..MaxMatches, ranks 1..n in list order)
//	unparseable  RawText, the reply as it was received
type Result struct {
	Outcome Outcome `json:"outcome"`
	Summary string  `json:"summary,omitempty"`
	Matches []Match `json:"matches,omitempty"`
	RawText string  `json:"raw_text,omitempty"`
}

func Rejected() Result { return Result{Outcome: OutcomeRejected} }

func Unparseable(raw string) Result {
	return Result{Outcome: OutcomeUnparseable, RawText: raw}
}

// Identified builds an identified result. Matches are truncated to MaxMatches
// and re-ranked 1..n in the given order.
func Identified(summary string, matches []Match) Result {
	if len(matches) > MaxMatches {
		matches = matches[:MaxMatches]
	}
	out := make([]Match, len(matches))
	for i, m := range matches {
		m.Rank = i + 1
		out[i] = m
	}
	return Result{Outcome: OutcomeIdentified, Summary: summary, Matches: out}
}

func (r Result) IsRejected() bool    { return r.Outcome == OutcomeRejected }
func (r Result) IsIdentified() bool  { return r.Outcome == OutcomeIdentified }
func (r Result) IsUnparseable() bool { return r.Outcome == OutcomeUnparseable }

// Top returns the highest ranked match.
func (r Result) Top() (Match, bool) {
	if len(r.Matches) == 0 {
		return Match{}, false
	}
	return r.Matches[0], true
}

// Total sums match percentages. The model is asked for 100 but nothing enforces it.
func (r Result) Total() float64 {
	var sum float64
	for _, m := range r.Matches {
		sum += m.Percentage
	}
	return sum
}
