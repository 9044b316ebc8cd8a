package present

import (
	"fmt"
	"strconv"
	"strings"

	"pup-project/api/internal/breed"
)

// Messages: фиксированные тексты интерфейса, переопределяются через YAML (MESSAGES_FILE).
type Messages struct {
	Title       string `yaml:"title"`
	Welcome     string `yaml:"welcome"`
	AskQuery    string `yaml:"ask_query"`
	BadQuery    string `yaml:"bad_query"`
	Loading     string `yaml:"loading"`
	ListHeader  string `yaml:"list_header"`
	Rejected    string `yaml:"rejected"`
	NoMatches   string `yaml:"no_matches"`
	EngineError string `yaml:"engine_error"`
}

func DefaultMessages() Messages {
	return Messages{
		Title:       "Pet Project",
		Welcome:     "Send a photo of your pup with its weight (lbs) and height (inches) in the caption, e.g. 45 22.",
		AskQuery:    "Got the photo. Now send the weight (lbs) and height (inches), e.g. 45 22.",
		BadQuery:    "Weight and height must be two positive numbers, e.g. 45 22.",
		Loading:     "Loading...",
		ListHeader:  "Possible matching dog breeds:",
		Rejected:    "Please only upload images of your pup.",
		NoMatches:   "No matching breeds found.",
		EngineError: "The model did not answer. Please try again later.",
	}
}

// FormatPercent: 40 -> "40%", 12.5 -> "12.5%".
func FormatPercent(p float64) string {
	return FormatNumber(p) + "%"
}

func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MatchLines нумерует с 1 в порядке списка.
func MatchLines(r breed.Result) []string {
	out := make([]string, 0, len(r.Matches))
	for i, m := range r.Matches {
		out = append(out, fmt.Sprintf("%d. %s (%s)", i+1, m.Name, FormatPercent(m.Percentage)))
	}
	return out
}

// Text renders a result as plain text for chat and console.
func Text(r breed.Result, msg Messages) string {
	switch r.Outcome {
	case breed.OutcomeRejected:
		return msg.Rejected
	case breed.OutcomeIdentified:
		var b strings.Builder
		if s := strings.TrimSpace(r.Summary); s != "" {
			b.WriteString(s)
			b.WriteString("\n\n")
		}
		b.WriteString(msg.ListHeader)
		for _, line := range MatchLines(r) {
			b.WriteString("\n")
			b.WriteString(line)
		}
		return b.String()
	default:
		return msg.NoMatches
	}
}
