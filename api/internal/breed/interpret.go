package breed

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// RejectionSentinel: фраза, которой модель отвечает, если на фото не собака.
const RejectionSentinel = "Please only upload images of your pup."

var (
	// "Here are four possible matching dog breeds:", "Here are four matching breeds" и т.п.
	reListIntro = regexp.MustCompile(`^here\s+are\b.*\bmatching\b.*\bbreeds?\b`)
	rePercent   = regexp.MustCompile(`^(\d{1,3}(?:[.,]\d+)?)\s*%?$`)
)

// Stats describes how a reply was taken apart. Useful for logging, not part of the result.
type Stats struct {
	Blocks    int  // paragraph blocks in the reply
	ListFound bool // list-introduction line located
	Lines     int  // candidate list lines inspected
	Skipped   int  // candidate lines that did not parse
	Extra     int  // parsed lines dropped past MaxMatches
}

// Interpreter turns raw model text into a Result. It holds no mutable state
// and is safe for concurrent use.
type Interpreter struct {
	sentinels map[string]struct{}
}

// NewInterpreter accepts RejectionSentinel plus any extra sentinel phrasings.
func NewInterpreter(extra ...string) *Interpreter {
	in := &Interpreter{sentinels: map[string]struct{}{}}
	for _, s := range append([]string{RejectionSentinel}, extra...) {
		if k := sentinelKey(s); k != "" {
			in.sentinels[k] = struct{}{}
		}
	}
	return in
}

var defaultInterpreter = NewInterpreter()

// Interpret uses the default sentinel set.
func Interpret(raw string) Result { return defaultInterpreter.Interpret(raw) }

func (in *Interpreter) Interpret(raw string) Result {
	res, _ := in.Analyze(raw)
	return res
}

// Analyze is Interpret plus parse statistics.
func (in *Interpreter) Analyze(raw string) (Result, Stats) {
	var st Stats

	text := normalizeText(raw)
	if text == "" {
		return Unparseable(raw), st
	}
	// отказ: только точное совпадение всего ответа, без посторонних слов
	if _, ok := in.sentinels[sentinelKey(text)]; ok {
		return Rejected(), st
	}

	blocks := splitBlocks(text)
	st.Blocks = len(blocks)

	bi, li := findListIntro(blocks)
	if bi < 0 {
		return Unparseable(raw), st
	}
	st.ListFound = true

	summaryBlocks := make([]string, 0, bi+1)
	for _, b := range blocks[:bi] {
		summaryBlocks = append(summaryBlocks, strings.Join(b, "\n"))
	}
	if li > 0 {
		// вступление к списку оказалось внутри абзаца: всё, что выше, тоже summary
		summaryBlocks = append(summaryBlocks, strings.Join(blocks[bi][:li], "\n"))
	}
	summary := strings.Join(summaryBlocks, "\n\n")

	candidates := append([]string(nil), blocks[bi][li+1:]...)
	// модель иногда разделяет пункты пустыми строками: продолжаем, пока следующий абзац начинается с пункта
	for _, b := range blocks[bi+1:] {
		if _, _, ok := parseMatchLine(b[0]); !ok {
			break
		}
		candidates = append(candidates, b...)
	}

	matches := make([]Match, 0, MaxMatches)
	for _, line := range candidates {
		if len(matches) == MaxMatches {
			if _, _, ok := parseMatchLine(line); ok {
				st.Extra++
			}
			continue
		}
		st.Lines++
		name, pct, ok := parseMatchLine(line)
		if !ok {
			st.Skipped++
			continue
		}
		matches = append(matches, Match{Name: name, Percentage: pct})
	}
	if len(matches) == 0 {
		return Unparseable(raw), st
	}
	return Identified(summary, matches), st
}

// splitBlocks режет текст на абзацы по пустым строкам; строки внутри абзаца обрезаны.
func splitBlocks(text string) [][]string {
	var (
		blocks [][]string
		cur    []string
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(cur) > 0 {
				blocks = append(blocks, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}

// findListIntro возвращает (абзац, строка) вступления к списку, либо (-1, -1).
// Сначала ищем по первым строкам абзацев, потом: по любой строке.
func findListIntro(blocks [][]string) (int, int) {
	for i, b := range blocks {
		if isListIntro(b[0]) {
			return i, 0
		}
	}
	for i, b := range blocks {
		for j := 1; j < len(b); j++ {
			if isListIntro(b[j]) {
				return i, j
			}
		}
	}
	return -1, -1
}

func isListIntro(line string) bool {
	return reListIntro.MatchString(fold(stripMarkup(line)))
}

// parseMatchLine разбирает "<n>. <name> (<pct>%)".
// name: всё между номером и последней "(", pct: число внутри скобок.
// Строка без номера ("1." / "1)") или маркера ("-", "•") пунктом не считается.
func parseMatchLine(line string) (string, float64, bool) {
	s, ok := stripOrdinal(strings.TrimLeft(strings.TrimSpace(line), "*_ "))
	if !ok {
		return "", 0, false
	}
	s = strings.TrimRight(s, " .,;:*_")
	if !strings.HasSuffix(s, ")") {
		return "", 0, false
	}
	open := strings.LastIndex(s, "(")
	if open < 0 {
		return "", 0, false
	}

	inner := strings.TrimSpace(s[open+1 : len(s)-1])
	m := rePercent.FindStringSubmatch(inner)
	if m == nil {
		return "", 0, false
	}
	pct, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil || math.IsNaN(pct) || pct < 0 || pct > 100 {
		return "", 0, false
	}

	name := strings.TrimFunc(s[:open], isNameEdge)
	if name == "" {
		return "", 0, false
	}
	return name, pct, true
}

func isNameEdge(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune("*_:-–", r)
}

// stripOrdinal снимает "1." / "1)" / маркер списка "-", "•".
// false, если строка не начинается ни с номера, ни с маркера.
func stripOrdinal(s string) (string, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		return strings.TrimSpace(s[i+1:]), true
	}
	for _, p := range []string{"-", "•"} {
		if strings.HasPrefix(s, p) {
			return strings.TrimSpace(strings.TrimPrefix(s, p)), true
		}
	}
	return s, false
}
