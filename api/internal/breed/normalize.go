package breed

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// normalizeText готовит сырой ответ модели к разбору: валидный UTF-8, NFC,
// единые переводы строк, без табов и неразрывных пробелов.
func normalizeText(raw string) string {
	s := strings.ToValidUTF8(raw, "\uFFFD")
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\u00a0', '\u202f':
			return ' '
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// fold: ключ для сравнения без учёта регистра и пробелов.
// cases.Caser хранит состояние, поэтому создаём на каждый вызов.
func fold(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return cases.Fold().String(s)
}

// stripMarkup снимает markdown-обвязку по краям строки (**…**, # заголовки, > цитаты).
func stripMarkup(s string) string {
	return strings.Trim(strings.TrimSpace(s), "*_#> \t")
}

// sentinelKey: ключ сравнения для фразы-отказа: без кавычек, markdown и
// завершающей пунктуации.
func sentinelKey(s string) string {
	s = stripMarkup(s)
	s = strings.Trim(s, "\"'`“”«» ")
	s = strings.TrimRight(s, ".!? ")
	return fold(s)
}
