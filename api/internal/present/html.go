package present

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
)

// md без html.WithUnsafe: сырой HTML из ответа модели в страницу не попадает.
var md = goldmark.New()

// SummaryHTML рендерит summary (модель любит **жирный**) в HTML.
func SummaryHTML(summary string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(summary), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
