package handle

import (
	"bytes"
	"encoding/base64"
	"html/template"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"pup-project/api/internal/breed"
	"pup-project/api/internal/identify"
	"pup-project/api/internal/present"
	"pup-project/api/internal/util"
)

const maxUploadBytes = 10 << 20

var page = template.Must(template.New("page").Funcs(template.FuncMap{"pct": present.FormatPercent}).Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Msg.Title}}</title>
</head>
<body>
<div class="result">
  <h2 class="resultHeader">{{.Msg.Title}}</h2>
  <form class="assets" method="post" action="/identify" enctype="multipart/form-data">
    <input class="imgUpload" type="file" name="image" accept="image/*" required>
    <div class="sizeInputs">
      <label>Weight (lbs) <input type="number" step="any" min="0" name="weight" value="{{.Weight}}" required></label>
      <label>Height (in) <input type="number" step="any" min="0" name="height" value="{{.Height}}" required></label>
    </div>
    {{- if gt (len .Engines) 1}}
    <select name="llm_name">{{range .Engines}}<option value="{{.}}">{{.}}</option>{{end}}</select>
    {{- end}}
    <button type="submit">Submit</button>
  </form>
  {{- if .Error}}
  <p class="error">{{.Error}}</p>
  {{- end}}
  {{- if .ImageURL}}
  <div class="imageArea"><img src="{{.ImageURL}}" alt="pup" style="max-width:100%;max-height:480px"></div>
  {{- end}}
  {{- if eq .Outcome "rejected"}}
  <div class="responseText"><p>{{.Msg.Rejected}}</p></div>
  {{- else if eq .Outcome "identified"}}
  <div class="responseText">
    {{.Summary}}
    <h3>{{.Msg.ListHeader}}</h3>
    <ol>{{range .Result.Matches}}<li>{{.Name}} ({{pct .Percentage}})</li>{{end}}</ol>
  </div>
  {{- else if eq .Outcome "unparseable"}}
  <div class="responseText"><p>{{.Msg.NoMatches}}</p></div>
  {{- end}}
</div>
</body>
</html>
`))

type pageData struct {
	Msg      present.Messages
	Engines  []string
	Weight   string
	Height   string
	Error    string
	ImageURL template.URL
	Outcome  string
	Summary  template.HTML
	Result   breed.Result
}

func (h *Handle) pageData() pageData {
	d := pageData{Msg: h.msg}
	if h.svc.Engines != nil {
		d.Engines = h.svc.Engines.Available()
	}
	return d
}

func (h *Handle) render(w http.ResponseWriter, code int, d pageData) {
	var buf bytes.Buffer
	if err := page.Execute(&buf, d); err != nil {
		log.Printf("web: render: %v", err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

// WebForm: GET /: форма загрузки.
func (h *Handle) WebForm(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}
	h.render(w, http.StatusOK, h.pageData())
}

// WebIdentify: POST /identify (multipart): image, weight, height, llm_name.
func (h *Handle) WebIdentify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	d := h.pageData()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		d.Error = "bad form: " + err.Error()
		h.render(w, http.StatusBadRequest, d)
		return
	}
	d.Weight = strings.TrimSpace(r.FormValue("weight"))
	d.Height = strings.TrimSpace(r.FormValue("height"))

	q, err := formQuery(d.Weight, d.Height)
	if err != nil {
		d.Error = h.msg.BadQuery
		h.render(w, http.StatusBadRequest, d)
		return
	}

	f, _, err := r.FormFile("image")
	if err != nil {
		d.Error = "image is required"
		h.render(w, http.StatusBadRequest, d)
		return
	}
	defer f.Close()
	img, err := io.ReadAll(f)
	if err != nil || len(img) == 0 {
		d.Error = "image is required"
		h.render(w, http.StatusBadRequest, d)
		return
	}
	if mime := util.SniffMimeHTTP(img); strings.HasPrefix(mime, "image/") {
		d.ImageURL = template.URL(util.MakeDataURL(mime, base64.StdEncoding.EncodeToString(img)))
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	rep, err := h.svc.Identify(ctx, identify.Submission{
		Image:      img,
		Query:      q,
		EngineName: r.FormValue("llm_name"),
		Source:     "web",
	})
	if err != nil {
		code := statusFor(err)
		d.Error = err.Error()
		if code != http.StatusBadRequest {
			d.Error = h.msg.EngineError
		}
		h.render(w, code, d)
		return
	}

	d.Result = rep.Result
	d.Outcome = string(rep.Result.Outcome)
	if rep.Result.IsIdentified() && rep.Result.Summary != "" {
		if d.Summary, err = present.SummaryHTML(rep.Result.Summary); err != nil {
			d.Summary = template.HTML("<p>" + template.HTMLEscapeString(rep.Result.Summary) + "</p>")
		}
	}
	h.render(w, http.StatusOK, d)
}

func formQuery(weight, height string) (breed.Query, error) {
	wv, err1 := strconv.ParseFloat(strings.Replace(weight, ",", ".", 1), 64)
	hv, err2 := strconv.ParseFloat(strings.Replace(height, ",", ".", 1), 64)
	if err1 != nil || err2 != nil {
		return breed.Query{}, breed.ErrInvalidQuery
	}
	q := breed.Query{WeightLbs: wv, HeightIn: hv}
	return q, q.Validate()
}
