package handle

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"pup-project/api/internal/breed"
	"pup-project/api/internal/identify"
	"pup-project/api/internal/llm"
	"pup-project/api/internal/present"
	"pup-project/api/internal/store"
)

type stubEngine struct {
	reply string
	err   error
}

func (s *stubEngine) Name() string     { return "gemini" }
func (s *stubEngine) GetModel() string { return "stub" }
func (s *stubEngine) Identify(context.Context, llm.Request) (string, error) {
	return s.reply, s.err
}

const reply = "The **Labrador** is friendly.\n\nHere are four possible matching dog breeds:\n" +
	"1. Labrador Retriever (40%)\n2. Golden Retriever (30%)\n3. Flat-Coated Retriever (20%)\n4. Chesapeake Bay Retriever (10%)"

func newServer(t *testing.T, eng llm.Engine) *httptest.Server {
	t.Helper()
	svc := &identify.Service{Engines: &llm.Engines{Gemini: eng}}
	mux := http.NewServeMux()
	New(svc, present.DefaultMessages()).Routes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func postJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(v)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestIdentifyOK(t *testing.T) {
	srv := newServer(t, &stubEngine{reply: reply})
	resp := postJSON(t, srv.URL+"/v1/breed/identify", identifyReq{
		ImageB64: base64.StdEncoding.EncodeToString(pngBytes(t)),
		Weight:   70,
		Height:   23,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var rep identify.Report
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		t.Fatal(err)
	}
	if rep.Engine != "gemini" || rep.Model != "stub" {
		t.Errorf("engine/model = %s/%s", rep.Engine, rep.Model)
	}
	if !rep.Result.IsIdentified() || len(rep.Result.Matches) != 4 {
		t.Fatalf("result = %+v", rep.Result)
	}
	if rep.Result.Matches[0].Name != "Labrador Retriever" || rep.Result.Matches[0].Percentage != 40 {
		t.Errorf("top = %+v", rep.Result.Matches[0])
	}
}

func TestIdentifyErrors(t *testing.T) {
	img := base64.StdEncoding.EncodeToString(pngBytes(t))
	tests := []struct {
		name string
		eng  llm.Engine
		req  any
		want int
	}{
		{"bad json", &stubEngine{}, "nope", http.StatusBadRequest},
		{"bad base64", &stubEngine{}, identifyReq{ImageB64: "%%%", Weight: 1, Height: 1}, http.StatusBadRequest},
		{"bad query", &stubEngine{}, identifyReq{ImageB64: img, Weight: 0, Height: 1}, http.StatusBadRequest},
		{"unknown engine", &stubEngine{}, identifyReq{LLMName: "claude", ImageB64: img, Weight: 1, Height: 1}, http.StatusBadRequest},
		{"not an image", &stubEngine{}, identifyReq{ImageB64: base64.StdEncoding.EncodeToString([]byte("hello")), Weight: 1, Height: 1}, http.StatusBadRequest},
		{"engine failure", &stubEngine{err: errors.New("quota")}, identifyReq{ImageB64: img, Weight: 1, Height: 1}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.eng)
			resp := postJSON(t, srv.URL+"/v1/breed/identify", tt.req)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newServer(t, &stubEngine{})
	for _, path := range []string{"/v1/breed/identify", "/v1/breed/interpret", "/identify"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("GET %s = %d", path, resp.StatusCode)
		}
	}
}

func TestInterpret(t *testing.T) {
	srv := newServer(t, &stubEngine{})
	tests := []struct {
		raw  string
		want breed.Outcome
	}{
		{reply, breed.OutcomeIdentified},
		{breed.RejectionSentinel, breed.OutcomeRejected},
		{"I think it is a cat.", breed.OutcomeUnparseable},
	}
	for _, tt := range tests {
		resp := postJSON(t, srv.URL+"/v1/breed/interpret", interpretReq{RawText: tt.raw})
		var res breed.Result
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			t.Fatal(err)
		}
		if res.Outcome != tt.want {
			t.Errorf("interpret(%q) = %s, want %s", tt.raw, res.Outcome, tt.want)
		}
	}
}

func TestWebForm(t *testing.T) {
	srv := newServer(t, &stubEngine{})
	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(buf.String(), `name="weight"`) {
		t.Fatalf("status = %d body = %s", resp.StatusCode, buf.String())
	}

	resp2, err := http.Get(srv.URL + "/missing")
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("GET /missing = %d", resp2.StatusCode)
	}
}

func postForm(t *testing.T, url string, img []byte, weight, height string) (int, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("weight", weight)
	_ = mw.WriteField("height", height)
	if img != nil {
		fw, _ := mw.CreateFormFile("image", "pup.png")
		_, _ = fw.Write(img)
	}
	_ = mw.Close()
	resp, err := http.Post(url, mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out bytes.Buffer
	_, _ = out.ReadFrom(resp.Body)
	return resp.StatusCode, out.String()
}

func TestWebIdentify(t *testing.T) {
	srv := newServer(t, &stubEngine{reply: reply})
	code, body := postForm(t, srv.URL+"/identify", pngBytes(t), "70", "23,5")
	if code != http.StatusOK {
		t.Fatalf("status = %d: %s", code, body)
	}
	for _, want := range []string{
		"<strong>Labrador</strong>",
		"<li>Labrador Retriever (40%)</li>",
		"<li>Chesapeake Bay Retriever (10%)</li>",
		`src="data:image/png;base64,`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page does not contain %q", want)
		}
	}
}

func TestWebIdentifyRejected(t *testing.T) {
	srv := newServer(t, &stubEngine{reply: breed.RejectionSentinel})
	code, body := postForm(t, srv.URL+"/identify", pngBytes(t), "10", "10")
	if code != http.StatusOK || !strings.Contains(body, present.DefaultMessages().Rejected) {
		t.Errorf("status = %d body = %s", code, body)
	}
	if strings.Contains(body, "<ol>") {
		t.Errorf("rejected page renders a list")
	}
}

func TestWebIdentifyBadInput(t *testing.T) {
	srv := newServer(t, &stubEngine{reply: reply})
	if code, _ := postForm(t, srv.URL+"/identify", pngBytes(t), "heavy", "10"); code != http.StatusBadRequest {
		t.Errorf("bad weight: status = %d", code)
	}
	if code, _ := postForm(t, srv.URL+"/identify", nil, "10", "10"); code != http.StatusBadRequest {
		t.Errorf("no image: status = %d", code)
	}
}

type memHistory map[uuid.UUID]store.Submission

func (m memHistory) FindByID(_ context.Context, id uuid.UUID) (*store.Submission, error) {
	s, ok := m[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

func TestSubmission(t *testing.T) {
	id := uuid.New()
	hist := memHistory{id: {ID: id, Source: "web", WeightLbs: 70, HeightIn: 23, Engine: "gemini", Result: breed.Rejected()}}
	svc := &identify.Service{Engines: &llm.Engines{Gemini: &stubEngine{}}}
	mux := http.NewServeMux()
	New(svc, present.DefaultMessages()).WithHistory(hist).Routes(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tests := []struct {
		path string
		want int
	}{
		{"/v1/breed/submissions/" + id.String(), http.StatusOK},
		{"/v1/breed/submissions/" + uuid.NewString(), http.StatusNotFound},
		{"/v1/breed/submissions/not-a-uuid", http.StatusBadRequest},
	}
	for _, tt := range tests {
		resp, err := http.Get(srv.URL + tt.path)
		if err != nil {
			t.Fatal(err)
		}
		var got submissionResp
		_ = json.NewDecoder(resp.Body).Decode(&got)
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, resp.StatusCode, tt.want)
		}
		if tt.want == http.StatusOK && (got.ID != id || !got.Result.IsRejected() || got.Weight != 70) {
			t.Errorf("submission = %+v", got)
		}
	}
}
