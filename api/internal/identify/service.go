package identify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"pup-project/api/internal/breed"
	"pup-project/api/internal/llm"
	"pup-project/api/internal/store"
	"pup-project/api/internal/util"
)

// ErrEngineFailed оборачивает ошибки вызова модели (сеть, квоты, блокировки).
var ErrEngineFailed = errors.New("llm engine failed")

// Recorder пишет историю отправок; *store.SubmissionRepo.
type Recorder interface {
	Insert(ctx context.Context, s store.Submission) error
}

type Service struct {
	Engines     *llm.Engines
	Interpreter *breed.Interpreter
	Recorder    Recorder // nil, если история не ведётся
	MaxPixels   int
}

// Submission is one photo plus weight/height. Engine wins over EngineName when set.
type Submission struct {
	Image      []byte
	Query      breed.Query
	Engine     llm.Engine
	EngineName string
	Model      string // пусто: модель движка по умолчанию
	ChatID     int64
	Source     string
}

type Report struct {
	ID      uuid.UUID     `json:"id"`
	Engine  string        `json:"engine"`
	Model   string        `json:"model"`
	Result  breed.Result  `json:"result"`
	Elapsed time.Duration `json:"-"`
}

// Identify prepares the photo, asks the model once, and interprets the reply.
// Nothing is cached or retried here.
func (s *Service) Identify(ctx context.Context, sub Submission) (Report, error) {
	if err := sub.Query.Validate(); err != nil {
		return Report{}, err
	}
	img, mime, err := util.PrepareImage(sub.Image, s.maxPixels())
	if err != nil {
		return Report{}, err
	}

	eng := sub.Engine
	if eng == nil {
		if s.Engines == nil {
			return Report{}, llm.ErrUnknownEngine
		}
		if eng, err = s.Engines.GetEngine(sub.EngineName); err != nil {
			return Report{}, err
		}
	}

	req := llm.Request{Image: img, MIME: mime, Query: sub.Query, Model: sub.Model}
	model := req.ModelOr(eng.GetModel())

	start := time.Now()
	raw, err := eng.Identify(ctx, req)
	if err != nil {
		log.Printf("identify: engine=%s model=%s error: %v", eng.Name(), model, err)
		return Report{}, fmt.Errorf("%w (%s): %w", ErrEngineFailed, eng.Name(), err)
	}

	res, st := s.interpreter().Analyze(raw)
	rep := Report{
		ID:      uuid.New(),
		Engine:  eng.Name(),
		Model:   model,
		Result:  res,
		Elapsed: time.Since(start),
	}
	log.Printf("identify: id=%s engine=%s model=%s outcome=%s matches=%d skipped=%d took=%s",
		rep.ID, rep.Engine, rep.Model, res.Outcome, len(res.Matches), st.Skipped, rep.Elapsed.Round(time.Millisecond))
	switch {
	case res.IsUnparseable():
		log.Printf("identify: id=%s unparseable reply: %q", rep.ID, util.Truncate(raw, 500))
	case res.IsIdentified() && math.Abs(res.Total()-100) > 1:
		log.Printf("identify: id=%s percentages total %.1f, not 100", rep.ID, res.Total())
	}

	if s.Recorder != nil {
		rec := store.Submission{
			ID:        rep.ID,
			ChatID:    sub.ChatID,
			Source:    sub.Source,
			ImageHash: util.SHA256Hex(sub.Image),
			WeightLbs: sub.Query.WeightLbs,
			HeightIn:  sub.Query.HeightIn,
			Engine:    rep.Engine,
			Model:     rep.Model,
			Result:    res,
			RawText:   raw,
		}
		if err := s.Recorder.Insert(ctx, rec); err != nil {
			// история не критична: пользователь всё равно получает ответ
			log.Printf("identify: id=%s history insert: %v", rep.ID, err)
		}
	}
	return rep, nil
}

// Interpret runs only the text interpretation, no model call.
func (s *Service) Interpret(raw string) breed.Result {
	return s.interpreter().Interpret(raw)
}

func (s *Service) interpreter() *breed.Interpreter {
	if s.Interpreter != nil {
		return s.Interpreter
	}
	return breed.NewInterpreter()
}

func (s *Service) maxPixels() int {
	if s.MaxPixels > 0 {
		return s.MaxPixels
	}
	return util.DefaultMaxPixels
}
