package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"pup-project/api/internal/breed"
)

var ErrNotFound = sql.ErrNoRows

var schema = []string{`
create table if not exists breed_submissions (
  id          uuid primary key,
  created_at  timestamptz not null default now(),
  chat_id     bigint,
  source      text not null,
  image_hash  text not null,
  weight_lbs  double precision not null,
  height_in   double precision not null,
  engine      text not null,
  model       text not null,
  outcome     text not null,
  summary     text,
  top_breed   text,
  result_json jsonb not null,
  raw_text    text not null
)`,
	`create index if not exists breed_submissions_chat_idx on breed_submissions (chat_id, created_at desc)`,
}

// Submission: одна отправка фото и то, что из неё получилось. Только история, не кэш.
type Submission struct {
	ID        uuid.UUID
	CreatedAt time.Time
	ChatID    int64
	Source    string // telegram | http | web | console
	ImageHash string
	WeightLbs float64
	HeightIn  float64
	Engine    string
	Model     string
	Result    breed.Result
	RawText   string
}

type SubmissionRepo struct{ DB *sql.DB }

func NewSubmissionRepo(db *sql.DB) *SubmissionRepo { return &SubmissionRepo{DB: db} }

func (r *SubmissionRepo) EnsureSchema(ctx context.Context) error {
	for _, q := range schema {
		if _, err := r.DB.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (r *SubmissionRepo) Insert(ctx context.Context, s Submission) error {
	if s.ID == uuid.Nil {
		return errors.New("submission id is empty")
	}
	js, err := json.Marshal(s.Result)
	if err != nil {
		return err
	}
	var top sql.NullString
	if m, ok := s.Result.Top(); ok {
		top = sql.NullString{String: m.Name, Valid: true}
	}
	const q = `
insert into breed_submissions (
  id, chat_id, source, image_hash, weight_lbs, height_in,
  engine, model, outcome, summary, top_breed, result_json, raw_text
) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`
	_, err = r.DB.ExecContext(ctx, q,
		s.ID, s.ChatID, s.Source, s.ImageHash, s.WeightLbs, s.HeightIn,
		s.Engine, s.Model, string(s.Result.Outcome), nullIfEmpty(s.Result.Summary), top, js, s.RawText,
	)
	return err
}

const selectCols = `select id, created_at, coalesce(chat_id,0), source, image_hash, weight_lbs, height_in,
       engine, model, result_json, raw_text
from breed_submissions`

func (r *SubmissionRepo) FindByID(ctx context.Context, id uuid.UUID) (*Submission, error) {
	row := r.DB.QueryRowContext(ctx, selectCols+` where id = $1`, id)
	s, err := scanSubmission(row)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// RecentByChat: последние отправки чата, новые первыми.
func (r *SubmissionRepo) RecentByChat(ctx context.Context, chatID int64, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.DB.QueryContext(ctx, selectCols+` where chat_id = $1 order by created_at desc limit $2`, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// PurgeOlderThan удаляет очень старые записи, чтобы не раздувать БД.
func (r *SubmissionRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be > 0")
	}
	cutoff := time.Now().Add(-olderThan)
	res, err := r.DB.ExecContext(ctx, `delete from breed_submissions where created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(sc scanner) (Submission, error) {
	var (
		s  Submission
		js []byte
	)
	if err := sc.Scan(&s.ID, &s.CreatedAt, &s.ChatID, &s.Source, &s.ImageHash, &s.WeightLbs, &s.HeightIn,
		&s.Engine, &s.Model, &js, &s.RawText); err != nil {
		return Submission{}, err
	}
	if err := json.Unmarshal(js, &s.Result); err != nil {
		// битый JSON: отдаём как нераспознанный ответ, raw_text у нас есть
		s.Result = breed.Unparseable(s.RawText)
	}
	return s, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
