package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo against the resume_analyses table.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new analysis row.
func (r *PGRepo) Create(ctx context.Context, record Record) error {
	strengths, err := marshalJSONB(record.Analysis.Strengths)
	if err != nil {
		return fmt.Errorf("marshal strengths: %w", err)
	}
	gaps, err := marshalJSONB(record.Analysis.Gaps)
	if err != nil {
		return fmt.Errorf("marshal gaps: %w", err)
	}
	improvements, err := marshalJSONB(record.Analysis.Improvements)
	if err != nil {
		return fmt.Errorf("marshal improvements: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO resume_analyses (id, user_id, job_description, match_score, strengths, gaps, improvements,
			optimized_section, before_after_comparison, keyword_match_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		record.ID,
		record.UserID,
		record.JobDescription,
		record.Analysis.MatchScore,
		strengths,
		gaps,
		improvements,
		record.Analysis.OptimizedSection,
		record.Analysis.BeforeAfterComparison,
		record.Analysis.KeywordMatchScore,
		record.CreatedAt,
	)
	return err
}

const selectColumns = `id, user_id, job_description, match_score, strengths, gaps, improvements,
	optimized_section, before_after_comparison, keyword_match_score, created_at`

// GetByID fetches one analysis owned by userID.
func (r *PGRepo) GetByID(ctx context.Context, userID, analysisID string) (Record, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+selectColumns+`
		FROM resume_analyses
		WHERE id = $1 AND user_id = $2
	`, analysisID, userID)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

// ListByUser returns a page of the user's analyses, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Record, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM resume_analyses
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var rec Record
	var strengths, gaps, improvements []byte
	var optimized, beforeAfter sql.NullString
	var matchScore, keywordScore sql.NullInt64
	if err := s.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.JobDescription,
		&matchScore,
		&strengths,
		&gaps,
		&improvements,
		&optimized,
		&beforeAfter,
		&keywordScore,
		&rec.CreatedAt,
	); err != nil {
		return Record{}, err
	}

	rec.Analysis.MatchScore = int(matchScore.Int64)
	rec.Analysis.KeywordMatchScore = int(keywordScore.Int64)
	rec.Analysis.OptimizedSection = optimized.String
	rec.Analysis.BeforeAfterComparison = beforeAfter.String

	var err error
	if rec.Analysis.Strengths, err = unmarshalList(strengths); err != nil {
		return Record{}, fmt.Errorf("unmarshal strengths: %w", err)
	}
	if rec.Analysis.Gaps, err = unmarshalList(gaps); err != nil {
		return Record{}, fmt.Errorf("unmarshal gaps: %w", err)
	}
	if rec.Analysis.Improvements, err = unmarshalList(improvements); err != nil {
		return Record{}, fmt.Errorf("unmarshal improvements: %w", err)
	}
	return rec, nil
}

func marshalJSONB(list []string) ([]byte, error) {
	if list == nil {
		list = []string{}
	}
	return json.Marshal(list)
}

func unmarshalList(data []byte) ([]string, error) {
	out := []string{}
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
