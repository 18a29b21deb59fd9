package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Bertii1/Audio-Recording-Library/internal/transcribe"
)

// ReplaceTranscript swaps the stored transcript for an audio file with res in
// a single transaction, so readers never observe a partially written one. The
// is_transcribed flag is flipped in the same transaction.
func (s *Store) ReplaceTranscript(ctx context.Context, audioID int64, res transcribe.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM transcripts WHERE audio_id = ?", audioID); err != nil {
		return fmt.Errorf("failed to delete old transcript: %w", err)
	}

	r, err := tx.ExecContext(ctx,
		`INSERT INTO transcripts (audio_id, full_text, language, model, date_transcribed)
		 VALUES (?, ?, ?, ?, ?)`,
		audioID, res.FullText, res.Language, res.Model, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert transcript: %w", err)
	}
	transcriptID, err := r.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get transcript id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO transcript_segments (transcript_id, start_time, end_time, text) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare segment insert: %w", err)
	}
	defer stmt.Close()
	for _, seg := range res.Segments {
		if _, err := stmt.ExecContext(ctx, transcriptID, seg.Start, seg.End, seg.Text); err != nil {
			return fmt.Errorf("failed to insert segment: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE audio_files SET is_transcribed = 1 WHERE id = ?", audioID); err != nil {
		return fmt.Errorf("failed to mark audio transcribed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transcript: %w", err)
	}
	return nil
}

// GetTranscript loads the transcript and its segments for an audio file.
func (s *Store) GetTranscript(ctx context.Context, audioID int64) (transcribe.Result, error) {
	var (
		res          transcribe.Result
		transcriptID int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, full_text, language, model FROM transcripts WHERE audio_id = ?",
		audioID).Scan(&transcriptID, &res.FullText, &res.Language, &res.Model)
	if errors.Is(err, sql.ErrNoRows) {
		return transcribe.Result{}, fmt.Errorf("transcript for audio %d: %w", audioID, ErrNotFound)
	}
	if err != nil {
		return transcribe.Result{}, fmt.Errorf("failed to get transcript: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT start_time, end_time, text FROM transcript_segments
		 WHERE transcript_id = ? ORDER BY start_time, id`, transcriptID)
	if err != nil {
		return transcribe.Result{}, fmt.Errorf("failed to list segments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var seg transcribe.Segment
		if err := rows.Scan(&seg.Start, &seg.End, &seg.Text); err != nil {
			return transcribe.Result{}, fmt.Errorf("failed to scan segment: %w", err)
		}
		res.Segments = append(res.Segments, seg)
	}
	return res, rows.Err()
}

// DeleteTranscript removes a transcript and clears the is_transcribed flag.
func (s *Store) DeleteTranscript(ctx context.Context, audioID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM transcripts WHERE audio_id = ?", audioID); err != nil {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE audio_files SET is_transcribed = 0 WHERE id = ?", audioID); err != nil {
		return fmt.Errorf("failed to clear transcribed flag: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
