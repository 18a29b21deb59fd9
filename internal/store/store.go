// Package store is the SQLite-backed metadata store for the audio library:
// audio files, tags and transcripts.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS audio_files (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file_path TEXT UNIQUE NOT NULL,
	file_name TEXT NOT NULL,
	title TEXT NOT NULL,
	format TEXT NOT NULL,
	content_hash TEXT NOT NULL DEFAULT '',
	duration REAL DEFAULT 0,
	file_size INTEGER DEFAULT 0,
	sample_rate INTEGER DEFAULT 0,
	channels INTEGER DEFAULT 0,
	date_added TEXT NOT NULL,
	is_transcribed INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS tags (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT UNIQUE NOT NULL,
	color TEXT DEFAULT '#3498db'
);

CREATE TABLE IF NOT EXISTS audio_tags (
	audio_id INTEGER NOT NULL,
	tag_id INTEGER NOT NULL,
	PRIMARY KEY (audio_id, tag_id),
	FOREIGN KEY (audio_id) REFERENCES audio_files(id) ON DELETE CASCADE,
	FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS transcripts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	audio_id INTEGER NOT NULL UNIQUE,
	full_text TEXT DEFAULT '',
	language TEXT DEFAULT '',
	model TEXT DEFAULT '',
	date_transcribed TEXT,
	FOREIGN KEY (audio_id) REFERENCES audio_files(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS transcript_segments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	transcript_id INTEGER NOT NULL,
	start_time REAL NOT NULL,
	end_time REAL NOT NULL,
	text TEXT NOT NULL,
	FOREIGN KEY (transcript_id) REFERENCES transcripts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_audio_title ON audio_files(title);
CREATE INDEX IF NOT EXISTS idx_audio_hash ON audio_files(content_hash);
CREATE INDEX IF NOT EXISTS idx_segments_transcript ON transcript_segments(transcript_id);
`

type AudioFile struct {
	ID            int64
	Path          string
	Name          string
	Title         string
	Format        string
	ContentHash   string
	Duration      time.Duration
	Size          int64
	SampleRate    int
	Channels      int
	DateAdded     time.Time
	IsTranscribed bool
}

type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path, applying the schema.
// The path is always injected by the caller; the store never derives one.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// AddAudio inserts the file, or returns the existing row id when the path is
// already in the library.
func (s *Store) AddAudio(ctx context.Context, f AudioFile) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO audio_files
		 (file_path, file_name, title, format, content_hash, duration, file_size, sample_rate, channels, date_added)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.Path, f.Name, f.Title, f.Format, f.ContentHash,
		f.Duration.Seconds(), f.Size, f.SampleRate, f.Channels,
		f.DateAdded.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert audio file: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil && id != 0 {
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			return id, nil
		}
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		"SELECT id FROM audio_files WHERE file_path = ?", f.Path).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to look up audio file: %w", err)
	}
	return id, nil
}

const audioColumns = `id, file_path, file_name, title, format, content_hash,
	duration, file_size, sample_rate, channels, date_added, is_transcribed`

func scanAudio(row interface{ Scan(...any) error }) (AudioFile, error) {
	var (
		f          AudioFile
		duration   float64
		dateAdded  string
		transcoded int
	)
	err := row.Scan(&f.ID, &f.Path, &f.Name, &f.Title, &f.Format, &f.ContentHash,
		&duration, &f.Size, &f.SampleRate, &f.Channels, &dateAdded, &transcoded)
	if err != nil {
		return AudioFile{}, err
	}
	f.Duration = time.Duration(duration * float64(time.Second))
	f.DateAdded, _ = time.Parse(time.RFC3339, dateAdded)
	f.IsTranscribed = transcoded == 1
	return f, nil
}

func (s *Store) GetAudio(ctx context.Context, id int64) (AudioFile, error) {
	f, err := scanAudio(s.db.QueryRowContext(ctx,
		"SELECT "+audioColumns+" FROM audio_files WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return AudioFile{}, fmt.Errorf("audio file %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return AudioFile{}, fmt.Errorf("failed to get audio file: %w", err)
	}
	return f, nil
}

// GetAudioByHash finds a library entry with the same content, regardless of
// path. Used for import deduplication.
func (s *Store) GetAudioByHash(ctx context.Context, hash string) (AudioFile, error) {
	f, err := scanAudio(s.db.QueryRowContext(ctx,
		"SELECT "+audioColumns+" FROM audio_files WHERE content_hash = ? AND content_hash != ''", hash))
	if errors.Is(err, sql.ErrNoRows) {
		return AudioFile{}, ErrNotFound
	}
	if err != nil {
		return AudioFile{}, fmt.Errorf("failed to get audio file by hash: %w", err)
	}
	return f, nil
}

// SearchAudio lists files whose title or transcript matches query; an empty
// query lists everything. A non-empty tag restricts to files carrying it.
func (s *Store) SearchAudio(ctx context.Context, query, tag string) ([]AudioFile, error) {
	var (
		where []string
		args  []any
	)
	if query != "" {
		where = append(where, `(title LIKE ? OR id IN
			(SELECT audio_id FROM transcripts WHERE full_text LIKE ?))`)
		like := "%" + query + "%"
		args = append(args, like, like)
	}
	if tag != "" {
		where = append(where, `id IN (SELECT at.audio_id FROM audio_tags at
			JOIN tags t ON t.id = at.tag_id WHERE t.name = ?)`)
		args = append(args, tag)
	}

	q := "SELECT " + audioColumns + " FROM audio_files"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY title"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search audio files: %w", err)
	}
	defer rows.Close()

	var out []AudioFile
	for rows.Next() {
		f, err := scanAudio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audio file: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) DeleteAudio(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM audio_files WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete audio file: %w", err)
	}
	return nil
}

// UpdateAudioPath renames a library entry in place.
func (s *Store) UpdateAudioPath(ctx context.Context, id int64, path, name, title string) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE audio_files SET file_path = ?, file_name = ?, title = ? WHERE id = ?",
		path, name, title, id); err != nil {
		return fmt.Errorf("failed to update audio file: %w", err)
	}
	return nil
}
