package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Tag struct {
	ID    int64
	Name  string
	Color string
}

const defaultTagColor = "#3498db"

// AddTag creates the tag if needed and returns its id.
func (s *Store) AddTag(ctx context.Context, name, color string) (int64, error) {
	if color == "" {
		color = defaultTagColor
	}
	if _, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO tags (name, color) VALUES (?, ?)", name, color); err != nil {
		return 0, fmt.Errorf("failed to insert tag: %w", err)
	}
	var id int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT id FROM tags WHERE name = ?", name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to look up tag: %w", err)
	}
	return id, nil
}

func (s *Store) TagAudio(ctx context.Context, audioID int64, tagName string) error {
	tagID, err := s.AddTag(ctx, tagName, "")
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO audio_tags (audio_id, tag_id) VALUES (?, ?)",
		audioID, tagID); err != nil {
		return fmt.Errorf("failed to tag audio file: %w", err)
	}
	return nil
}

func (s *Store) UntagAudio(ctx context.Context, audioID int64, tagName string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM audio_tags WHERE audio_id = ? AND
		 tag_id = (SELECT id FROM tags WHERE name = ?)`,
		audioID, tagName); err != nil {
		return fmt.Errorf("failed to untag audio file: %w", err)
	}
	return nil
}

func (s *Store) TagsForAudio(ctx context.Context, audioID int64) ([]Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.name, t.color FROM tags t
		 JOIN audio_tags at ON at.tag_id = t.id
		 WHERE at.audio_id = ? ORDER BY t.name`, audioID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var out []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, color FROM tags ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var out []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTag returns a tag by name.
func (s *Store) GetTag(ctx context.Context, name string) (Tag, error) {
	var t Tag
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, color FROM tags WHERE name = ?", name).Scan(&t.ID, &t.Name, &t.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return Tag{}, fmt.Errorf("tag %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return Tag{}, fmt.Errorf("failed to get tag: %w", err)
	}
	return t, nil
}
