// Package library manages the collection of audio recordings on disk and in
// the metadata store: importing files and folders, deduplicating by content
// hash, renaming and removing.
package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"lukechampine.com/blake3"

	"github.com/Bertii1/Audio-Recording-Library/internal/codec"
	"github.com/Bertii1/Audio-Recording-Library/internal/store"
)

// HashFile returns the hex BLAKE3 digest of the file contents.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// ScanFolder walks root and returns the audio file paths under it, sorted.
func ScanFolder(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && codec.IsAudioPath(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan folder: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// titleFor derives the display title from a file path.
func titleFor(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type Manager struct {
	store *store.Store
}

func NewManager(s *store.Store) *Manager {
	return &Manager{store: s}
}

// ImportFile adds a single file to the library. Files whose content is
// already present are not imported twice; the existing entry is returned
// with ErrDuplicate.
func (m *Manager) ImportFile(ctx context.Context, path string) (store.AudioFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return store.AudioFile{}, fmt.Errorf("failed to resolve path: %w", err)
	}
	if !codec.IsAudioPath(abs) {
		return store.AudioFile{}, fmt.Errorf("unsupported audio file %q", abs)
	}

	fi, err := os.Stat(abs)
	if err != nil {
		return store.AudioFile{}, fmt.Errorf("failed to stat file: %w", err)
	}

	hash, err := HashFile(abs)
	if err != nil {
		return store.AudioFile{}, err
	}
	if existing, err := m.store.GetAudioByHash(ctx, hash); err == nil {
		return existing, ErrDuplicate
	} else if !errors.Is(err, store.ErrNotFound) {
		return store.AudioFile{}, err
	}

	format, _ := codec.FormatForPath(abs)
	f := store.AudioFile{
		Path:        abs,
		Name:        filepath.Base(abs),
		Title:       titleFor(abs),
		Format:      string(format),
		ContentHash: hash,
		Size:        fi.Size(),
		DateAdded:   time.Now().UTC(),
	}

	// Probing requires a full decode, so a broken file fails the import here
	// rather than later at edit time.
	info, err := codec.Probe(ctx, abs)
	if err != nil {
		return store.AudioFile{}, fmt.Errorf("failed to probe %q: %w", abs, err)
	}
	f.Duration = info.Duration
	f.SampleRate = info.SampleRate
	f.Channels = info.Channels

	id, err := m.store.AddAudio(ctx, f)
	if err != nil {
		return store.AudioFile{}, err
	}
	f.ID = id
	return f, nil
}

// ErrDuplicate marks an import whose content already exists in the library.
var ErrDuplicate = errors.New("file already in library")

// ImportFolder imports every audio file under root. Individual failures are
// logged and skipped; the successfully imported files are returned.
func (m *Manager) ImportFolder(ctx context.Context, root string) ([]store.AudioFile, error) {
	paths, err := ScanFolder(root)
	if err != nil {
		return nil, err
	}

	var imported []store.AudioFile
	for _, path := range paths {
		f, err := m.ImportFile(ctx, path)
		if errors.Is(err, ErrDuplicate) {
			slog.Info("skipping duplicate file", slog.String("path", path))
			continue
		}
		if err != nil {
			slog.Error("failed to import file", slog.String("path", path), slog.String("err", err.Error()))
			continue
		}
		imported = append(imported, f)
	}
	return imported, nil
}

// Remove deletes a library entry, and its file on disk when deleteFile is set.
func (m *Manager) Remove(ctx context.Context, id int64, deleteFile bool) error {
	f, err := m.store.GetAudio(ctx, id)
	if err != nil {
		return err
	}
	if err := m.store.DeleteAudio(ctx, id); err != nil {
		return err
	}
	if deleteFile {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to delete file: %w", err)
		}
	}
	return nil
}

// Rename moves the file on disk to newName (keeping its directory and
// extension) and updates the library entry.
func (m *Manager) Rename(ctx context.Context, id int64, newName string) (store.AudioFile, error) {
	f, err := m.store.GetAudio(ctx, id)
	if err != nil {
		return store.AudioFile{}, err
	}

	ext := filepath.Ext(f.Path)
	newPath := filepath.Join(filepath.Dir(f.Path), newName+ext)
	if newPath == f.Path {
		return f, nil
	}
	if _, err := os.Stat(newPath); err == nil {
		return store.AudioFile{}, fmt.Errorf("file %q already exists", newPath)
	}

	if err := os.Rename(f.Path, newPath); err != nil {
		return store.AudioFile{}, fmt.Errorf("failed to rename file: %w", err)
	}
	if err := m.store.UpdateAudioPath(ctx, id, newPath, filepath.Base(newPath), newName); err != nil {
		return store.AudioFile{}, err
	}

	f.Path = newPath
	f.Name = filepath.Base(newPath)
	f.Title = newName
	return f, nil
}
