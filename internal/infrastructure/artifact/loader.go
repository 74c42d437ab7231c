// Package artifact bootstraps and loads the offline-trained model artifacts:
// the movie catalog CSV, the similarity matrix, and the vectorizer vocabulary.
package artifact

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/hszk-dev/cinematch/internal/domain/model"
	"github.com/hszk-dev/cinematch/internal/domain/repository"
	"github.com/hszk-dev/cinematch/internal/recommender"
)

// Artifact file names, both locally and as object storage keys.
const (
	MoviesFile     = "movies.csv"
	MatrixFile     = "similarity.bin"
	VocabularyFile = "vocabulary.json"
)

// Loader ensures artifacts are present locally and decodes them.
// The vocabulary is optional (only surfaced by the model-info endpoint);
// catalog and matrix are required.
type Loader struct {
	dataDir string
	storage repository.ObjectStorage
}

// NewLoader creates a Loader. storage may be nil, in which case Ensure only
// checks for local files and never downloads.
func NewLoader(dataDir string, storage repository.ObjectStorage) *Loader {
	return &Loader{
		dataDir: dataDir,
		storage: storage,
	}
}

// Ensure makes the artifact files available in the data directory,
// downloading missing ones from object storage in parallel.
// A missing vocabulary is logged and tolerated; a missing catalog or matrix
// is a fatal startup error.
func (l *Loader) Ensure(ctx context.Context) error {
	if err := os.MkdirAll(l.dataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range []string{MoviesFile, MatrixFile, VocabularyFile} {
		g.Go(func() error {
			return l.ensureFile(ctx, name)
		})
	}
	return g.Wait()
}

func (l *Loader) ensureFile(ctx context.Context, name string) error {
	path := filepath.Join(l.dataDir, name)

	if info, err := os.Stat(path); err == nil {
		slog.Info("found artifact", slog.String("file", name), slog.Int64("bytes", info.Size()))
		return nil
	}

	if l.storage == nil {
		if name == VocabularyFile {
			slog.Warn("vocabulary artifact missing, model info will omit it", slog.String("file", name))
			return nil
		}
		return fmt.Errorf("artifact %s missing and no object storage configured", name)
	}

	present, err := l.storage.Exists(ctx, name)
	if err != nil {
		return fmt.Errorf("check %s in object storage: %w", name, err)
	}
	if !present {
		if name == VocabularyFile {
			slog.Warn("vocabulary artifact missing, model info will omit it", slog.String("file", name))
			return nil
		}
		return fmt.Errorf("artifact %s not found in object storage", name)
	}

	slog.Info("downloading artifact", slog.String("file", name))
	obj, err := l.storage.Download(ctx, name)
	if err != nil {
		return fmt.Errorf("download %s: %w", name, err)
	}
	defer obj.Close()

	// Write via a temp file so a failed download never leaves a truncated
	// artifact that would be trusted on the next start.
	tmp, err := os.CreateTemp(l.dataDir, name+".download-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, obj)
	if err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("install %s: %w", name, err)
	}

	slog.Info("downloaded artifact", slog.String("file", name), slog.Int64("bytes", n))
	return nil
}

// LoadMovies decodes the catalog CSV (header movieId,title,genres).
// Order is preserved: row i becomes catalog position i.
func (l *Loader) LoadMovies(ctx context.Context) ([]model.Movie, error) {
	f, err := os.Open(filepath.Join(l.dataDir, MoviesFile))
	if err != nil {
		return nil, fmt.Errorf("open catalog artifact: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	if header[0] != "movieId" || header[1] != "title" || header[2] != "genres" {
		return nil, fmt.Errorf("unexpected catalog header %v", header)
	}

	var movies []model.Movie
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog row: %w", err)
		}

		id, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("parse movie ID %q: %w", record[0], err)
		}
		movie, err := model.NewMovie(id, record[1], record[2])
		if err != nil {
			return nil, fmt.Errorf("catalog row %d: %w", len(movies)+2, err)
		}
		movies = append(movies, movie)
	}

	return movies, nil
}

// LoadMatrix decodes the similarity matrix artifact.
func (l *Loader) LoadMatrix() (*recommender.Matrix, error) {
	f, err := os.Open(filepath.Join(l.dataDir, MatrixFile))
	if err != nil {
		return nil, fmt.Errorf("open matrix artifact: %w", err)
	}
	defer f.Close()

	matrix, err := recommender.ReadMatrix(f)
	if err != nil {
		return nil, fmt.Errorf("load similarity matrix: %w", err)
	}
	return matrix, nil
}

// LoadVocabulary decodes the vectorizer vocabulary (a JSON string array).
// A missing file yields an empty vocabulary, not an error: the engine never
// consumes it.
func (l *Loader) LoadVocabulary() ([]string, error) {
	data, err := os.ReadFile(filepath.Join(l.dataDir, VocabularyFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open vocabulary artifact: %w", err)
	}

	var vocab []string
	if err := json.Unmarshal(data, &vocab); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}
	return vocab, nil
}

// Compile-time verification that Loader implements repository.CatalogSource.
var _ repository.CatalogSource = (*Loader)(nil)
