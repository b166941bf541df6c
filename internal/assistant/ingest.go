package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lectern-ai/lectern-go/internal/config"
	"github.com/lectern-ai/lectern-go/internal/course"
	"github.com/lectern-ai/lectern-go/internal/embedder"
	"github.com/lectern-ai/lectern-go/internal/index"
	"github.com/lectern-ai/lectern-go/internal/logging"
)

// defaultEmbedBatch is how many chunk texts go to the embedder per request.
const defaultEmbedBatch = 32

// Ingestor loads course documents into the index. It is the ingestion half
// of the Assistant, split out so `lectern ingest` can run without chat-model
// credentials or a session store.
type Ingestor struct {
	index    index.Index
	embedder embedder.Embedder

	chunkSize    int
	chunkOverlap int
	metrics      *ingestMetrics
	log          *slog.Logger
}

// NewIngestor validates the ingestion dependencies and applies defaults.
// Only Index and Embedder are required; the chat-model fields of cfg are
// ignored.
func NewIngestor(cfg *Config) (*Ingestor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("assistant: config must not be nil")
	}
	if cfg.Index == nil {
		return nil, fmt.Errorf("assistant: index must not be nil")
	}
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("assistant: embedder must not be nil")
	}

	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = config.DefaultChunkSize
	}
	chunkOverlap := cfg.ChunkOverlap
	if chunkOverlap <= 0 {
		chunkOverlap = config.DefaultChunkOverlap
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	reg := cfg.MetricsRegistry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Ingestor{
		index:        cfg.Index,
		embedder:     cfg.Embedder,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		metrics:      newIngestMetrics(reg),
		log:          log,
	}, nil
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	// CoursesAdded is the number of new courses indexed.
	CoursesAdded int

	// ChunksAdded is the number of content chunks indexed.
	ChunksAdded int

	// CoursesSkipped lists course titles that were already indexed.
	CoursesSkipped []string

	// FilesSkipped lists files that could not be processed (unsupported
	// format, unreadable).
	FilesSkipped []string

	// Warnings collects every non-fatal problem from the run, including
	// parser degradations and skipped files.
	Warnings []course.ParseWarning
}

// IngestDirectory indexes every supported document in dir. Files are
// processed sequentially in name order. A course whose title is already in
// the catalog is skipped, so re-running ingestion over the same directory is
// a no-op. When clear is true both collections are wiped first.
//
// Unreadable or unsupported files degrade to report warnings; embedder and
// index failures abort the run. Progress is reported via the optional
// progress callback.
func (ing *Ingestor) IngestDirectory(ctx context.Context, dir string, clear bool, progress func(msg string)) (*IngestReport, error) {
	if progress == nil {
		progress = func(string) {}
	}
	log := logging.FromContext(ctx)

	if clear {
		if err := ing.index.Clear(ctx); err != nil {
			return nil, fmt.Errorf("assistant: clear index: %w", err)
		}
		log.Info("cleared existing course data")
		progress("cleared existing course data")
	}

	existing, err := ing.index.CourseTitles(ctx)
	if err != nil {
		return nil, fmt.Errorf("assistant: list courses: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, title := range existing {
		seen[title] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("assistant: read docs dir: %w", err)
	}

	extractors := course.Extractors()
	report := &IngestReport{}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := ing.ingestFile(ctx, path, extractors, seen, report, progress); err != nil {
			return nil, err
		}
	}

	log.Info("ingestion complete",
		slog.Int("courses_added", report.CoursesAdded),
		slog.Int("chunks_added", report.ChunksAdded),
		slog.Int("courses_skipped", len(report.CoursesSkipped)),
		slog.Int("warnings", len(report.Warnings)))
	return report, nil
}

// ingestFile runs the extract → parse → chunk → embed → upsert flow for one
// document. File-level problems are folded into the report; backend failures
// are returned.
func (ing *Ingestor) ingestFile(ctx context.Context, path string, extractors []course.Extractor, seen map[string]bool, report *IngestReport, progress func(msg string)) error {
	log := logging.FromContext(ctx)
	name := filepath.Base(path)

	ext := course.ExtractorFor(path, extractors)
	if ext == nil {
		report.FilesSkipped = append(report.FilesSkipped, name)
		report.Warnings = append(report.Warnings, course.ParseWarning{
			Source:  name,
			Message: "unsupported file format, skipped",
		})
		log.Warn("skipping unsupported file", slog.String("file", name))
		return nil
	}

	text, err := ext.ExtractText(path)
	if err != nil {
		report.FilesSkipped = append(report.FilesSkipped, name)
		report.Warnings = append(report.Warnings, course.ParseWarning{
			Source:  name,
			Message: fmt.Sprintf("extraction failed: %v", err),
		})
		log.Warn("failed to extract text", slog.String("file", name), slog.Any("error", err))
		return nil
	}

	c, warnings := course.ParseDocument(name, text)
	report.Warnings = append(report.Warnings, warnings...)

	if seen[c.Title] {
		report.CoursesSkipped = append(report.CoursesSkipped, c.Title)
		log.Info("course already indexed, skipping",
			slog.String("file", name), slog.String("course", c.Title))
		return nil
	}

	chunks := course.BuildChunks(c, ing.chunkSize, ing.chunkOverlap)

	titleVecs, err := ing.embedder.Embed(ctx, []string{c.Title})
	if err != nil {
		return fmt.Errorf("assistant: embed course title %q: %w", c.Title, err)
	}
	if err := ing.index.AddCourse(ctx, catalogMeta(c), titleVecs[0]); err != nil {
		return fmt.Errorf("assistant: add course %q: %w", c.Title, err)
	}

	if err := ing.indexChunks(ctx, chunks); err != nil {
		return err
	}

	seen[c.Title] = true
	report.CoursesAdded++
	report.ChunksAdded += len(chunks)
	ing.metrics.coursesTotal.Inc()
	ing.metrics.chunksTotal.Add(float64(len(chunks)))

	log.Info("ingested course",
		slog.String("file", name),
		slog.String("course", c.Title),
		slog.Int("lessons", len(c.Lessons)),
		slog.Int("chunks", len(chunks)))
	progress(fmt.Sprintf("ingested %q: %d chunks", c.Title, len(chunks)))
	return nil
}

// indexChunks embeds and upserts chunks in batches so one oversized course
// cannot blow a single embedding request.
func (ing *Ingestor) indexChunks(ctx context.Context, chunks []course.Chunk) error {
	for start := 0; start < len(chunks); start += defaultEmbedBatch {
		end := start + defaultEmbedBatch
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, ch := range batch {
			texts[i] = ch.Text
		}
		vecs, err := ing.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("assistant: embed chunks: %w", err)
		}
		if err := ing.index.AddChunks(ctx, batch, vecs); err != nil {
			return fmt.Errorf("assistant: add chunks: %w", err)
		}
	}
	return nil
}

// catalogMeta converts a parsed course into its catalog record.
func catalogMeta(c *course.Course) index.CourseMeta {
	meta := index.CourseMeta{
		Title:      c.Title,
		Link:       c.Link,
		Instructor: c.Instructor,
	}
	for _, l := range c.Lessons {
		meta.Lessons = append(meta.Lessons, index.LessonMeta{
			Number: l.Number,
			Title:  l.Title,
			Link:   l.Link,
		})
	}
	return meta
}
