// Package retrieval implements filtered semantic search over the course
// index. It resolves fuzzy course-name hints against the catalog, embeds
// query text, and runs lesson-scoped chunk lookups, returning results the
// tool layer can hand back to the model verbatim.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lectern-ai/lectern-go/internal/embedder"
	"github.com/lectern-ai/lectern-go/internal/index"
	"github.com/lectern-ai/lectern-go/internal/logging"
)

// DefaultMaxResults is the number of chunks returned per search when the
// caller does not override the limit.
const DefaultMaxResults = 5

// ResolutionError reports that a course-name hint matched nothing in the
// catalog. It is a distinct type so callers can tell "course name unknown"
// apart from "filter matched no content".
type ResolutionError struct {
	// Hint is the course name as the caller supplied it.
	Hint string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("no course found matching '%s'", e.Hint)
}

// Service answers filtered semantic queries against the chunk index.
type Service struct {
	index      index.Index
	embedder   embedder.Embedder
	maxResults int
}

// Options narrow a search to a course and/or lesson.
type Options struct {
	// CourseName is a fuzzy course filter, resolved to an exact catalog
	// title before searching. Empty means all courses.
	CourseName string

	// Lesson restricts matches to a single lesson number. Nil means all
	// lessons.
	Lesson *int

	// Limit caps the number of hits returned. Zero or negative means the
	// service default.
	Limit int
}

// New constructs a Service. maxResults <= 0 falls back to DefaultMaxResults.
func New(idx index.Index, emb embedder.Embedder, maxResults int) (*Service, error) {
	if idx == nil {
		return nil, fmt.Errorf("retrieval: index must not be nil")
	}
	if emb == nil {
		return nil, fmt.Errorf("retrieval: embedder must not be nil")
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Service{index: idx, embedder: emb, maxResults: maxResults}, nil
}

// Search embeds the query and returns the best-matching chunks, scoped by
// opts. A course-name hint that resolves to nothing returns a
// *ResolutionError; a filter that matches no content returns an empty
// Results value, not an error.
func (s *Service) Search(ctx context.Context, query string, opts Options) (*Results, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = s.maxResults
	}

	filter := index.Filter{Lesson: opts.Lesson}
	if opts.CourseName != "" {
		meta, err := s.resolveCourse(ctx, opts.CourseName)
		if err != nil {
			return nil, err
		}
		if meta == nil {
			return nil, &ResolutionError{Hint: opts.CourseName}
		}
		filter.CourseTitle = meta.Title
	}

	vecs, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("retrieval: embed query: %w", err)
	}

	hits, err := s.index.Search(ctx, vecs[0], filter, limit)
	if err != nil {
		return nil, fmt.Errorf("retrieval: search: %w", err)
	}

	return &Results{Hits: hits, CourseFilter: opts.CourseName, LessonFilter: opts.Lesson}, nil
}

// Outline resolves a fuzzy course name and returns the full catalog entry
// (title, link, lesson list). Resolution failure returns a *ResolutionError.
func (s *Service) Outline(ctx context.Context, courseName string) (*index.CourseMeta, error) {
	meta, err := s.resolveCourse(ctx, courseName)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, &ResolutionError{Hint: courseName}
	}
	return meta, nil
}

// resolveCourse embeds the hint and asks the catalog for its nearest course.
// Returns (nil, nil) when the catalog has no candidate at all.
func (s *Service) resolveCourse(ctx context.Context, hint string) (*index.CourseMeta, error) {
	vecs, err := s.embedder.Embed(ctx, []string{hint})
	if err != nil {
		return nil, fmt.Errorf("retrieval: embed course hint: %w", err)
	}
	meta, err := s.index.ResolveCourse(ctx, vecs[0])
	if err != nil {
		return nil, fmt.Errorf("retrieval: resolve course: %w", err)
	}
	if meta != nil {
		logging.FromContext(ctx).Debug("resolved course hint",
			slog.String("hint", hint),
			slog.String("title", meta.Title),
		)
	}
	return meta, nil
}
