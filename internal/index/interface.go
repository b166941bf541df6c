// Package index defines the vector index for course material: a catalog
// collection holding one point per course (embedded title + outline
// metadata, used for fuzzy course-name resolution) and a content collection
// holding one point per chunk (used for filtered similarity search).
// Concrete implementations (Qdrant, in-memory) satisfy the Index interface
// so retrieval never depends on a specific backend.
package index

import (
	"context"
	"errors"

	"github.com/lectern-ai/lectern-go/internal/course"
)

// ErrCourseNotFound is returned when a catalog lookup names a course title
// that is not indexed.
var ErrCourseNotFound = errors.New("index: course not found")

// ErrDimensionMismatch is returned when a vector's length does not match the
// collection's configured dimension.
var ErrDimensionMismatch = errors.New("index: embedding dimension mismatch")

// LessonMeta is one lesson entry in a course's catalog outline.
type LessonMeta struct {
	// Number is the lesson number as it appears in the course document.
	Number int `json:"number"`
	// Title is the lesson title.
	Title string `json:"title"`
	// Link is the lesson URL, empty when the document omits it.
	Link string `json:"link,omitempty"`
}

// CourseMeta is the catalog record for one course. The catalog stores the
// full outline so course analytics and outline lookups need no second
// system.
type CourseMeta struct {
	// Title uniquely identifies the course.
	Title string `json:"title"`
	// Link is the course URL.
	Link string `json:"link,omitempty"`
	// Instructor is the course instructor name.
	Instructor string `json:"instructor,omitempty"`
	// Lessons is the ordered lesson outline.
	Lessons []LessonMeta `json:"lessons"`
}

// Filter narrows a content search. Zero-value fields are ignored; set
// fields are equality terms, AND-combined.
type Filter struct {
	// CourseTitle restricts hits to one course (exact title).
	CourseTitle string
	// Lesson restricts hits to one lesson number.
	Lesson *int
}

// Hit is one content search result, ordered best-first by the backend.
type Hit struct {
	// Text is the stored chunk text (context label included).
	Text string
	// CourseTitle is the owning course.
	CourseTitle string
	// Lesson is the owning lesson number, nil for document-level chunks.
	Lesson *int
	// Link is the lesson (or course) URL attached to the chunk, if any.
	Link string
	// Score is the similarity score, higher is better.
	Score float32
}

// Index stores and searches embedded course material. Implementations must
// be safe for concurrent use. Adding the same course or chunk again replaces
// the previous point, so ingestion may be re-run freely.
type Index interface {
	// AddCourse upserts the catalog point for one course. vec is the
	// embedding of the course title used for fuzzy name resolution.
	AddCourse(ctx context.Context, meta CourseMeta, vec []float32) error

	// AddChunks upserts content points. vecs is parallel to chunks.
	AddChunks(ctx context.Context, chunks []course.Chunk, vecs [][]float32) error

	// Search returns the best-matching content chunks for the query vector,
	// narrowed by the filter, at most limit results.
	Search(ctx context.Context, vec []float32, f Filter, limit int) ([]Hit, error)

	// ResolveCourse returns the catalog entry whose title best matches the
	// query vector, or (nil, nil) when the catalog is empty.
	ResolveCourse(ctx context.Context, vec []float32) (*CourseMeta, error)

	// CourseTitles returns every indexed course title, sorted.
	CourseTitles(ctx context.Context) ([]string, error)

	// CourseMeta returns the catalog entry for an exact title, or
	// ErrCourseNotFound.
	CourseMeta(ctx context.Context, title string) (*CourseMeta, error)

	// DeleteCourse removes a course's catalog point and all its chunks.
	DeleteCourse(ctx context.Context, title string) error

	// Clear removes everything from both collections.
	Clear(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
