// Package course holds the course-materials data model and the document
// processing pipeline that turns a raw course script into indexable chunks:
// parsing (metadata header + lesson blocks), sentence-aware splitting with
// overlap, and context labeling for embedding.
package course

import "fmt"

// Course is one ingested course document. Title is the identity key: a
// course whose title is already indexed is skipped on re-ingestion.
type Course struct {
	// Title uniquely identifies the course across the corpus.
	Title string
	// Link is the course URL, empty when the document omits it.
	Link string
	// Instructor is the course instructor name, empty when omitted.
	Instructor string
	// Preamble is document-level content that appears after the metadata
	// header but before the first lesson marker. Chunked without a lesson
	// number.
	Preamble string
	// Lessons is the ordered list of lessons as they appear in the document.
	Lessons []Lesson
}

// Lesson is a single lesson block within a course.
type Lesson struct {
	// Number is the lesson number, unique within its course.
	Number int
	// Title is the lesson title from the "Lesson N: Title" marker.
	Title string
	// Link is the lesson URL, empty when the document omits it.
	Link string
	// Body is the raw lesson text up to the next marker or end of document.
	Body string
}

// Chunk is the atomic retrieval unit. Text carries the context label baked
// in, so similarity search sees the provenance and retrieval can report it
// without a second lookup.
type Chunk struct {
	// Text is the context-labeled chunk text that gets embedded.
	Text string
	// CourseTitle is the owning course title.
	CourseTitle string
	// Lesson is the owning lesson number, nil for document-level content.
	Lesson *int
	// Link is the lesson URL (course URL for document-level content), empty
	// when the source document has none. Carried here so retrieval can hand
	// back source links without a catalog lookup.
	Link string
	// Index is the chunk's sequence position within its course, monotonic
	// so overlap windows stay coherent.
	Index int
}

// ParseWarning reports a non-fatal problem found while processing one
// document. Warnings degrade the result (missing metadata, skipped file)
// but never abort an ingestion run.
type ParseWarning struct {
	// Source names the document the warning belongs to.
	Source string
	// Message describes what was malformed or skipped.
	Message string
}

// String renders the warning for logs and ingestion reports.
func (w ParseWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Source, w.Message)
}

// contextLabel builds the human-readable prefix baked into chunk text
// before embedding.
func contextLabel(courseTitle string, lesson *int) string {
	if lesson != nil {
		return fmt.Sprintf("Course %s Lesson %d content: ", courseTitle, *lesson)
	}
	return fmt.Sprintf("Course %s content: ", courseTitle)
}

// BuildChunks splits a parsed course into context-labeled chunks: preamble
// first (lesson-less), then each lesson in order. size and overlap are
// character budgets for the splitter.
func BuildChunks(c *Course, size, overlap int) []Chunk {
	var chunks []Chunk
	idx := 0

	for _, piece := range ChunkText(c.Preamble, size, overlap) {
		chunks = append(chunks, Chunk{
			Text:        contextLabel(c.Title, nil) + piece,
			CourseTitle: c.Title,
			Link:        c.Link,
			Index:       idx,
		})
		idx++
	}

	for _, lesson := range c.Lessons {
		n := lesson.Number
		for _, piece := range ChunkText(lesson.Body, size, overlap) {
			chunks = append(chunks, Chunk{
				Text:        contextLabel(c.Title, &n) + piece,
				CourseTitle: c.Title,
				Lesson:      &n,
				Link:        lesson.Link,
				Index:       idx,
			})
			idx++
		}
	}

	return chunks
}
