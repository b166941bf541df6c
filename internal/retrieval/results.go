package retrieval

import (
	"fmt"
	"strings"

	"github.com/lectern-ai/lectern-go/internal/index"
)

// Results carries the ranked hits for one search together with the filters
// that were active, so an empty outcome can name what was searched.
type Results struct {
	// Hits are the matched chunks, best match first.
	Hits []index.Hit

	// CourseFilter is the course-name filter as the caller supplied it,
	// empty when the search ran unfiltered.
	CourseFilter string

	// LessonFilter is the lesson-number filter, nil when unset.
	LessonFilter *int
}

// Empty reports whether the search matched no content.
func (r *Results) Empty() bool {
	return len(r.Hits) == 0
}

// Outcome renders the model-facing message for an empty result set, naming
// the active filters so the model can tell a too-narrow filter apart from
// an unknown course.
func (r *Results) Outcome() string {
	var b strings.Builder
	b.WriteString("No relevant content found")
	if r.CourseFilter != "" {
		fmt.Fprintf(&b, " in course '%s'", r.CourseFilter)
	}
	if r.LessonFilter != nil {
		fmt.Fprintf(&b, " in lesson %d", *r.LessonFilter)
	}
	b.WriteString(".")
	return b.String()
}
