package course

import (
	"strings"
	"testing"
)

const fullDocument = `Course Title: Building Toward Computer Use
Course Link: https://example.com/courses/computer-use
Course Instructor: Colt Steele

Welcome to the course. This preamble introduces the material.

Lesson 0: Introduction
Lesson Link: https://example.com/courses/computer-use/lesson/0
Lesson zero covers the basics. It sets the stage.

Lesson 1: API Fundamentals
Lesson Link: https://example.com/courses/computer-use/lesson/1
Lesson one explains the API surface.
It has two paragraphs of content.
`

func TestParseDocument(t *testing.T) {
	t.Parallel()

	c, warnings := ParseDocument("course1.txt", fullDocument)

	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if c.Title != "Building Toward Computer Use" {
		t.Errorf("Title: got %q, want %q", c.Title, "Building Toward Computer Use")
	}
	if c.Link != "https://example.com/courses/computer-use" {
		t.Errorf("Link: got %q, want %q", c.Link, "https://example.com/courses/computer-use")
	}
	if c.Instructor != "Colt Steele" {
		t.Errorf("Instructor: got %q, want %q", c.Instructor, "Colt Steele")
	}
	if !strings.Contains(c.Preamble, "This preamble introduces") {
		t.Errorf("Preamble: got %q, want the welcome text", c.Preamble)
	}
	if len(c.Lessons) != 2 {
		t.Fatalf("expected 2 lessons, got %d", len(c.Lessons))
	}

	first := c.Lessons[0]
	if first.Number != 0 {
		t.Errorf("lesson 0 Number: got %d, want 0", first.Number)
	}
	if first.Title != "Introduction" {
		t.Errorf("lesson 0 Title: got %q, want %q", first.Title, "Introduction")
	}
	if first.Link != "https://example.com/courses/computer-use/lesson/0" {
		t.Errorf("lesson 0 Link: got %q", first.Link)
	}
	if !strings.Contains(first.Body, "sets the stage") {
		t.Errorf("lesson 0 Body: got %q", first.Body)
	}
	if strings.Contains(first.Body, "Lesson Link:") {
		t.Errorf("lesson 0 Body contains the link line: %q", first.Body)
	}

	second := c.Lessons[1]
	if second.Number != 1 {
		t.Errorf("lesson 1 Number: got %d, want 1", second.Number)
	}
	if !strings.Contains(second.Body, "two paragraphs") {
		t.Errorf("lesson 1 Body: got %q", second.Body)
	}
}

func TestParseDocument_HeaderOrderTolerant(t *testing.T) {
	t.Parallel()

	doc := "Course Instructor: Ada\nCourse Title: Compilers\nCourse Link: https://example.com/c\n\nBody text here.\n"
	c, warnings := ParseDocument("compilers.txt", doc)

	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if c.Title != "Compilers" {
		t.Errorf("Title: got %q, want %q", c.Title, "Compilers")
	}
	if c.Instructor != "Ada" {
		t.Errorf("Instructor: got %q, want %q", c.Instructor, "Ada")
	}
	if c.Preamble != "Body text here." {
		t.Errorf("Preamble: got %q, want %q", c.Preamble, "Body text here.")
	}
}

func TestParseDocument_MissingMetadata(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		doc         string
		wantTitle   string
		warnings    int
		wantWarning string
	}{
		{
			name:        "no title falls back to document name",
			doc:         "Course Link: https://example.com\nCourse Instructor: Bob\n\nContent.\n",
			wantTitle:   "notes.txt",
			warnings:    1,
			wantWarning: "no Course Title line",
		},
		{
			name:        "no link",
			doc:         "Course Title: T\nCourse Instructor: Bob\n\nContent.\n",
			wantTitle:   "T",
			warnings:    1,
			wantWarning: "no Course Link line",
		},
		{
			name:        "no instructor",
			doc:         "Course Title: T\nCourse Link: https://example.com\n\nContent.\n",
			wantTitle:   "T",
			warnings:    1,
			wantWarning: "no Course Instructor line",
		},
		{
			name:        "completely bare document",
			doc:         "Just some text with no header at all.\n",
			wantTitle:   "notes.txt",
			warnings:    3,
			wantWarning: "no Course Title line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, warnings := ParseDocument("notes.txt", tt.doc)

			if c.Title != tt.wantTitle {
				t.Errorf("Title: got %q, want %q", c.Title, tt.wantTitle)
			}
			if len(warnings) != tt.warnings {
				t.Fatalf("warnings: got %d (%v), want %d", len(warnings), warnings, tt.warnings)
			}
			found := false
			for _, w := range warnings {
				if strings.Contains(w.Message, tt.wantWarning) {
					found = true
				}
				if w.Source != "notes.txt" {
					t.Errorf("warning Source: got %q, want %q", w.Source, "notes.txt")
				}
			}
			if !found {
				t.Errorf("expected a warning containing %q, got %v", tt.wantWarning, warnings)
			}
		})
	}
}

func TestParseDocument_NonHeaderLineStartsBody(t *testing.T) {
	t.Parallel()

	doc := "Course Title: T\nThis is already body text.\nCourse Instructor: leaked\n"
	c, warnings := ParseDocument("t.txt", doc)

	if c.Title != "T" {
		t.Errorf("Title: got %q, want %q", c.Title, "T")
	}
	// Header parsing stops at the first non-matching line, so the stray
	// instructor line stays in the body rather than being lifted out.
	if c.Instructor != "" {
		t.Errorf("Instructor: got %q, want empty", c.Instructor)
	}
	if !strings.Contains(c.Preamble, "already body text") {
		t.Errorf("Preamble: got %q", c.Preamble)
	}
	if !strings.Contains(c.Preamble, "leaked") {
		t.Errorf("Preamble should keep the stray line, got %q", c.Preamble)
	}
	if len(warnings) != 2 {
		t.Errorf("warnings: got %d (%v), want 2", len(warnings), warnings)
	}
}

func TestParseDocument_LessonWithoutLink(t *testing.T) {
	t.Parallel()

	doc := "Course Title: T\nCourse Link: L\nCourse Instructor: I\n\nLesson 1: Alpha\nAlpha body.\n\nLesson 2: Beta\nLesson Link: https://example.com/2\nBeta body.\n"
	c, _ := ParseDocument("t.txt", doc)

	if len(c.Lessons) != 2 {
		t.Fatalf("expected 2 lessons, got %d", len(c.Lessons))
	}
	if c.Lessons[0].Link != "" {
		t.Errorf("lesson 1 Link: got %q, want empty", c.Lessons[0].Link)
	}
	if c.Lessons[1].Link != "https://example.com/2" {
		t.Errorf("lesson 2 Link: got %q", c.Lessons[1].Link)
	}
}

func TestParseDocument_DuplicateLessonNumber(t *testing.T) {
	t.Parallel()

	doc := "Course Title: T\nCourse Link: L\nCourse Instructor: I\n\nLesson 1: First\nOne.\n\nLesson 1: Again\nTwo.\n"
	c, warnings := ParseDocument("t.txt", doc)

	if len(c.Lessons) != 2 {
		t.Fatalf("expected both duplicate blocks kept, got %d", len(c.Lessons))
	}
	found := false
	for _, w := range warnings {
		if strings.Contains(w.Message, "duplicate lesson number 1") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a duplicate-lesson warning, got %v", warnings)
	}
}

func TestParseDocument_MarkerRequiresNumber(t *testing.T) {
	t.Parallel()

	doc := "Course Title: T\nCourse Link: L\nCourse Instructor: I\n\nLesson one: not a marker\nStill preamble.\n"
	c, _ := ParseDocument("t.txt", doc)

	if len(c.Lessons) != 0 {
		t.Fatalf("expected no lessons, got %d", len(c.Lessons))
	}
	if !strings.Contains(c.Preamble, "Lesson one: not a marker") {
		t.Errorf("Preamble: got %q", c.Preamble)
	}
}

func TestParseDocument_Empty(t *testing.T) {
	t.Parallel()

	c, warnings := ParseDocument("empty.txt", "")

	if c.Title != "empty.txt" {
		t.Errorf("Title: got %q, want fallback name", c.Title)
	}
	if len(c.Lessons) != 0 {
		t.Errorf("Lessons: got %d, want 0", len(c.Lessons))
	}
	if len(warnings) != 3 {
		t.Errorf("warnings: got %d, want 3", len(warnings))
	}
}

func TestParseWarning_String(t *testing.T) {
	t.Parallel()

	w := ParseWarning{Source: "a.txt", Message: "skipped"}
	if got := w.String(); got != "a.txt: skipped" {
		t.Errorf("String(): got %q, want %q", got, "a.txt: skipped")
	}
}
