package course

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Metadata line prefixes expected at the top of a course document.
const (
	titlePrefix      = "Course Title:"
	linkPrefix       = "Course Link:"
	instructorPrefix = "Course Instructor:"
	lessonLinkPrefix = "Lesson Link:"
)

// lessonMarker matches a lesson heading like "Lesson 4: Creating Tools".
var lessonMarker = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)

// ParseDocument parses a course document into a Course. name identifies the
// source (usually the file name) in warnings and serves as the fallback
// title when the document has no "Course Title:" line.
//
// The expected shape is three metadata lines (title, link, instructor, in
// any order), then optional document-level text, then lesson blocks headed
// by "Lesson N: Title" markers, each optionally followed by a
// "Lesson Link:" line. The parser is fail-soft: missing metadata degrades
// to empty fields with a warning, and content that precedes the first
// lesson marker is kept as document-level preamble rather than rejected.
func ParseDocument(name, text string) (*Course, []ParseWarning) {
	var warnings []ParseWarning
	c := &Course{}

	lines := strings.Split(text, "\n")
	pos := 0

	// Up to three leading metadata lines, order-tolerant. Blank lines are
	// skipped; the first non-blank line that matches none of the prefixes
	// ends the header and falls through to the body.
	matched := 0
	for pos < len(lines) && matched < 3 {
		line := strings.TrimSpace(lines[pos])
		if strings.HasPrefix(line, titlePrefix) {
			c.Title = strings.TrimSpace(strings.TrimPrefix(line, titlePrefix))
			matched++
		} else if strings.HasPrefix(line, linkPrefix) {
			c.Link = strings.TrimSpace(strings.TrimPrefix(line, linkPrefix))
			matched++
		} else if strings.HasPrefix(line, instructorPrefix) {
			c.Instructor = strings.TrimSpace(strings.TrimPrefix(line, instructorPrefix))
			matched++
		} else if line != "" {
			break
		}
		pos++
	}

	if c.Title == "" {
		c.Title = name
		warnings = append(warnings, ParseWarning{
			Source:  name,
			Message: "no Course Title line found, using document name as title",
		})
	}
	if c.Link == "" {
		warnings = append(warnings, ParseWarning{Source: name, Message: "no Course Link line found"})
	}
	if c.Instructor == "" {
		warnings = append(warnings, ParseWarning{Source: name, Message: "no Course Instructor line found"})
	}

	// Body: preamble until the first lesson marker, then lesson blocks.
	var preamble []string
	var current *Lesson
	seen := map[int]bool{}

	flush := func() {
		if current != nil {
			current.Body = strings.TrimSpace(current.Body)
			c.Lessons = append(c.Lessons, *current)
			current = nil
		}
	}

	for ; pos < len(lines); pos++ {
		line := lines[pos]
		trimmed := strings.TrimSpace(line)

		if m := lessonMarker.FindStringSubmatch(trimmed); m != nil {
			number, err := strconv.Atoi(m[1])
			if err == nil {
				flush()
				if seen[number] {
					warnings = append(warnings, ParseWarning{
						Source:  name,
						Message: fmt.Sprintf("duplicate lesson number %d, keeping both blocks", number),
					})
				}
				seen[number] = true
				current = &Lesson{Number: number, Title: strings.TrimSpace(m[2])}

				// An optional "Lesson Link:" line directly after the marker.
				if pos+1 < len(lines) {
					next := strings.TrimSpace(lines[pos+1])
					if strings.HasPrefix(next, lessonLinkPrefix) {
						current.Link = strings.TrimSpace(strings.TrimPrefix(next, lessonLinkPrefix))
						pos++
					}
				}
				continue
			}
		}

		if current != nil {
			current.Body += line + "\n"
		} else if trimmed != "" {
			preamble = append(preamble, line)
		}
	}
	flush()

	c.Preamble = strings.TrimSpace(strings.Join(preamble, "\n"))
	return c, warnings
}
