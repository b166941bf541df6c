package course

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "simple sentences",
			in:   "Hello world. How are you? Fine!",
			want: []string{"Hello world.", "How are you?", "Fine!"},
		},
		{
			name: "abbreviation does not split",
			in:   "Dr. Smith teaches the course. It is good.",
			want: []string{"Dr. Smith teaches the course.", "It is good."},
		},
		{
			name: "latin abbreviation",
			in:   "We cover e.g. tools. Then more.",
			want: []string{"We cover e.g. tools.", "Then more."},
		},
		{
			name: "single capital initial",
			in:   "Taught by J. Smith. Enjoy.",
			want: []string{"Taught by J. Smith.", "Enjoy."},
		},
		{
			name: "multiple terminal punctuation",
			in:   "Really?! Yes.",
			want: []string{"Really?!", "Yes."},
		},
		{
			name: "no terminal punctuation",
			in:   "a single fragment without an ending",
			want: []string{"a single fragment without an ending"},
		},
		{
			name: "whitespace normalized",
			in:   "One.\n\nTwo\tthree.   Four.",
			want: []string{"One.", "Two three.", "Four."},
		},
		{
			name: "empty",
			in:   "",
			want: nil,
		},
		{
			name: "whitespace only",
			in:   " \n\t ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SplitSentences(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestChunkText_PacksWholeSentences(t *testing.T) {
	t.Parallel()

	// "One two." (8) + " " + "Three four." (11) fits a 21-char budget;
	// "Five six." spills into a second chunk.
	got := ChunkText("One two. Three four. Five six.", 21, 0)
	want := []string{"One two. Three four.", "Five six."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ChunkText() = %v, want %v", got, want)
	}
}

func TestChunkText_ZeroOverlapReconstructs(t *testing.T) {
	t.Parallel()

	text := "First sentence here. Second one follows. Third keeps going. Fourth wraps it up."
	chunks := ChunkText(text, 45, 0)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if got := strings.Join(chunks, " "); got != text {
		t.Errorf("joined chunks = %q, want original text %q", got, text)
	}
}

func TestChunkText_OverlapRepeatsTrailingSentence(t *testing.T) {
	t.Parallel()

	// Three 6-char sentences with size 13: the first chunk holds two and
	// the 12-char overlap window pulls "D e f." into the second.
	got := ChunkText("A b c. D e f. G h i.", 13, 12)
	want := []string{"A b c. D e f.", "D e f. G h i."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ChunkText() = %v, want %v", got, want)
	}
}

func TestChunkText_ChunksStayWithinBudget(t *testing.T) {
	t.Parallel()

	text := "Alpha beta gamma delta. Epsilon zeta eta theta. Iota kappa lambda mu. Nu xi omicron pi. Rho sigma tau upsilon."
	for _, chunk := range ChunkText(text, 60, 20) {
		if len(chunk) > 60 {
			t.Errorf("chunk exceeds budget: %d chars in %q", len(chunk), chunk)
		}
	}
}

func TestChunkText_OversizedSentenceKeptWhole(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 50)
	got := ChunkText(long+". Short.", 10, 0)

	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(got), got)
	}
	if got[0] != long+"." {
		t.Errorf("first chunk = %q, want the whole oversized sentence", got[0])
	}
}

func TestChunkText_OverlapNeverStalls(t *testing.T) {
	t.Parallel()

	// Overlap larger than any chunk: progress is still forced one
	// sentence at a time instead of looping forever.
	got := ChunkText("Aaaa. Bbbb. Cccc.", 5, 100)
	want := []string{"Aaaa.", "Bbbb.", "Cccc."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ChunkText() = %v, want %v", got, want)
	}
}

func TestChunkText_Empty(t *testing.T) {
	t.Parallel()

	if got := ChunkText("", 800, 100); got != nil {
		t.Errorf("ChunkText(\"\") = %v, want nil", got)
	}
	if got := ChunkText("   \n ", 800, 100); got != nil {
		t.Errorf("ChunkText(whitespace) = %v, want nil", got)
	}
}

func TestBuildChunks(t *testing.T) {
	t.Parallel()

	c := &Course{
		Title:    "Go Basics",
		Link:     "https://example.com/go",
		Preamble: "This course teaches Go.",
		Lessons: []Lesson{
			{Number: 1, Title: "Syntax", Link: "https://example.com/go/1", Body: "Go has simple syntax."},
			{Number: 2, Title: "Types", Body: "Go is statically typed."},
		},
	}

	chunks := BuildChunks(c, 800, 100)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	preamble := chunks[0]
	if preamble.Lesson != nil {
		t.Errorf("preamble chunk Lesson: got %v, want nil", *preamble.Lesson)
	}
	if want := "Course Go Basics content: This course teaches Go."; preamble.Text != want {
		t.Errorf("preamble Text: got %q, want %q", preamble.Text, want)
	}
	if preamble.Link != "https://example.com/go" {
		t.Errorf("preamble Link: got %q, want the course link", preamble.Link)
	}

	first := chunks[1]
	if first.Lesson == nil || *first.Lesson != 1 {
		t.Fatalf("lesson chunk Lesson: got %v, want 1", first.Lesson)
	}
	if want := "Course Go Basics Lesson 1 content: Go has simple syntax."; first.Text != want {
		t.Errorf("lesson Text: got %q, want %q", first.Text, want)
	}
	if first.Link != "https://example.com/go/1" {
		t.Errorf("lesson Link: got %q, want the lesson link", first.Link)
	}
	if chunks[2].Link != "" {
		t.Errorf("lesson 2 Link: got %q, want empty", chunks[2].Link)
	}

	for i, chunk := range chunks {
		if chunk.CourseTitle != "Go Basics" {
			t.Errorf("chunk %d CourseTitle: got %q", i, chunk.CourseTitle)
		}
		if chunk.Index != i {
			t.Errorf("chunk %d Index: got %d, want %d", i, chunk.Index, i)
		}
	}
}

func TestBuildChunks_NoPreamble(t *testing.T) {
	t.Parallel()

	c := &Course{
		Title:   "Solo",
		Lessons: []Lesson{{Number: 5, Title: "Only", Body: "One lesson only."}},
	}

	chunks := BuildChunks(c, 800, 100)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Lesson == nil || *chunks[0].Lesson != 5 {
		t.Errorf("Lesson: got %v, want 5", chunks[0].Lesson)
	}
	if chunks[0].Index != 0 {
		t.Errorf("Index: got %d, want 0", chunks[0].Index)
	}
}
