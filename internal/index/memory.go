package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/lectern-ai/lectern-go/internal/course"
)

// memChunk is the stored form of one content point.
type memChunk struct {
	key    string
	text   string
	title  string
	lesson *int
	link   string
	vec    []float32
}

// memCourse is the stored form of one catalog point.
type memCourse struct {
	meta CourseMeta
	vec  []float32
}

// MemoryIndex implements Index with brute-force cosine similarity over
// in-process slices. It backs unit tests and INDEX_BACKEND=memory dev mode;
// everything is lost on process exit.
type MemoryIndex struct {
	mu      sync.RWMutex
	courses map[string]memCourse
	chunks  []memChunk
	byKey   map[string]int
}

// NewMemoryIndex returns an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		courses: make(map[string]memCourse),
		byKey:   make(map[string]int),
	}
}

// Ping satisfies the server's readiness Pinger contract. The in-memory
// backend is always ready.
func (m *MemoryIndex) Ping(ctx context.Context) error { return nil }

// AddCourse upserts the catalog entry for one course.
func (m *MemoryIndex) AddCourse(ctx context.Context, meta CourseMeta, vec []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[meta.Title] = memCourse{meta: meta, vec: vec}
	return nil
}

// AddChunks upserts content chunks keyed by (course title, chunk index).
func (m *MemoryIndex) AddChunks(ctx context.Context, chunks []course.Chunk, vecs [][]float32) error {
	if len(chunks) != len(vecs) {
		return fmt.Errorf("memory index: %d chunks with %d vectors", len(chunks), len(vecs))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range chunks {
		mc := memChunk{
			key:    fmt.Sprintf("%s:%d", c.CourseTitle, c.Index),
			text:   c.Text,
			title:  c.CourseTitle,
			lesson: c.Lesson,
			link:   c.Link,
			vec:    vecs[i],
		}
		if pos, ok := m.byKey[mc.key]; ok {
			m.chunks[pos] = mc
			continue
		}
		m.byKey[mc.key] = len(m.chunks)
		m.chunks = append(m.chunks, mc)
	}
	return nil
}

// Search scores every stored chunk against the query vector and returns the
// best matches that pass the filter.
func (m *MemoryIndex) Search(ctx context.Context, vec []float32, f Filter, limit int) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hits []Hit
	for _, c := range m.chunks {
		if f.CourseTitle != "" && c.title != f.CourseTitle {
			continue
		}
		if f.Lesson != nil && (c.lesson == nil || *c.lesson != *f.Lesson) {
			continue
		}
		hits = append(hits, Hit{
			Text:        c.text,
			CourseTitle: c.title,
			Lesson:      c.lesson,
			Link:        c.link,
			Score:       cosine(vec, c.vec),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// ResolveCourse returns the catalog entry whose title embedding is closest
// to the query vector, or (nil, nil) when the catalog is empty.
func (m *MemoryIndex) ResolveCourse(ctx context.Context, vec []float32) (*CourseMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best *CourseMeta
	bestScore := float32(math.Inf(-1))
	for _, c := range m.courses {
		score := cosine(vec, c.vec)
		if best == nil || score > bestScore {
			meta := c.meta
			best = &meta
			bestScore = score
		}
	}
	return best, nil
}

// CourseTitles returns every indexed course title, sorted.
func (m *MemoryIndex) CourseTitles(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	titles := make([]string, 0, len(m.courses))
	for title := range m.courses {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles, nil
}

// CourseMeta returns the catalog entry for an exact title.
func (m *MemoryIndex) CourseMeta(ctx context.Context, title string) (*CourseMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.courses[title]
	if !ok {
		return nil, ErrCourseNotFound
	}
	meta := c.meta
	return &meta, nil
}

// DeleteCourse removes a course's catalog entry and all its chunks.
func (m *MemoryIndex) DeleteCourse(ctx context.Context, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.courses, title)

	kept := m.chunks[:0]
	for _, c := range m.chunks {
		if c.title != title {
			kept = append(kept, c)
		}
	}
	m.chunks = kept

	// Rebuild the key positions after compaction.
	m.byKey = make(map[string]int, len(m.chunks))
	for i, c := range m.chunks {
		m.byKey[c.key] = i
	}
	return nil
}

// Clear removes everything from both collections.
func (m *MemoryIndex) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses = make(map[string]memCourse)
	m.chunks = nil
	m.byKey = make(map[string]int)
	return nil
}

// Close is a no-op for the in-memory backend.
func (m *MemoryIndex) Close() error { return nil }

// cosine computes cosine similarity over the overlapping prefix of a and b.
func cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
