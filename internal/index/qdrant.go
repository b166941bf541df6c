package index

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/lectern-ai/lectern-go/internal/course"
)

// Default collection names. Overridable for test isolation and multi-corpus
// deployments.
const (
	DefaultCatalogCollection = "course_catalog"
	DefaultContentCollection = "course_content"
)

// upsertBatchSize bounds how many points go into a single Upsert call.
const upsertBatchSize = 100

// QdrantConfig holds connection parameters for a Qdrant-backed index.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool

	// CatalogCollection is the course catalog collection name.
	CatalogCollection string

	// ContentCollection is the chunk content collection name.
	ContentCollection string

	// VectorSize is the dimensionality of the stored embeddings.
	VectorSize uint64
}

// QdrantIndex implements Index backed by a Qdrant instance.
type QdrantIndex struct {
	// client is the underlying Qdrant gRPC client.
	client *qdrant.Client

	// cfg holds the resolved configuration for this index.
	cfg *QdrantConfig
}

// NewQdrantIndex connects to Qdrant, waits for it to become healthy, and
// ensures both collections exist with their payload indexes.
func NewQdrantIndex(ctx context.Context, cfg *QdrantConfig) (*QdrantIndex, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.CatalogCollection == "" {
		cfg.CatalogCollection = DefaultCatalogCollection
	}
	if cfg.ContentCollection == "" {
		cfg.ContentCollection = DefaultContentCollection
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w", err)
	}

	idx := &QdrantIndex{client: client, cfg: cfg}

	// Qdrant often comes up alongside this process (docker-compose); give it
	// a bounded window to become reachable before failing.
	if err := idx.pingWithRetry(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("qdrant: not reachable at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	if err := idx.ensureCollections(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return idx, nil
}

// Ping performs a single health check against Qdrant. Together with Name it
// satisfies the server's readiness Pinger contract.
func (x *QdrantIndex) Ping(ctx context.Context) error {
	result, err := x.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("qdrant: health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("qdrant: health check returned invalid response")
	}
	return nil
}

// Name returns the dependency label used in readiness responses.
func (x *QdrantIndex) Name() string { return "qdrant" }

// pingWithRetry health-checks with exponential backoff: initial 500ms, max
// interval 10s, max elapsed 30s.
func (x *QdrantIndex) pingWithRetry(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second
	return backoff.Retry(func() error { return x.Ping(ctx) }, backoff.WithContext(b, ctx))
}

// ensureCollections creates both collections and their payload indexes when
// missing. Idempotent; safe to call on every startup.
func (x *QdrantIndex) ensureCollections(ctx context.Context) error {
	if err := x.ensureCollection(ctx, x.cfg.CatalogCollection); err != nil {
		return err
	}
	if err := x.ensureCollection(ctx, x.cfg.ContentCollection); err != nil {
		return err
	}

	// Payload indexes on the filterable fields. Without these, filtered
	// search degrades to a full scan.
	if err := x.ensureFieldIndex(ctx, x.cfg.ContentCollection, "course_title", qdrant.FieldType_FieldTypeKeyword); err != nil {
		return err
	}
	if err := x.ensureFieldIndex(ctx, x.cfg.ContentCollection, "lesson_number", qdrant.FieldType_FieldTypeInteger); err != nil {
		return err
	}
	return nil
}

func (x *QdrantIndex) ensureCollection(ctx context.Context, name string) error {
	exists, err := x.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("qdrant: failed to check collection %q: %w", name, err)
	}
	if exists {
		return nil
	}

	err = x.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     x.cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: failed to create collection %q: %w", name, err)
	}
	return nil
}

func (x *QdrantIndex) ensureFieldIndex(ctx context.Context, collection, field string, ft qdrant.FieldType) error {
	_, err := x.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: collection,
		FieldName:      field,
		FieldType:      ft.Enum(),
	})
	if err != nil {
		return fmt.Errorf("qdrant: failed to create index for field %q: %w", field, err)
	}
	return nil
}

// coursePointID derives the stable catalog point ID for a course title, so
// re-ingesting a course updates its catalog entry in place.
func coursePointID(title string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("lectern:course:"+title)).String()
}

// chunkPointID derives a stable content point ID from the course title and
// the chunk's position, so re-ingestion overwrites instead of duplicating.
func chunkPointID(title string, idx int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("lectern:chunk:%s:%d", title, idx))).String()
}

// AddCourse upserts the catalog point for one course.
func (x *QdrantIndex) AddCourse(ctx context.Context, meta CourseMeta, vec []float32) error {
	if err := x.checkDimension(len(vec)); err != nil {
		return err
	}

	lessons := make([]interface{}, 0, len(meta.Lessons))
	for _, l := range meta.Lessons {
		lessons = append(lessons, map[string]interface{}{
			"number": l.Number,
			"title":  l.Title,
			"link":   l.Link,
		})
	}
	payload := map[string]interface{}{
		"title":      meta.Title,
		"link":       meta.Link,
		"instructor": meta.Instructor,
		"lessons":    lessons,
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(coursePointID(meta.Title)),
		Vectors: qdrant.NewVectors(vec...),
		Payload: qdrant.NewValueMap(payload),
	}

	_, err := x.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: x.cfg.CatalogCollection,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("qdrant: catalog upsert for %q failed: %w", meta.Title, err)
	}
	return nil
}

// AddChunks upserts content points in batches. vecs must be parallel to
// chunks.
func (x *QdrantIndex) AddChunks(ctx context.Context, chunks []course.Chunk, vecs [][]float32) error {
	if len(chunks) != len(vecs) {
		return fmt.Errorf("qdrant: %d chunks with %d vectors", len(chunks), len(vecs))
	}
	for i, v := range vecs {
		if err := x.checkDimension(len(v)); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
	}

	for start := 0; start < len(chunks); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		points := make([]*qdrant.PointStruct, 0, end-start)
		for i := start; i < end; i++ {
			c := chunks[i]
			payload := map[string]interface{}{
				"text":         c.Text,
				"course_title": c.CourseTitle,
				"chunk_index":  c.Index,
			}
			if c.Lesson != nil {
				payload["lesson_number"] = *c.Lesson
			}
			if c.Link != "" {
				payload["link"] = c.Link
			}
			points = append(points, &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(chunkPointID(c.CourseTitle, c.Index)),
				Vectors: qdrant.NewVectors(vecs[i]...),
				Payload: qdrant.NewValueMap(payload),
			})
		}

		_, err := x.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: x.cfg.ContentCollection,
			Points:         points,
		})
		if err != nil {
			return fmt.Errorf("qdrant: content upsert batch %d-%d failed: %w", start, end, err)
		}
	}
	return nil
}

// Search performs a filtered cosine similarity search over content chunks.
func (x *QdrantIndex) Search(ctx context.Context, vec []float32, f Filter, limit int) ([]Hit, error) {
	if err := x.checkDimension(len(vec)); err != nil {
		return nil, err
	}

	var must []*qdrant.Condition
	if f.CourseTitle != "" {
		must = append(must, qdrant.NewMatch("course_title", f.CourseTitle))
	}
	if f.Lesson != nil {
		must = append(must, qdrant.NewMatchInt("lesson_number", int64(*f.Lesson)))
	}
	var filter *qdrant.Filter
	if len(must) > 0 {
		filter = &qdrant.Filter{Must: must}
	}

	results, err := x.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: x.cfg.ContentCollection,
		Query:          qdrant.NewQuery(vec...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: content search failed: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		hit := Hit{Score: r.Score}
		p := r.Payload
		if p == nil {
			continue
		}
		hit.Text = p["text"].GetStringValue()
		hit.CourseTitle = p["course_title"].GetStringValue()
		if v, ok := p["lesson_number"]; ok {
			n := int(v.GetIntegerValue())
			hit.Lesson = &n
		}
		if v, ok := p["link"]; ok {
			hit.Link = v.GetStringValue()
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// ResolveCourse returns the catalog entry whose embedded title is closest to
// the query vector, or (nil, nil) when the catalog is empty.
func (x *QdrantIndex) ResolveCourse(ctx context.Context, vec []float32) (*CourseMeta, error) {
	if err := x.checkDimension(len(vec)); err != nil {
		return nil, err
	}

	results, err := x.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: x.cfg.CatalogCollection,
		Query:          qdrant.NewQuery(vec...),
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: catalog search failed: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return decodeCourseMeta(results[0].Payload), nil
}

// CourseTitles scrolls the catalog and returns every course title, sorted.
func (x *QdrantIndex) CourseTitles(ctx context.Context) ([]string, error) {
	var titles []string
	var offset *qdrant.PointId
	batch := uint32(100)

	for {
		results, err := x.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: x.cfg.CatalogCollection,
			Limit:          qdrant.PtrOf(batch),
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayloadInclude("title"),
		})
		if err != nil {
			return nil, fmt.Errorf("qdrant: catalog scroll failed: %w", err)
		}

		for _, r := range results {
			if title := r.Payload["title"].GetStringValue(); title != "" {
				titles = append(titles, title)
			}
		}

		if uint32(len(results)) < batch {
			break
		}
		offset = results[len(results)-1].Id
	}

	// The scroll offset is inclusive, so page boundaries repeat one point.
	sort.Strings(titles)
	return slices.Compact(titles), nil
}

// CourseMeta fetches the catalog entry for an exact title.
func (x *QdrantIndex) CourseMeta(ctx context.Context, title string) (*CourseMeta, error) {
	results, err := x.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: x.cfg.CatalogCollection,
		Ids:            []*qdrant.PointId{qdrant.NewIDUUID(coursePointID(title))},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: catalog get for %q failed: %w", title, err)
	}
	if len(results) == 0 {
		return nil, ErrCourseNotFound
	}
	return decodeCourseMeta(results[0].Payload), nil
}

// DeleteCourse removes a course's catalog point and every chunk that belongs
// to it.
func (x *QdrantIndex) DeleteCourse(ctx context.Context, title string) error {
	_, err := x.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: x.cfg.CatalogCollection,
		Points:         qdrant.NewPointsSelector(qdrant.NewIDUUID(coursePointID(title))),
	})
	if err != nil {
		return fmt.Errorf("qdrant: catalog delete for %q failed: %w", title, err)
	}

	_, err = x.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: x.cfg.ContentCollection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("course_title", title)},
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: content delete for %q failed: %w", title, err)
	}
	return nil
}

// Clear drops and recreates both collections.
func (x *QdrantIndex) Clear(ctx context.Context) error {
	for _, name := range []string{x.cfg.CatalogCollection, x.cfg.ContentCollection} {
		if err := x.client.DeleteCollection(ctx, name); err != nil {
			return fmt.Errorf("qdrant: failed to delete collection %q: %w", name, err)
		}
	}
	return x.ensureCollections(ctx)
}

// Close closes the underlying Qdrant gRPC connection.
func (x *QdrantIndex) Close() error {
	return x.client.Close()
}

func (x *QdrantIndex) checkDimension(got int) error {
	if x.cfg.VectorSize > 0 && uint64(got) != x.cfg.VectorSize {
		return fmt.Errorf("%w: got %d dimensions, collection expects %d", ErrDimensionMismatch, got, x.cfg.VectorSize)
	}
	return nil
}

// decodeCourseMeta rebuilds a CourseMeta from a catalog point payload.
func decodeCourseMeta(p map[string]*qdrant.Value) *CourseMeta {
	meta := &CourseMeta{
		Title:      p["title"].GetStringValue(),
		Link:       p["link"].GetStringValue(),
		Instructor: p["instructor"].GetStringValue(),
	}
	if lv := p["lessons"].GetListValue(); lv != nil {
		for _, v := range lv.Values {
			s := v.GetStructValue()
			if s == nil {
				continue
			}
			fields := s.Fields
			meta.Lessons = append(meta.Lessons, LessonMeta{
				Number: int(fields["number"].GetIntegerValue()),
				Title:  fields["title"].GetStringValue(),
				Link:   fields["link"].GetStringValue(),
			})
		}
	}
	return meta
}
