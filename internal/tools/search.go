package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/lectern-ai/lectern-go/internal/index"
	"github.com/lectern-ai/lectern-go/internal/retrieval"
)

// SearchTool exposes filtered course-content retrieval to the model. Hits
// come back as labeled text blocks; one source per hit is recorded on the
// current turn.
type SearchTool struct {
	service *retrieval.Service
}

// searchInput is the JSON-serialisable input schema for SearchTool.
type searchInput struct {
	// Query is the text to search for.
	Query string `json:"query"`

	// CourseName optionally narrows the search to one course (fuzzy match).
	CourseName string `json:"course_name"`

	// LessonNumber optionally narrows the search to one lesson.
	LessonNumber *int `json:"lesson_number"`
}

// NewSearchTool constructs a SearchTool over the given retrieval service.
func NewSearchTool(svc *retrieval.Service) *SearchTool {
	return &SearchTool{service: svc}
}

// Name returns the tool name registered with the model.
func (t *SearchTool) Name() string { return "search_course_content" }

// Description returns the model-facing description of this tool.
func (t *SearchTool) Description() string {
	return "Search course materials with smart course name matching and lesson filtering"
}

// Info returns the Eino tool metadata including the JSON input schema.
func (t *SearchTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: t.Name(),
		Desc: t.Description(),
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Type:     schema.String,
				Desc:     "What to search for in the course content",
				Required: true,
			},
			"course_name": {
				Type: schema.String,
				Desc: "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
			},
			"lesson_number": {
				Type: schema.Integer,
				Desc: "Specific lesson number to search within (e.g. 1, 3)",
			},
		}),
	}, nil
}

// InvokableRun executes the search and formats the hits for the model.
// Resolution failures and empty result sets come back as plain content so
// the model can tell the user instead of the turn aborting.
func (t *SearchTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var input searchInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return "", fmt.Errorf("search_course_content: invalid input: %w", err)
	}
	if strings.TrimSpace(input.Query) == "" {
		return "", fmt.Errorf("search_course_content: query is required")
	}

	results, err := t.service.Search(ctx, input.Query, retrieval.Options{
		CourseName: input.CourseName,
		Lesson:     input.LessonNumber,
	})
	var resErr *retrieval.ResolutionError
	if errors.As(err, &resErr) {
		return resErr.Error(), nil
	}
	if err != nil {
		return "", fmt.Errorf("search_course_content: %w", err)
	}
	if results.Empty() {
		return results.Outcome(), nil
	}

	return formatHits(results.Hits, TurnFromContext(ctx)), nil
}

// formatHits renders each hit as a "[<course> - Lesson <n>]" labeled block
// and records one source per hit on the turn.
func formatHits(hits []index.Hit, turn *Turn) string {
	blocks := make([]string, 0, len(hits))
	for _, h := range hits {
		label := h.CourseTitle
		if h.Lesson != nil {
			label = fmt.Sprintf("%s - Lesson %d", h.CourseTitle, *h.Lesson)
		}
		turn.AddSource(Source{Text: label, Link: h.Link})
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", label, h.Text))
	}
	return strings.Join(blocks, "\n\n")
}
