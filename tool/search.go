package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/courseflow/courseflow/core"
	"github.com/courseflow/courseflow/store"
)

// SearchTool searches course content with optional course and lesson filters.
// It reports one provenance Source per returned document.
type SearchTool struct {
	store store.VectorStore
}

// NewSearchTool creates a SearchTool over the given store.
func NewSearchTool(s store.VectorStore) *SearchTool {
	return &SearchTool{store: s}
}

// Name implements Tool.
func (t *SearchTool) Name() string { return "search_course_content" }

// Description implements Tool.
func (t *SearchTool) Description() string {
	return "Search course materials with smart course name matching and lesson filtering"
}

// Parameters implements Tool.
func (t *SearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "What to search for in the course content",
			},
			"course_name": map[string]any{
				"type":        "string",
				"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
			},
			"lesson_number": map[string]any{
				"type":        "integer",
				"description": "Specific lesson number to search within (e.g. 1, 2, 3)",
			},
		},
		"required": []string{"query"},
	}
}

// Execute implements Tool. Store-level failures (for example an unresolvable
// course filter) become result text, not errors, so the model can read them
// and adjust its next call.
func (t *SearchTool) Execute(_ context.Context, args map[string]any) (string, []core.Source, error) {
	query, _ := args["query"].(string)
	courseName, _ := args["course_name"].(string)
	lessonNumber := intArg(args, "lesson_number")

	results, err := t.store.Search(query, courseName, lessonNumber)
	if err != nil {
		return "", nil, NewToolError(t.Name(), err.Error(), "STORE_ERROR")
	}

	if results.Err != "" {
		return results.Err, nil, nil
	}

	if results.IsEmpty() {
		return emptyMessage(courseName, lessonNumber), nil, nil
	}

	return t.format(results)
}

// format renders each hit as "[Course - Lesson N]\ncontent" blocks joined by
// blank lines, collecting a Source per hit.
func (t *SearchTool) format(results store.SearchResults) (string, []core.Source, error) {
	var blocks []string
	var sources []core.Source

	for i, doc := range results.Documents {
		courseTitle := "unknown"
		var lessonNumber *int

		if i < len(results.Metadata) {
			meta := results.Metadata[i]
			if title, ok := meta["course_title"].(string); ok && title != "" {
				courseTitle = title
			}
			lessonNumber = metaLesson(meta)
		}

		label := courseTitle
		if lessonNumber != nil {
			label = fmt.Sprintf("%s - Lesson %d", courseTitle, *lessonNumber)
		}

		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", label, doc))

		src := core.Source{Text: label}
		if lessonNumber != nil && courseTitle != "unknown" {
			src.Link = t.store.GetLessonLink(courseTitle, *lessonNumber)
		}
		sources = append(sources, src)
	}

	return strings.Join(blocks, "\n\n"), sources, nil
}

func emptyMessage(courseName string, lessonNumber *int) string {
	msg := "No relevant content found"
	if courseName != "" {
		msg += fmt.Sprintf(" in course '%s'", courseName)
	}
	if lessonNumber != nil {
		msg += fmt.Sprintf(" in lesson %d", *lessonNumber)
	}
	return msg + "."
}

// intArg reads an optional integer argument, accepting the float64 values
// JSON decoding produces.
func intArg(args map[string]any, key string) *int {
	switch v := args[key].(type) {
	case int:
		return &v
	case float64:
		n := int(v)
		return &n
	default:
		return nil
	}
}

// metaLesson reads lesson_number metadata, which may be an int (built in Go)
// or a float64 (decoded from JSON).
func metaLesson(meta map[string]any) *int {
	switch v := meta["lesson_number"].(type) {
	case int:
		return &v
	case float64:
		n := int(v)
		return &n
	default:
		return nil
	}
}
