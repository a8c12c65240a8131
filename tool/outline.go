package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/courseflow/courseflow/core"
	"github.com/courseflow/courseflow/store"
)

// OutlineTool returns the outline of a course: title, link and the numbered
// lesson list. The course name is resolved through the store's fuzzy matcher
// before the outline is fetched.
type OutlineTool struct {
	store store.VectorStore
}

// NewOutlineTool creates an OutlineTool over the given store.
func NewOutlineTool(s store.VectorStore) *OutlineTool {
	return &OutlineTool{store: s}
}

// Name implements Tool.
func (t *OutlineTool) Name() string { return "get_course_outline" }

// Description implements Tool.
func (t *OutlineTool) Description() string {
	return "Get the complete outline of a course including its title, link and all lessons"
}

// Parameters implements Tool.
func (t *OutlineTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"course_name": map[string]any{
				"type":        "string",
				"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
			},
		},
		"required": []string{"course_name"},
	}
}

// Execute implements Tool. An unresolvable course name becomes result text so
// the model can rephrase instead of failing the call.
func (t *OutlineTool) Execute(_ context.Context, args map[string]any) (string, []core.Source, error) {
	courseName, _ := args["course_name"].(string)

	resolved, err := t.store.ResolveCourseName(courseName)
	if err != nil {
		if errors.Is(err, store.ErrCourseNotFound) {
			return fmt.Sprintf("No course found matching '%s'", courseName), nil, nil
		}
		return "", nil, NewToolError(t.Name(), err.Error(), "STORE_ERROR")
	}

	course, err := t.store.GetCourseOutline(resolved)
	if err != nil {
		return "", nil, NewToolError(t.Name(), err.Error(), "STORE_ERROR")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s\n", course.Title)
	if course.Link != "" {
		fmt.Fprintf(&b, "Course Link: %s\n", course.Link)
	}
	if course.Instructor != "" {
		fmt.Fprintf(&b, "Instructor: %s\n", course.Instructor)
	}
	fmt.Fprintf(&b, "Lessons (%d):", len(course.Lessons))
	for _, lesson := range course.Lessons {
		fmt.Fprintf(&b, "\nLesson %d: %s", lesson.Number, lesson.Title)
	}

	source := core.Source{Text: course.Title, Link: course.Link}
	return b.String(), []core.Source{source}, nil
}
