package rag

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/courseflow/courseflow/core"
	"github.com/courseflow/courseflow/logging"
	"github.com/courseflow/courseflow/model"
	"github.com/courseflow/courseflow/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newSystem(t *testing.T, client model.Client) *System {
	t.Helper()
	sys, err := New(client, store.NewInMemoryStore(5))
	require.NoError(t, err)
	return sys
}

func answer(text string) *model.Response {
	return &model.Response{
		Blocks:     []core.Block{core.TextBlock{Text: text}},
		StopReason: model.StopReasonEndTurn,
	}
}

func TestQueryPrefixesInstruction(t *testing.T) {
	client := model.NewScriptedClient().EnqueueResponse(answer("fine"))
	sys := newSystem(t, client)

	got, sources := sys.Query(context.Background(), "What is MCP?", "s1")
	assert.Equal(t, "fine", got)
	assert.Empty(t, sources)

	reqs := client.Requests()
	require.Len(t, reqs, 1)
	userText := core.FirstText(reqs[0].Messages[0].Blocks)
	assert.Equal(t, "Answer this question about course materials: What is MCP?", userText)
}

func TestQueryRecordsHistory(t *testing.T) {
	client := model.NewScriptedClient().
		EnqueueResponse(answer("first answer")).
		EnqueueResponse(answer("second answer"))
	sys := newSystem(t, client)

	sys.Query(context.Background(), "first question", "s1")
	sys.Query(context.Background(), "follow-up", "s1")

	reqs := client.Requests()
	require.Len(t, reqs, 2)
	assert.NotContains(t, reqs[0].System, "Previous conversation:")
	assert.Contains(t, reqs[1].System, "User: first question")
	assert.Contains(t, reqs[1].System, "Assistant: first answer")
}

func TestQueryFailedExchangeNotRecorded(t *testing.T) {
	client := model.NewScriptedClient().
		EnqueueError(errors.New("boom")).
		EnqueueResponse(answer("ok"))
	sys := newSystem(t, client)

	sys.Query(context.Background(), "doomed question", "s1")
	sys.Query(context.Background(), "next", "s1")

	assert.NotContains(t, client.Requests()[1].System, "doomed question")
}

func TestQueryToolsOffered(t *testing.T) {
	client := model.NewScriptedClient().EnqueueResponse(answer("ok"))
	sys := newSystem(t, client)

	sys.Query(context.Background(), "q", "s1")

	defs := client.Requests()[0].Tools
	require.Len(t, defs, 2)
	assert.Equal(t, "search_course_content", defs[0].Name)
	assert.Equal(t, "get_course_outline", defs[1].Name)
}

func TestQueryMissingAPIKey(t *testing.T) {
	client := model.NewScriptedClient()
	sys, err := New(client, store.NewInMemoryStore(5), func(o *Options) {
		o.APIKeyConfigured = false
	})
	require.NoError(t, err)

	got, sources := sys.Query(context.Background(), "q", "s1")
	assert.Equal(t, "Error: Anthropic API key not configured. Please set ANTHROPIC_API_KEY", got)
	assert.Nil(t, sources)
	assert.Zero(t, client.Calls())
}

func TestQueryErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "authentication",
			err:  errors.New("authentication_error: invalid x-api-key (401)"),
			want: "Error: Invalid Anthropic API key. Please check your ANTHROPIC_API_KEY",
		},
		{
			name: "rate limit",
			err:  errors.New("rate limit exceeded (429)"),
			want: "Error: API rate limit exceeded. Please try again later",
		},
		{
			name: "network",
			err:  errors.New("dial tcp: connection refused"),
			want: "Error: Network connection issue. Please check your internet connection",
		},
		{
			name: "generic",
			err:  errors.New("something odd happened"),
			want: "Error: Query processing failed - something odd happened",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := model.NewScriptedClient().EnqueueError(tt.err)
			sys := newSystem(t, client)

			got, sources := sys.Query(context.Background(), "q", "s1")
			assert.Equal(t, tt.want, got)
			assert.Nil(t, sources)
		})
	}
}

func TestQueryFailureLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, nil)))

	client := model.NewScriptedClient().EnqueueError(errors.New("completion exploded"))
	sys, err := New(client, store.NewInMemoryStore(5), func(o *Options) {
		o.Logger = logger
	})
	require.NoError(t, err)

	sys.Query(context.Background(), "q", "s1")

	assert.Contains(t, buf.String(), "query failed")
	assert.Contains(t, buf.String(), "completion exploded")
}

func TestQueryReturnsSourcesFromToolRound(t *testing.T) {
	client := model.NewScriptedClient().
		EnqueueResponse(&model.Response{
			Blocks: []core.Block{core.ToolUseBlock{
				ID:   "tu_1",
				Name: "get_course_outline",
				Input: map[string]any{
					"course_name": "Python Basics Course",
				},
			}},
			StopReason: model.StopReasonToolUse,
		}).
		EnqueueResponse(answer("The course has three lessons."))

	vs := store.NewInMemoryStore(5)
	require.NoError(t, vs.AddCourse(&core.Course{
		Title: "Python Basics Course",
		Link:  "https://example.com/course",
		Lessons: []core.Lesson{
			{Number: 1, Title: "Variables"},
		},
	}))

	sys, err := New(client, vs)
	require.NoError(t, err)

	got, sources := sys.Query(context.Background(), "outline please", "s1")
	assert.Equal(t, "The course has three lessons.", got)
	require.Len(t, sources, 1)
	assert.Equal(t, "Python Basics Course", sources[0].Text)
	assert.Equal(t, "https://example.com/course", sources[0].Link)
}

func TestQueryTwoToolRoundsAccumulatesSourcesInOrder(t *testing.T) {
	lesson2 := 2
	vs := store.NewInMemoryStore(5)
	require.NoError(t, vs.AddCourse(&core.Course{
		Title: "Python Basics",
		Link:  "https://example.com/course",
		Lessons: []core.Lesson{
			{Number: 1, Title: "Variables", Link: "https://example.com/lesson/1"},
			{Number: 2, Title: "Functions", Link: "https://example.com/lesson/2"},
		},
	}))
	require.NoError(t, vs.AddChunks([]core.Chunk{{
		Content:      "Functions group reusable code",
		CourseTitle:  "Python Basics",
		LessonNumber: &lesson2,
		Index:        0,
	}}))

	client := model.NewScriptedClient().
		EnqueueResponse(&model.Response{
			Blocks: []core.Block{core.ToolUseBlock{
				ID:    "tu_1",
				Name:  "get_course_outline",
				Input: map[string]any{"course_name": "Python Basics"},
			}},
			StopReason: model.StopReasonToolUse,
		}).
		EnqueueResponse(&model.Response{
			Blocks: []core.Block{core.ToolUseBlock{
				ID:    "tu_2",
				Name:  "search_course_content",
				Input: map[string]any{"query": "functions", "course_name": "Python Basics", "lesson_number": float64(2)},
			}},
			StopReason: model.StopReasonToolUse,
		}).
		EnqueueResponse(answer("Lesson 2 covers functions."))

	sys, err := New(client, vs)
	require.NoError(t, err)

	got, sources := sys.Query(context.Background(), "What does lesson 2 of Python Basics cover?", "s1")
	assert.Equal(t, "Lesson 2 covers functions.", got)
	assert.Equal(t, 3, client.Calls())
	assert.Empty(t, client.Requests()[2].Tools)

	require.Len(t, sources, 2)
	assert.Equal(t, core.Source{Text: "Python Basics", Link: "https://example.com/course"}, sources[0])
	assert.Equal(t, core.Source{Text: "Python Basics - Lesson 2", Link: "https://example.com/lesson/2"}, sources[1])
}

func TestAddCourseDocumentAndAnalytics(t *testing.T) {
	dir := t.TempDir()
	script := "Course Title: Test Course\nCourse Link: https://example.com\n\n" +
		"Lesson 1: Basics\nSome lesson content here. More content follows.\n"
	path := filepath.Join(dir, "course1.txt")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o644))

	sys := newSystem(t, model.NewScriptedClient())

	course, chunks, err := sys.AddCourseDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "Test Course", course.Title)
	assert.Positive(t, chunks)

	total, titles := sys.Analytics()
	assert.Equal(t, 1, total)
	assert.Equal(t, []string{"Test Course"}, titles)
}

func TestAddCourseFolderSkipsDuplicatesAndNonScripts(t *testing.T) {
	dir := t.TempDir()
	script := "Course Title: Folder Course\n\nLesson 1: One\nLesson content sentence.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte(script), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte(script), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644))

	sys := newSystem(t, model.NewScriptedClient())

	courses, chunks, err := sys.AddCourseFolder(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, courses)
	assert.Positive(t, chunks)

	// Re-running adds nothing.
	courses, chunks, err = sys.AddCourseFolder(dir)
	require.NoError(t, err)
	assert.Zero(t, courses)
	assert.Zero(t, chunks)
}

func TestAddCourseFolderMissingDir(t *testing.T) {
	sys := newSystem(t, model.NewScriptedClient())
	_, _, err := sys.AddCourseFolder(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
