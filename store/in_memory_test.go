package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseflow/courseflow/core"
)

func intPtr(n int) *int { return &n }

func testStore(t *testing.T) *InMemoryStore {
	t.Helper()
	s := NewInMemoryStore(5)

	require.NoError(t, s.AddCourse(&core.Course{
		Title: "Python Basics Course",
		Link:  "https://example.com/course",
		Lessons: []core.Lesson{
			{Number: 1, Title: "Variables", Link: "https://example.com/lesson/1"},
			{Number: 2, Title: "Functions", Link: "https://example.com/lesson/2"},
		},
	}))
	require.NoError(t, s.AddCourse(&core.Course{Title: "Advanced Go"}))

	require.NoError(t, s.AddChunks([]core.Chunk{
		{Content: "Variables hold values in Python", CourseTitle: "Python Basics Course", LessonNumber: intPtr(1), Index: 0},
		{Content: "Functions group reusable code in Python", CourseTitle: "Python Basics Course", LessonNumber: intPtr(2), Index: 1},
		{Content: "Goroutines run functions concurrently", CourseTitle: "Advanced Go", LessonNumber: intPtr(1), Index: 0},
	}))
	return s
}

func TestAddCourseAndAnalytics(t *testing.T) {
	s := testStore(t)
	assert.Equal(t, 2, s.Count())
	assert.Equal(t, []string{"Python Basics Course", "Advanced Go"}, s.Titles())
}

func TestAddCourseRequiresTitle(t *testing.T) {
	s := NewInMemoryStore(5)
	assert.Error(t, s.AddCourse(&core.Course{}))
	assert.Error(t, s.AddCourse(nil))
}

func TestResolveCourseName(t *testing.T) {
	s := testStore(t)

	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "Python Basics Course", want: "Python Basics Course"},
		{name: "python", want: "Python Basics Course"},
		{name: "GO", want: "Advanced Go"},
		{name: "nonexistent", wantErr: true},
		{name: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("resolve %q", tt.name), func(t *testing.T) {
			got, err := s.ResolveCourseName(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrCourseNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearchUnfiltered(t *testing.T) {
	s := testStore(t)

	results, err := s.Search("functions", "", nil)
	require.NoError(t, err)
	require.Len(t, results.Documents, 2)
	assert.Empty(t, results.Err)

	for _, meta := range results.Metadata {
		assert.Contains(t, meta, "course_title")
		assert.Contains(t, meta, "lesson_number")
	}
}

func TestSearchCourseFilter(t *testing.T) {
	s := testStore(t)

	results, err := s.Search("functions", "python", nil)
	require.NoError(t, err)
	require.Len(t, results.Documents, 1)
	assert.Equal(t, "Functions group reusable code in Python", results.Documents[0])
	assert.Equal(t, "Python Basics Course", results.Metadata[0]["course_title"])
}

func TestSearchLessonFilter(t *testing.T) {
	s := testStore(t)

	results, err := s.Search("python", "Python Basics Course", intPtr(1))
	require.NoError(t, err)
	require.Len(t, results.Documents, 1)
	assert.Equal(t, 1, results.Metadata[0]["lesson_number"])
}

func TestSearchUnknownCourseReportsError(t *testing.T) {
	s := testStore(t)

	results, err := s.Search("anything", "Nonexistent Course", nil)
	require.NoError(t, err)
	assert.Equal(t, "No course found matching 'Nonexistent Course'", results.Err)
	assert.True(t, results.IsEmpty())
}

func TestSearchNoMatches(t *testing.T) {
	s := testStore(t)

	results, err := s.Search("astrophysics", "", nil)
	require.NoError(t, err)
	assert.True(t, results.IsEmpty())
	assert.Empty(t, results.Err)
}

func TestSearchCapsResults(t *testing.T) {
	s := NewInMemoryStore(2)
	require.NoError(t, s.AddCourse(&core.Course{Title: "C"}))

	var chunks []core.Chunk
	for i := 0; i < 5; i++ {
		chunks = append(chunks, core.Chunk{
			Content:     fmt.Sprintf("topic mention number %d", i),
			CourseTitle: "C",
			Index:       i,
		})
	}
	require.NoError(t, s.AddChunks(chunks))

	results, err := s.Search("topic", "", nil)
	require.NoError(t, err)
	assert.Len(t, results.Documents, 2)
}

func TestSearchRanksByOverlap(t *testing.T) {
	s := NewInMemoryStore(5)
	require.NoError(t, s.AddCourse(&core.Course{Title: "C"}))
	require.NoError(t, s.AddChunks([]core.Chunk{
		{Content: "only variables here", CourseTitle: "C", Index: 0},
		{Content: "variables and functions together", CourseTitle: "C", Index: 1},
	}))

	results, err := s.Search("variables functions", "", nil)
	require.NoError(t, err)
	require.Len(t, results.Documents, 2)
	assert.Equal(t, "variables and functions together", results.Documents[0])
}

func TestGetLessonLink(t *testing.T) {
	s := testStore(t)

	assert.Equal(t, "https://example.com/lesson/2", s.GetLessonLink("Python Basics Course", 2))
	assert.Empty(t, s.GetLessonLink("Python Basics Course", 99))
	assert.Empty(t, s.GetLessonLink("Nonexistent", 1))
}

func TestGetCourseOutline(t *testing.T) {
	s := testStore(t)

	course, err := s.GetCourseOutline("Python Basics Course")
	require.NoError(t, err)
	assert.Equal(t, "Python Basics Course", course.Title)
	assert.Len(t, course.Lessons, 2)

	// Exact titles only; partial names go through ResolveCourseName first.
	_, err = s.GetCourseOutline("python")
	assert.ErrorIs(t, err, ErrCourseNotFound)

	_, err = s.GetCourseOutline("nope")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestResolveThenOutline(t *testing.T) {
	s := testStore(t)

	resolved, err := s.ResolveCourseName("python")
	require.NoError(t, err)

	course, err := s.GetCourseOutline(resolved)
	require.NoError(t, err)
	assert.Equal(t, "Python Basics Course", course.Title)
}
