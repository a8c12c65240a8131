// Package store defines the course-content search boundary and a
// process-local implementation of it. The tool layer depends only on the
// VectorStore interface, so a real vector database can be swapped in without
// touching the tools.
package store

import (
	"errors"

	"github.com/courseflow/courseflow/core"
)

// ErrCourseNotFound is returned when a course title cannot be resolved.
var ErrCourseNotFound = errors.New("course not found")

// SearchResults holds the documents matched by a search plus per-document
// metadata (course_title, lesson_number). Err carries a store-level failure
// message that tools surface to the model as result text.
type SearchResults struct {
	Documents []string
	Metadata  []map[string]any
	Err       string
}

// IsEmpty reports whether the search matched nothing.
func (r SearchResults) IsEmpty() bool { return len(r.Documents) == 0 }

// VectorStore is the storage boundary for course content and metadata.
// A nil lessonNumber means no lesson filter; courseName "" means no course
// filter. Implementations must be safe for concurrent use.
type VectorStore interface {
	// Search returns content chunks relevant to query, optionally filtered by
	// course name (fuzzy-matched) and lesson number.
	Search(query, courseName string, lessonNumber *int) (SearchResults, error)

	// ResolveCourseName fuzzy-matches a partial course title to the exact
	// stored title. Returns ErrCourseNotFound when nothing matches.
	ResolveCourseName(name string) (string, error)

	// GetCourseOutline returns the course metadata stored under an exact
	// title, typically one obtained from ResolveCourseName.
	GetCourseOutline(title string) (*core.Course, error)

	// GetLessonLink returns the link of a lesson, or "" when unknown.
	GetLessonLink(courseTitle string, lessonNumber int) string

	// AddCourse indexes course metadata.
	AddCourse(course *core.Course) error

	// AddChunks indexes content chunks for search.
	AddChunks(chunks []core.Chunk) error

	// Count returns the number of indexed courses.
	Count() int

	// Titles returns the titles of all indexed courses.
	Titles() []string
}
