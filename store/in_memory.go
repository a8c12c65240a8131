package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/courseflow/courseflow/core"
)

// InMemoryStore is a process-local VectorStore. Relevance is approximated by
// lexical overlap between the query and chunk content, which is enough for
// development, tests and small corpora. All operations are RWMutex-guarded.
type InMemoryStore struct {
	mu         sync.RWMutex
	courses    map[string]*core.Course
	titles     []string
	chunks     []core.Chunk
	maxResults int
}

// NewInMemoryStore creates an empty store returning at most maxResults
// documents per search (values < 1 fall back to 5).
func NewInMemoryStore(maxResults int) *InMemoryStore {
	if maxResults < 1 {
		maxResults = 5
	}
	return &InMemoryStore{
		courses:    make(map[string]*core.Course),
		maxResults: maxResults,
	}
}

// AddCourse indexes course metadata, replacing any course of the same title.
func (s *InMemoryStore) AddCourse(course *core.Course) error {
	if course == nil || course.Title == "" {
		return fmt.Errorf("course must have a title")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.courses[course.Title]; !exists {
		s.titles = append(s.titles, course.Title)
	}
	s.courses[course.Title] = course
	return nil
}

// AddChunks indexes content chunks for search.
func (s *InMemoryStore) AddChunks(chunks []core.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunks...)
	return nil
}

// Count returns the number of indexed courses.
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.courses)
}

// Titles returns the titles of all indexed courses in insertion order.
func (s *InMemoryStore) Titles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.titles))
	copy(out, s.titles)
	return out
}

// ResolveCourseName fuzzy-matches a partial title: exact match first, then
// case-insensitive substring match against stored titles.
func (s *InMemoryStore) ResolveCourseName(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolveLocked(name)
}

func (s *InMemoryStore) resolveLocked(name string) (string, error) {
	if _, ok := s.courses[name]; ok {
		return name, nil
	}

	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return "", fmt.Errorf("%w: %q", ErrCourseNotFound, name)
	}

	for _, title := range s.titles {
		if strings.Contains(strings.ToLower(title), needle) {
			return title, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrCourseNotFound, name)
}

// GetCourseOutline returns the course stored under an exact title.
func (s *InMemoryStore) GetCourseOutline(title string) (*core.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	course, ok := s.courses[title]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCourseNotFound, title)
	}
	return course, nil
}

// GetLessonLink returns the link of a lesson, or "" when the course or lesson
// is unknown.
func (s *InMemoryStore) GetLessonLink(courseTitle string, lessonNumber int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	course, ok := s.courses[courseTitle]
	if !ok {
		return ""
	}
	if lesson := course.Lesson(lessonNumber); lesson != nil {
		return lesson.Link
	}
	return ""
}

// Search scores chunks by lexical overlap with the query, applies the course
// and lesson filters, and returns the top maxResults documents. An
// unresolvable course filter is reported through SearchResults.Err, not as a
// Go error, so the model can read it as tool output.
func (s *InMemoryStore) Search(query, courseName string, lessonNumber *int) (SearchResults, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	courseFilter := ""
	if courseName != "" {
		resolved, err := s.resolveLocked(courseName)
		if err != nil {
			return SearchResults{Err: fmt.Sprintf("No course found matching '%s'", courseName)}, nil
		}
		courseFilter = resolved
	}

	terms := queryTerms(query)

	type scored struct {
		chunk core.Chunk
		score int
		pos   int
	}
	var hits []scored

	for i, chunk := range s.chunks {
		if courseFilter != "" && chunk.CourseTitle != courseFilter {
			continue
		}
		if lessonNumber != nil {
			if chunk.LessonNumber == nil || *chunk.LessonNumber != *lessonNumber {
				continue
			}
		}
		score := overlap(chunk.Content, terms)
		if score == 0 {
			continue
		}
		hits = append(hits, scored{chunk: chunk, score: score, pos: i})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].pos < hits[j].pos
	})

	if len(hits) > s.maxResults {
		hits = hits[:s.maxResults]
	}

	results := SearchResults{}
	for _, h := range hits {
		results.Documents = append(results.Documents, h.chunk.Content)
		meta := map[string]any{"course_title": h.chunk.CourseTitle}
		if h.chunk.LessonNumber != nil {
			meta["lesson_number"] = *h.chunk.LessonNumber
		}
		results.Metadata = append(results.Metadata, meta)
	}
	return results, nil
}

func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		terms = append(terms, strings.Trim(f, ".,!?;:\"'()"))
	}
	return terms
}

func overlap(content string, terms []string) int {
	lower := strings.ToLower(content)
	score := 0
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(lower, term) {
			score++
		}
	}
	return score
}
