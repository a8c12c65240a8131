// Package document parses course scripts and chunks their content for
// indexing. The expected file format is a metadata header followed by lesson
// sections:
//
//	Course Title: Python Basics
//	Course Link: https://example.com/course
//	Course Instructor: Ada Lovelace
//
//	Lesson 0: Introduction
//	Lesson Link: https://example.com/lesson/0
//	lesson text ...
package document

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/courseflow/courseflow/core"
)

// Processor splits course scripts into metadata and overlapping content
// chunks. ChunkSize and Overlap are measured in characters.
type Processor struct {
	chunkSize int
	overlap   int
}

// NewProcessor creates a Processor. Non-positive sizes fall back to 800/100.
func NewProcessor(chunkSize, overlap int) *Processor {
	if chunkSize < 1 {
		chunkSize = 800
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 100
	}
	return &Processor{chunkSize: chunkSize, overlap: overlap}
}

// ProcessFile parses the course script at path.
func (p *Processor) ProcessFile(path string) (*core.Course, []core.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open course script: %w", err)
	}
	defer f.Close()

	course, chunks, err := p.Process(f)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return course, chunks, nil
}

// Process parses a course script from r, returning the course metadata and
// the searchable chunks of its lesson content.
func (p *Processor) Process(r io.Reader) (*core.Course, []core.Chunk, error) {
	course := &core.Course{}
	var chunks []core.Chunk

	var currentLesson *core.Lesson
	var lessonText strings.Builder
	chunkIndex := 0

	flushLesson := func() {
		if currentLesson == nil {
			return
		}
		text := strings.TrimSpace(lessonText.String())
		lessonText.Reset()
		course.Lessons = append(course.Lessons, *currentLesson)
		if text == "" {
			return
		}
		lessonNumber := currentLesson.Number
		for i, piece := range p.chunkText(text) {
			content := piece
			if i == 0 {
				content = fmt.Sprintf("Course %s Lesson %d content: %s", course.Title, lessonNumber, piece)
			}
			n := lessonNumber
			chunks = append(chunks, core.Chunk{
				Content:      content,
				CourseTitle:  course.Title,
				LessonNumber: &n,
				Index:        chunkIndex,
			})
			chunkIndex++
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "Course Title:"):
			course.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Title:"))
		case strings.HasPrefix(trimmed, "Course Link:"):
			course.Link = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Link:"))
		case strings.HasPrefix(trimmed, "Course Instructor:"):
			course.Instructor = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Instructor:"))
		case currentLesson != nil && strings.HasPrefix(trimmed, "Lesson Link:"):
			currentLesson.Link = strings.TrimSpace(strings.TrimPrefix(trimmed, "Lesson Link:"))
		default:
			if number, title, ok := parseLessonHeader(trimmed); ok {
				flushLesson()
				currentLesson = &core.Lesson{Number: number, Title: title}
				continue
			}
			if currentLesson != nil && trimmed != "" {
				if lessonText.Len() > 0 {
					lessonText.WriteByte(' ')
				}
				lessonText.WriteString(trimmed)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read course script: %w", err)
	}

	flushLesson()

	if course.Title == "" {
		return nil, nil, fmt.Errorf("missing 'Course Title:' header")
	}

	return course, chunks, nil
}

// parseLessonHeader matches "Lesson N: Title" markers.
func parseLessonHeader(line string) (int, string, bool) {
	if !strings.HasPrefix(line, "Lesson ") {
		return 0, "", false
	}
	rest := strings.TrimPrefix(line, "Lesson ")
	colon := strings.Index(rest, ":")
	if colon < 1 {
		return 0, "", false
	}
	number, err := strconv.Atoi(strings.TrimSpace(rest[:colon]))
	if err != nil {
		return 0, "", false
	}
	return number, strings.TrimSpace(rest[colon+1:]), true
}

// chunkText splits text into sentence-aligned chunks of at most chunkSize
// characters, carrying roughly overlap characters of trailing sentences into
// the next chunk for context continuity.
func (p *Processor) chunkText(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var out []string
	i := 0
	for i < len(sentences) {
		size := 0
		j := i
		for j < len(sentences) {
			add := len(sentences[j])
			if j > i {
				add++ // joining space
			}
			if size+add > p.chunkSize && j > i {
				break
			}
			size += add
			j++
		}

		out = append(out, strings.Join(sentences[i:j], " "))
		if j >= len(sentences) {
			break
		}

		// Back up whole sentences worth at most overlap characters, always
		// advancing by at least one sentence.
		next := j
		carried := 0
		for next > i+1 && carried+len(sentences[next-1]) <= p.overlap {
			carried += len(sentences[next-1]) + 1
			next--
		}
		i = next
	}
	return out
}

// splitSentences breaks text on sentence-ending punctuation followed by
// whitespace. Trailing text without terminal punctuation forms one sentence.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	runes := []rune(strings.TrimSpace(text))
	for i := 0; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if isSentenceEnd(runes[i]) && (i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t') {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
