// Package rag wires the store, tools, generator and session manager into the
// course-materials question-answering system and translates internal failures
// into user-facing messages.
package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/courseflow/courseflow/core"
	"github.com/courseflow/courseflow/document"
	"github.com/courseflow/courseflow/generator"
	"github.com/courseflow/courseflow/logging"
	"github.com/courseflow/courseflow/model"
	"github.com/courseflow/courseflow/session"
	"github.com/courseflow/courseflow/store"
	"github.com/courseflow/courseflow/tool"
)

const queryPrefix = "Answer this question about course materials: "

// Options configures a System.
type Options struct {
	MaxRounds  int
	MaxHistory int
	ChunkSize  int
	Overlap    int
	// APIKeyConfigured gates queries: when false every query returns the
	// not-configured message without calling the completion service.
	APIKeyConfigured bool
	Logger           logging.Logger
}

// System is the top-level façade callers and the HTTP layer talk to.
type System struct {
	gen              *generator.Generator
	registry         *tool.Registry
	store            store.VectorStore
	sessions         *session.Manager
	processor        *document.Processor
	apiKeyConfigured bool
	logger           logging.Logger
}

// New assembles a System around a completion client and a store. The content
// search tool and the outline tool are registered in that order.
func New(client model.Client, vs store.VectorStore, optFns ...func(o *Options)) (*System, error) {
	opts := Options{
		MaxRounds:        2,
		MaxHistory:       2,
		ChunkSize:        800,
		Overlap:          100,
		APIKeyConfigured: true,
		Logger:           logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	// A fresh registry cannot hold duplicates, so built-in registration is a
	// programming error if it ever fails.
	registry := tool.NewRegistry(opts.Logger)
	registry.MustRegister(tool.NewSearchTool(vs))
	registry.MustRegister(tool.NewOutlineTool(vs))

	gen := generator.New(client, func(o *generator.Options) {
		o.MaxRounds = opts.MaxRounds
		o.Logger = opts.Logger
	})

	return &System{
		gen:              gen,
		registry:         registry,
		store:            vs,
		sessions:         session.NewManager(opts.MaxHistory),
		processor:        document.NewProcessor(opts.ChunkSize, opts.Overlap),
		apiKeyConfigured: opts.APIKeyConfigured,
		logger:           opts.Logger,
	}, nil
}

// Query answers a user question in the context of sessionID's history and
// returns the answer with its provenance sources. Failures never surface as
// errors here; they are classified into user-facing messages with no sources.
func (s *System) Query(ctx context.Context, query, sessionID string) (string, []core.Source) {
	if !s.apiKeyConfigured {
		return "Error: Anthropic API key not configured. Please set ANTHROPIC_API_KEY", nil
	}

	history := s.sessions.History(sessionID)

	answer, sources, err := s.gen.Respond(ctx, queryPrefix+query, history, s.registry)
	if err != nil {
		s.logger.Error("query failed", "session_id", sessionID, "error", err)
		return classify(err), nil
	}

	s.sessions.Append(sessionID, query, answer)
	return answer, sources
}

// classify maps a completion-service failure to a user-facing message.
func classify(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "authentication") || strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "invalid api key") || strings.Contains(msg, "401"):
		return "Error: Invalid Anthropic API key. Please check your ANTHROPIC_API_KEY"
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return "Error: API rate limit exceeded. Please try again later"
	case strings.Contains(msg, "connection") || strings.Contains(msg, "network") ||
		strings.Contains(msg, "timeout") || strings.Contains(msg, "no such host"):
		return "Error: Network connection issue. Please check your internet connection"
	default:
		return fmt.Sprintf("Error: Query processing failed - %s", err.Error())
	}
}

// AddCourseDocument parses and indexes one course script, returning the
// course and its chunk count.
func (s *System) AddCourseDocument(path string) (*core.Course, int, error) {
	course, chunks, err := s.processor.ProcessFile(path)
	if err != nil {
		return nil, 0, err
	}
	if err := s.store.AddCourse(course); err != nil {
		return nil, 0, err
	}
	if err := s.store.AddChunks(chunks); err != nil {
		return nil, 0, err
	}
	s.logger.Info("course indexed", "course", course.Title, "chunks", len(chunks))
	return course, len(chunks), nil
}

// AddCourseFolder indexes every .txt course script in dir, skipping course
// titles that are already present. It returns the number of courses and
// chunks added.
func (s *System) AddCourseFolder(dir string) (int, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read docs dir: %w", err)
	}

	existing := make(map[string]bool)
	for _, title := range s.store.Titles() {
		existing[title] = true
	}

	coursesAdded, chunksAdded := 0, 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		course, chunks, err := s.processor.ProcessFile(path)
		if err != nil {
			s.logger.Warn("skipping unparseable course script", "file", entry.Name(), "error", err)
			continue
		}
		if existing[course.Title] {
			continue
		}
		if err := s.store.AddCourse(course); err != nil {
			return coursesAdded, chunksAdded, err
		}
		if err := s.store.AddChunks(chunks); err != nil {
			return coursesAdded, chunksAdded, err
		}
		existing[course.Title] = true
		coursesAdded++
		chunksAdded += len(chunks)
		s.logger.Info("course indexed", "course", course.Title, "chunks", len(chunks))
	}

	return coursesAdded, chunksAdded, nil
}

// Analytics returns the number of indexed courses and their titles.
func (s *System) Analytics() (int, []string) {
	return s.store.Count(), s.store.Titles()
}

// Sessions exposes the session manager for the HTTP layer.
func (s *System) Sessions() *session.Manager { return s.sessions }
