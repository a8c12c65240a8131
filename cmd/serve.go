package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/courseflow/courseflow/app"
	"github.com/courseflow/courseflow/config"
	"github.com/courseflow/courseflow/logging"
	"github.com/courseflow/courseflow/rag"
	"github.com/courseflow/courseflow/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Index the docs folder and start the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	container, err := app.BuildContainer(cfgPath)
	if err != nil {
		return err
	}

	return container.Invoke(func(cfg *config.Config, system *rag.System, srv *server.Server, logger logging.Logger) error {
		if _, err := os.Stat(cfg.DocsDir); err == nil {
			courses, chunks, err := system.AddCourseFolder(cfg.DocsDir)
			if err != nil {
				return fmt.Errorf("index docs folder: %w", err)
			}
			logger.Info("documents loaded", "courses", courses, "chunks", chunks)
		} else {
			logger.Warn("docs folder not found, starting with an empty index", "dir", cfg.DocsDir)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	})
}
