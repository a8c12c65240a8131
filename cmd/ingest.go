package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/courseflow/courseflow/app"
	"github.com/courseflow/courseflow/rag"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <dir>",
	Short: "Index a folder of course scripts and print stats",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func runIngest(_ *cobra.Command, args []string) error {
	container, err := app.BuildContainer(cfgPath)
	if err != nil {
		return err
	}

	return container.Invoke(func(system *rag.System) error {
		courses, chunks, err := system.AddCourseFolder(args[0])
		if err != nil {
			return err
		}

		total, titles := system.Analytics()
		fmt.Printf("Indexed %d course(s), %d chunk(s)\n", courses, chunks)
		fmt.Printf("Store now holds %d course(s):\n", total)
		for _, title := range titles {
			fmt.Printf("  - %s\n", title)
		}
		return nil
	})
}
