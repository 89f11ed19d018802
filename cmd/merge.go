package cmd

import (
	"errors"
	"fmt"

	"github.com/brogergvhs/parkdl/internal/collection"
	"github.com/brogergvhs/parkdl/internal/config"
	"github.com/brogergvhs/parkdl/internal/pdf"
	"github.com/brogergvhs/parkdl/internal/ui"

	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <title-folder>",
	Short: "Merge a title folder's chapter PDFs into the collection folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := config.LoadMerged(config.Options{
			IgnoreConfig: flagIgnoreConfig,
			Debug:        flagDebug,
		})
		if err != nil {
			return err
		}

		logSvc := ui.NewLogger(cfg.Debug)

		colDir, err := collection.FindOrCreate(cfg.Collection, "")
		if err != nil {
			return err
		}

		out, err := collection.Merge(pdf.NewEncoder(), args[0], colDir)
		if errors.Is(err, collection.ErrNoDocuments) || errors.Is(err, collection.ErrNoFolder) {
			logSvc.Errorf("Nothing to merge: %v\n", err)
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Println("Merged:", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
