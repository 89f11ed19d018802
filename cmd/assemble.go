package cmd

import (
	"errors"
	"fmt"

	"github.com/brogergvhs/parkdl/internal/assemble"
	"github.com/brogergvhs/parkdl/internal/collection"
	"github.com/brogergvhs/parkdl/internal/config"
	"github.com/brogergvhs/parkdl/internal/normalize"
	"github.com/brogergvhs/parkdl/internal/pdf"
	"github.com/brogergvhs/parkdl/internal/ui"

	"github.com/spf13/cobra"
)

var (
	flagAsmKeepFolders bool
	flagAsmSkipMerge   bool
)

var assembleCmd = &cobra.Command{
	Use:   "assemble <title-folder>",
	Short: "Convert a title folder's chapter image folders into PDFs, normalize filenames and merge the collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := config.LoadMerged(config.Options{
			IgnoreConfig: flagIgnoreConfig,
			Debug:        flagDebug,
			KeepFolders:  flagAsmKeepFolders,
		})
		if err != nil {
			return err
		}

		logSvc := ui.NewLogger(cfg.Debug)
		titleDir := args[0]

		enc := pdf.NewEncoder()
		asm := &assemble.Assembler{Enc: enc, Log: logSvc, KeepFolders: cfg.KeepFolders}
		rep, err := asm.Run(titleDir)
		if err != nil {
			return err
		}

		if _, err := normalize.Run(titleDir); err != nil {
			return err
		}

		fmt.Printf("Documents: %d\n", len(rep.Documents))
		if len(rep.Retained) > 0 {
			fmt.Println("Retained folders:")
			for _, dir := range rep.Retained {
				fmt.Printf("  %s\n", dir)
			}
		}

		if flagAsmSkipMerge {
			return nil
		}

		colDir, err := collection.FindOrCreate(cfg.Collection, "")
		if err != nil {
			return err
		}
		out, err := collection.Merge(enc, titleDir, colDir)
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
	assembleCmd.Flags().BoolVar(&flagAsmKeepFolders, "keep-folders", false, "keep chapter image folders after conversion")
	assembleCmd.Flags().BoolVar(&flagAsmSkipMerge, "skip-merge", false, "skip the collection merge step")
	rootCmd.AddCommand(assembleCmd)
}
