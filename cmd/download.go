package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brogergvhs/parkdl/internal/assemble"
	"github.com/brogergvhs/parkdl/internal/collection"
	"github.com/brogergvhs/parkdl/internal/config"
	"github.com/brogergvhs/parkdl/internal/downloader"
	"github.com/brogergvhs/parkdl/internal/locate"
	"github.com/brogergvhs/parkdl/internal/normalize"
	"github.com/brogergvhs/parkdl/internal/order"
	"github.com/brogergvhs/parkdl/internal/pdf"
	"github.com/brogergvhs/parkdl/internal/render"
	"github.com/brogergvhs/parkdl/internal/ui"
	"github.com/brogergvhs/parkdl/internal/util"

	"github.com/spf13/cobra"
)

var (
	// selection
	flagURL       string
	flagTitle     string
	flagPageLimit int

	// runtime
	flagOutput         string
	flagCollection     string
	flagRetries        int
	flagDelay          int
	flagMinImages      int
	flagMaxImages      int
	flagMirrors        string
	flagMirrorFallback bool
	flagSelector       string
	flagKeepFolders    bool
	flagDryRun         bool
	flagSkipMerge      bool

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
)

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download a title's chapters and produce per-chapter PDFs plus a merged collection PDF. Uses the defaults from the selected config, overwritten by CLI flags",
		RunE:  runDownload,
	}

	// selection
	downloadCmd.Flags().StringVar(&flagURL, "url", "", "title page URL listing the chapters")
	downloadCmd.Flags().StringVar(&flagTitle, "title", "", "title name used to filter chapter links and name the output folder")
	downloadCmd.Flags().IntVar(&flagPageLimit, "page-limit", 0, "stop after this many successfully located chapters (0 = unlimited)")

	// runtime
	downloadCmd.Flags().StringVar(&flagOutput, "output", "", "output folder for the title")
	downloadCmd.Flags().StringVar(&flagCollection, "collection", "", "collection folder name for the merged PDF")
	downloadCmd.Flags().IntVar(&flagRetries, "retries", 0, "render attempts per chapter")
	downloadCmd.Flags().IntVar(&flagDelay, "delay", 0, "seconds to wait between attempts")
	downloadCmd.Flags().IntVar(&flagMinImages, "min-images", 0, "minimum image count a mirror must yield")
	downloadCmd.Flags().IntVar(&flagMaxImages, "max-images", 0, "image sources kept per chapter")
	downloadCmd.Flags().StringVar(&flagMirrors, "mirrors", "", "alternate mirror hosts (e.g. \"mangapark.io|mangapark.net\")")
	downloadCmd.Flags().BoolVar(&flagMirrorFallback, "mirror-fallback", false, "sweep mirror hosts instead of retrying one source")
	downloadCmd.Flags().StringVar(&flagSelector, "selector", "", "CSS selector for page images")
	downloadCmd.Flags().BoolVar(&flagKeepFolders, "keep-folders", false, "keep chapter image folders after conversion")
	downloadCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "show the ordered chapter list, don't download")
	downloadCmd.Flags().BoolVar(&flagSkipMerge, "skip-merge", false, "skip the collection merge step")

	// headers/auth
	downloadCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	downloadCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	downloadCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, _ []string) error {
	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig:   flagIgnoreConfig,
		Debug:          flagDebug,
		Output:         flagOutput,
		Collection:     flagCollection,
		KeepFolders:    flagKeepFolders,
		DefaultURL:     flagURL,
		DefaultTitle:   flagTitle,
		PageLimit:      flagPageLimit,
		Retries:        flagRetries,
		DelaySeconds:   flagDelay,
		MinImages:      flagMinImages,
		MaxImages:      flagMaxImages,
		Mirrors:        splitMirrors(flagMirrors),
		MirrorFallback: flagMirrorFallback,
		ImageSelector:  flagSelector,
		Cookie:         flagCookie,
		CookieFile:     flagCookieFile,
		UserAgent:      flagUserAgent,
	})
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	if usedPath != "" {
		fmt.Printf("Config file: %s\n", usedPath)
	}

	if cfg.DefaultURL == "" {
		return fmt.Errorf("missing --url and no default_url in config")
	}
	if cfg.DefaultTitle == "" {
		return fmt.Errorf("missing --title and no default_title in config")
	}

	fmt.Println("Full config:")
	cfg.Print()
	fmt.Println()

	titleDir := filepath.Join(cfg.Output, util.SafeFolderName(cfg.DefaultTitle))
	if err := os.MkdirAll(titleDir, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}
	defer util.RemoveIfEmpty(titleDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	util.OnInterrupt(cancel)

	renderOpts := render.Options{
		UserAgent:   util.PickUserAgent(cfg.UserAgent),
		Cookie:      cfg.Cookie,
		DebugLogger: logSvc,
	}
	newSession := func() (locate.Renderer, error) {
		return render.NewSession(ctx, renderOpts)
	}

	// chapter link discovery uses its own short-lived session
	sess, err := render.NewSession(ctx, renderOpts)
	if err != nil {
		return fmt.Errorf("renderer session: %w", err)
	}
	links, err := locate.Discover(sess, cfg.DefaultURL, cfg.DefaultTitle, 0)
	sess.Close()
	if err != nil {
		return err
	}

	ordered := order.SequenceList(links)
	fmt.Printf("Found %d chapters for %q (%d after ordering and filtering).\n\n",
		len(links), cfg.DefaultTitle, len(ordered))
	if len(ordered) == 0 {
		return fmt.Errorf("no chapters found on %s", cfg.DefaultURL)
	}

	if flagDryRun {
		fmt.Printf("Dry-run: %d chapters in reading order.\n\n", len(ordered))
		for i, id := range ordered {
			fmt.Printf("%3d) %s  [%s]\n", i+1, order.FolderName(id), id)
		}
		return nil
	}

	loc := &locate.Locator{
		NewSession: newSession,
		Retries:    cfg.Retries,
		Delay:      time.Duration(cfg.DelaySeconds) * time.Second,
		MinImages:  cfg.MinImages,
		MaxImages:  cfg.MaxImages,
		Selector:   cfg.ImageSelector,
		Mirrors:    cfg.Mirrors,
		Log:        logSvc,
	}
	util.OnInterrupt(loc.CloseSession)

	var set *locate.ImageSet
	var errLog []locate.ErrorRecord
	if cfg.MirrorFallback {
		set, errLog, err = loc.LocateMirrors(ctx, ordered, cfg.PageLimit)
	} else {
		set, errLog, err = loc.Locate(ctx, ordered, cfg.PageLimit)
	}
	if err != nil {
		return err
	}

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:     30 * time.Second,
		UserAgent:   util.PickUserAgent(cfg.UserAgent),
		Cookie:      cfg.Cookie,
		CookieFile:  cfg.CookieFile,
		DebugLogger: logSvc,
	})
	if err != nil {
		return err
	}

	pm := ui.NewProgressManager()
	stats := &ui.Stats{}
	start := time.Now()

	mat := downloader.New(client, titleDir, logSvc)
	assetFailures := mat.Materialize(ctx, set, pm, stats)
	pm.Close()
	stats.FailedImages.Store(int64(len(assetFailures)))
	stats.FailedChapters.Store(int64(len(errLog)))

	enc := pdf.NewEncoder()
	asm := &assemble.Assembler{Enc: enc, Log: logSvc, KeepFolders: cfg.KeepFolders}
	rep, err := asm.Run(titleDir)
	if err != nil {
		return err
	}

	if _, err := normalize.Run(titleDir); err != nil {
		return err
	}

	var merged string
	if !flagSkipMerge && len(rep.Documents) > 0 {
		colDir, err := collection.FindOrCreate(cfg.Collection, "")
		if err != nil {
			return err
		}
		merged, err = collection.Merge(enc, titleDir, colDir)
		if errors.Is(err, collection.ErrNoDocuments) || errors.Is(err, collection.ErrNoFolder) {
			logSvc.Errorf("Nothing to merge: %v\n", err)
		} else if err != nil {
			return err
		}
	}

	printSummary(stats, errLog, assetFailures, rep, merged, time.Since(start))

	return nil
}

func printSummary(stats *ui.Stats, errLog []locate.ErrorRecord, assetFailures []downloader.AssetError, rep *assemble.Report, merged string, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("Download Summary:")
	fmt.Printf("Chapters:  %d (%d failed)\n", stats.TotalChapters.Load(), stats.FailedChapters.Load())
	fmt.Printf("Images:    %d (%d failed)\n", stats.TotalImages.Load(), stats.FailedImages.Load())
	fmt.Printf("Data:      %s\n", util.Human(stats.TotalBytes.Load()))
	fmt.Printf("Documents: %d\n", len(rep.Documents))
	fmt.Printf("Time:      %s\n", elapsed.Round(time.Second))
	if merged != "" {
		fmt.Printf("Merged:    %s\n", merged)
	}

	if len(errLog) > 0 {
		fmt.Println("\nFailed chapters:")
		for _, rec := range errLog {
			if rec.Detail != "" {
				fmt.Printf("  %s  %s (%s)\n", rec.Code, rec.Identifier, rec.Detail)
			} else {
				fmt.Printf("  %s  %s\n", rec.Code, rec.Identifier)
			}
		}
	}
	if len(assetFailures) > 0 {
		fmt.Println("\nFailed images:")
		for _, f := range assetFailures {
			fmt.Printf("  %s: %s (%v)\n", f.Identifier, f.URL, f.Err)
		}
	}
	if len(rep.Retained) > 0 {
		fmt.Println("\nRetained folders (re-run `parkdl assemble` after fixing):")
		for _, dir := range rep.Retained {
			fmt.Printf("  %s\n", dir)
		}
	}

	fmt.Println("\nAll done.")
}

func splitMirrors(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == ',' || r == ' '
	})

	out := []string{}
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}

	return out
}
