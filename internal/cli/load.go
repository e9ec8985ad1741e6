package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"cmdref/config"
	"cmdref/internal/adapter/fs"
	"cmdref/internal/adapter/store"
	"cmdref/internal/usecase"
)

var loadForce bool

var loadCmd = &cobra.Command{
	Use:   "load [snapshot.json|dir]",
	Short: "Import a command-reference snapshot",
	Long: `Import a snapshot produced by the index builder. When given a directory,
the most recently modified file matching the configured include patterns is
used. The snapshot is validated by loading it into an engine, then stored in
.cmdref/snapshot.db within the root directory.

Examples:
  cmdref load ./dist/index.json
  cmdref load ./dist --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().BoolVar(&loadForce, "force", false, "import even if the snapshot is unchanged")
}

// barProgress reports store writes on a progress bar.
type barProgress struct {
	bar *progressbar.ProgressBar
}

func (p *barProgress) Start(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Storing[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}

func (p *barProgress) Step() {
	if p.bar != nil {
		p.bar.Add(1)
	}
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	root := GetRootDir()

	path := root
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	if err := config.EnsureDataDir(root); err != nil {
		return fmt.Errorf("failed to create .cmdref directory: %w", err)
	}

	dbPath := config.StoreDBPath(root)
	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	migration, err := st.CheckMigration()
	if err != nil {
		return fmt.Errorf("failed to check migration: %w", err)
	}
	if migration.NeedsMigration || migration.NeedsRebuild {
		logger.Info("preparing store", "reason", migration.Reason)
		if err := st.Migrate(); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	walker := fs.NewWalker(cfg.Snapshot.Includes, cfg.Snapshot.Excludes)
	engine := usecase.NewEngine(cfg.Search, logger)
	importUC := usecase.NewImportUseCase(st, walker, engine, cfg.Snapshot.ValidateOnImport, logger)

	result, err := importUC.Import(path, loadForce, &barProgress{})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if result.Unchanged {
		fmt.Fprintf(out, "Snapshot unchanged (%s), nothing to do.\n", result.Meta.Fingerprint)
		return nil
	}
	fmt.Fprintf(out, "\nImport complete:\n")
	fmt.Fprintf(out, "  Source:      %s\n", result.Source)
	fmt.Fprintf(out, "  Commands:    %d\n", result.Meta.Commands)
	fmt.Fprintf(out, "  Tokens:      %d\n", result.Meta.Tokens)
	fmt.Fprintf(out, "  Fingerprint: %s\n", result.Meta.Fingerprint)
	fmt.Fprintf(out, "\nSnapshot stored at: %s\n", dbPath)
	return nil
}
