package cli

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cmdref/config"
	"cmdref/internal/adapter/fs"
	"cmdref/internal/adapter/snapshot"
	"cmdref/internal/adapter/store"
	"cmdref/internal/domain"
	"cmdref/internal/usecase"
)

var watchCmd = &cobra.Command{
	Use:   "watch <snapshot.json>",
	Short: "Re-import a snapshot whenever the file changes",
	Long: `Watch a snapshot file and import it into the store each time it changes.
Snapshots the engine rejects are logged and skipped; the stored snapshot stays
as it was. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	root := GetRootDir()

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	if err := config.EnsureDataDir(root); err != nil {
		return fmt.Errorf("failed to create .cmdref directory: %w", err)
	}
	st, err := store.NewBoltStore(config.StoreDBPath(root))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()
	if err := st.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	engine := usecase.NewEngine(cfg.Search, logger)
	walker := fs.NewWalker(cfg.Snapshot.Includes, cfg.Snapshot.Excludes)
	importUC := usecase.NewImportUseCase(st, walker, engine, true, logger)

	result, err := importUC.Import(path, false, nil)
	if err != nil {
		return fmt.Errorf("initial import failed: %w", err)
	}

	debounce := time.Duration(cfg.Snapshot.WatchDebounceMS) * time.Millisecond
	w, err := snapshot.NewWatcher(path, debounce, func(snap *domain.IndexSnapshot, fp string) error {
		_, err := importUC.ImportSnapshot(snap, fp, path, false, nil, 1)
		return err
	}, logger)
	if err != nil {
		return err
	}
	w.Seed(result.Meta.Fingerprint)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return w.Run(ctx)
}
