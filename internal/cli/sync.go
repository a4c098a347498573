package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	syncengine "github.com/wuhui20091515/FreeFileSync/internal/sync"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

var (
	syncFlags      sessionFlags
	syncUseRecycle bool
	syncCopyPerms  bool
	syncDryRun     bool
)

var syncCmd = &cobra.Command{
	Use:   "sync <left-folder> <right-folder>",
	Short: "Compare two folders and apply the resolved sync actions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession(cmd.Context(), args[0], args[1], syncFlags)
		if err != nil {
			return err
		}
		defer session.close()

		if syncDryRun {
			printDecisions(session.base)
			return nil
		}

		result, err := syncengine.ExecuteDirections(session.base, syncengine.ExecuteConfig{
			UseRecycleBin:   syncUseRecycle,
			CopyPermissions: syncCopyPerms,
		}, session.callback)
		if err != nil {
			return err
		}

		// persist the new in-sync state for the next two-way run
		state := syncengine.BuildInSyncState(session.base)
		if err := session.repo.SaveLastSyncState(
			session.base.AbstractPath(models.SideLeft),
			session.base.AbstractPath(models.SideRight), state); err != nil {
			return fmt.Errorf("synchronization finished, but saving the sync database failed: %w", err)
		}

		fmt.Printf("Synchronization completed: %d items processed, %d bytes copied",
			result.ItemsProcessed, result.BytesCopied)
		if result.Conflicts > 0 {
			fmt.Printf(", %d conflicts left unresolved", result.Conflicts)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	registerSessionFlags(syncCmd, &syncFlags)
	syncCmd.Flags().BoolVar(&syncUseRecycle, "recycle", true, "move deleted files to the recycle bin where supported")
	syncCmd.Flags().BoolVar(&syncCopyPerms, "copy-permissions", false, "copy owner and permissions")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "only show what would happen")
}
