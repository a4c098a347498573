package cli

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/wuhui20091515/FreeFileSync/internal/compare"
	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	"github.com/wuhui20091515/FreeFileSync/internal/database"
	"github.com/wuhui20091515/FreeFileSync/internal/database/repositories"
	"github.com/wuhui20091515/FreeFileSync/internal/filters"
	"github.com/wuhui20091515/FreeFileSync/internal/hierarchy"
	"github.com/wuhui20091515/FreeFileSync/internal/providers"
	"github.com/wuhui20091515/FreeFileSync/internal/strategies"
	syncengine "github.com/wuhui20091515/FreeFileSync/internal/sync"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

// sessionFlags are the comparison settings shared by compare and sync
type sessionFlags struct {
	variant        string
	strategy       string
	includeFilter  string
	excludeFilter  string
	timeToleranceS int
	timeShiftsMin  []uint
	parallelOps    int
	detectMoves    bool
}

// session bundles everything one compare/sync run needs
type session struct {
	base     *hierarchy.BaseFolderPair
	policy   syncengine.DirectionPolicy
	db       *database.Manager
	repo     *repositories.LastSyncRepository
	callback *consoleCallback
}

func (s *session) close() {
	if s.db != nil {
		s.db.Close()
	}
}

// openSession checks folder existence, scans both sides, applies filters,
// and resolves all sync directions
func openSession(ctx context.Context, leftPhrase, rightPhrase string, flags sessionFlags) (*session, error) {
	cb := newConsoleCallback(verboseMode)
	factory := providers.NewFactory(ctx)

	left, err := factory.ParsePathPhrase(leftPhrase)
	if err != nil {
		return nil, err
	}
	right, err := factory.ParsePathPhrase(rightPhrase)
	if err != nil {
		return nil, err
	}

	folderStatus, err := syncengine.CheckFolderExistence([]interfaces.AbstractPath{left, right}, cb)
	if err != nil {
		return nil, err
	}
	for path, checkErr := range folderStatus.FailedChecks {
		return nil, fmt.Errorf("cannot access folder %s: %w", path, checkErr)
	}
	for _, missing := range folderStatus.NotExisting {
		return nil, fmt.Errorf("folder does not exist: %s", missing.DisplayPath())
	}

	variant, err := models.ParseCompareVariant(flags.variant)
	if err != nil {
		return nil, err
	}
	strategy, err := strategies.FromName(flags.strategy, flags.detectMoves)
	if err != nil {
		return nil, err
	}

	hardFilter := filters.NewNameFilter(flags.includeFilter, flags.excludeFilter)
	if dep := syncengine.GetPathDependency(left, hardFilter, right, hardFilter); dep != nil {
		warnActive := true
		cb.ReportWarning(fmt.Sprintf(
			"One base folder is contained in the other: %s <-> %s. The folders will partially synchronize with themselves.",
			dep.BasePathParent.DisplayPath(), dep.BasePathChild.DisplayPath()), &warnActive)
	}

	base, err := compare.ScanBasePair(left, right, compare.ScanConfig{
		Variant:                variant,
		FileTimeToleranceSec:   flags.timeToleranceS,
		IgnoreTimeShiftMinutes: flags.timeShiftsMin,
		ParallelOps:            flags.parallelOps,
	}, cb)
	if err != nil {
		return nil, err
	}

	syncengine.ApplyFiltering(base, hardFilter, nil)

	dbOptions := database.DefaultOptions()
	if path := viper.GetString("database.path"); path != "" {
		dbOptions.Path = path
	}
	db := database.NewManager(dbOptions)
	if err := db.Open(); err != nil {
		return nil, err
	}
	repo := repositories.NewLastSyncRepository(db)

	policy := syncengine.DirectionPolicy{Base: base, Config: strategy.Config()}
	if err := syncengine.RedetermineSyncDirections(
		[]syncengine.DirectionPolicy{policy}, repo, cb); err != nil {
		db.Close()
		return nil, err
	}

	return &session{base: base, policy: policy, db: db, repo: repo, callback: cb}, nil
}
