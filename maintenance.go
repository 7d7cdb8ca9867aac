package main

import (
	"fmt"
	"log/slog"

	"github.com/42Wor/Compress-image-M-dev/compression"
	"github.com/lmittmann/tint"
)

func performMaintenance(svc *compression.Service) {
	// Prune caches
	if cache := svc.Cache(); cache != nil {
		if removed, err := cache.Prune(); err != nil {
			slog.Error("failed to prune result cache", tint.Err(err))
		} else if removed > 0 {
			slog.Info(fmt.Sprintf("%d cached results pruned", removed))
		}
	}

	// Workspaces are removed by their request; anything left behind belongs to a request that never finished.
	removed, err := svc.Workspaces().PruneStale()
	if err != nil {
		slog.Error("failed to prune stale workspaces", tint.Err(err))
	} else {
		slog.Info(fmt.Sprintf("%d stale workspaces deleted", removed))
	}
	slog.Info("Maintenance completed successfully")
}
