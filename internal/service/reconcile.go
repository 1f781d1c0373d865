package service

import (
	"context"

	"go.uber.org/zap"

	"hungrypanda/internal/domain"
)

// Report 本次对账修正的行数
type Report struct {
	PrunedLikes    int64 `json:"prunedLikes"`
	RemovedOrphans int64 `json:"removedOrphans"`
	FixedLikes     int64 `json:"fixedLikes"`
	FixedTotals    int64 `json:"fixedTotals"`
}

// Reconciler 从关系表重算冗余计数，清理悬挂引用
type Reconciler struct {
	store  domain.Store
	images Releaser
	log    *zap.Logger
}

func NewReconciler(store domain.Store, images Releaser, log *zap.Logger) *Reconciler {
	return &Reconciler{store: store, images: images, log: nopLogger(log)}
}

func (r *Reconciler) Run(ctx context.Context) (Report, error) {
	var (
		rep    Report
		images []string
	)
	err := r.store.Atomic(ctx, func(tx domain.Store) error {
		orphans, err := tx.Recipes().Orphans(ctx)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(orphans))
		for _, rc := range orphans {
			ids = append(ids, rc.ID)
			images = append(images, rc.Image)
		}
		if _, err := tx.Likes().RemoveByRecipes(ctx, ids); err != nil {
			return err
		}
		if rep.RemovedOrphans, err = tx.Recipes().DeleteByIDs(ctx, ids); err != nil {
			return err
		}
		if rep.PrunedLikes, err = tx.Likes().PruneDangling(ctx); err != nil {
			return err
		}
		if rep.FixedLikes, err = tx.Recipes().RecountLikes(ctx); err != nil {
			return err
		}
		rep.FixedTotals, err = tx.Users().RecountRecipes(ctx)
		return err
	})
	if err != nil {
		return Report{}, err
	}
	releaseAll(ctx, r.images, r.log, images...)
	reconcileFixed.WithLabelValues("pruned_likes").Add(float64(rep.PrunedLikes))
	reconcileFixed.WithLabelValues("orphan_recipes").Add(float64(rep.RemovedOrphans))
	reconcileFixed.WithLabelValues("likes").Add(float64(rep.FixedLikes))
	reconcileFixed.WithLabelValues("total_recipes").Add(float64(rep.FixedTotals))
	r.log.Info("reconcile done",
		zap.Int64("prunedLikes", rep.PrunedLikes),
		zap.Int64("removedOrphans", rep.RemovedOrphans),
		zap.Int64("fixedLikes", rep.FixedLikes),
		zap.Int64("fixedTotals", rep.FixedTotals))
	return rep, nil
}
