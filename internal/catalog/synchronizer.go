// Package catalog синхронизирует локальный каталог меню с удалённым снимком.
package catalog

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/smartmeal/internal/domain"
)

// SyncReport описывает итог синхронизации.
type SyncReport struct {
	Inserted int
	Updated  int
}

// Total возвращает число затронутых позиций.
func (r SyncReport) Total() int {
	return r.Inserted + r.Updated
}

// Synchronizer сводит удалённый каталог с локальным хранилищем: вставляет новые позиции
// и перезаписывает существующие. Позиции, отсутствующие в удалённом снимке, не удаляются.
type Synchronizer struct {
	repo   domain.MenuRepository
	logger *log.Entry
}

// NewSynchronizer создаёт синхронизатор поверх репозитория каталога.
func NewSynchronizer(repo domain.MenuRepository, logger *log.Entry) *Synchronizer {
	if logger == nil {
		logger = log.New().WithField("component", "catalog-sync")
	}
	return &Synchronizer{repo: repo, logger: logger}
}

// Sync применяет удалённый снимок каталога. Пустой снимок не приводит к обращениям к хранилищу.
// Любой сбой хранилища возвращается как ошибка с кодом PersistenceError.
func (s *Synchronizer) Sync(ctx context.Context, remote []domain.MenuItem) (SyncReport, error) {
	if len(remote) == 0 {
		s.logger.Debug("remote catalog is empty, nothing to sync")
		return SyncReport{}, nil
	}

	items := dedupeByID(remote)
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	existing, err := s.repo.ExistingIDs(ctx, ids)
	if err != nil {
		s.logger.WithError(err).Error("failed to load existing menu item ids")
		return SyncReport{}, domain.Wrap(domain.CodePersistence, err)
	}

	changes := Partition(items, existing)
	if err := s.repo.ApplyChanges(ctx, changes); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"inserts": len(changes.Inserts),
			"updates": len(changes.Updates),
		}).Error("failed to apply catalog changes")
		return SyncReport{}, domain.Wrap(domain.CodePersistence, err)
	}

	report := SyncReport{Inserted: len(changes.Inserts), Updated: len(changes.Updates)}
	s.logger.WithFields(log.Fields{
		"inserted": report.Inserted,
		"updated":  report.Updated,
	}).Info("catalog synchronized")
	return report, nil
}

// Partition делит позиции на непересекающиеся вставки и обновления по членству ID
// в множестве existing. Порядок позиций сохраняется.
func Partition(items []domain.MenuItem, existing map[string]struct{}) domain.CatalogChanges {
	var changes domain.CatalogChanges
	for _, item := range items {
		if _, ok := existing[item.ID]; ok {
			changes.Updates = append(changes.Updates, item)
			continue
		}
		changes.Inserts = append(changes.Inserts, item)
	}
	return changes
}

// dedupeByID схлопывает повторы ID в снимке: побеждает последнее вхождение,
// позиция в выдаче остаётся от первого.
func dedupeByID(items []domain.MenuItem) []domain.MenuItem {
	index := make(map[string]int, len(items))
	out := make([]domain.MenuItem, 0, len(items))
	for _, item := range items {
		if i, ok := index[item.ID]; ok {
			out[i] = item
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}
