// Package memory provides an in-memory activity repository for tests
// and local development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"vulntrack/contexts/observability/activity-service/domain/entities"
	"vulntrack/contexts/observability/activity-service/ports"
)

type Store struct {
	mu sync.RWMutex

	activities      []entities.ActivityLog
	assetActivities []entities.AssetActivityLog
	auditEntries    []entities.AuditEntry
	sessions        []entities.SessionRecord

	users        map[int64]ports.UserRef
	assets       map[int64]ports.AssetRef
	subordinates map[int64][]int64

	nextID int64
}

func NewStore() *Store {
	return &Store{
		users:        make(map[int64]ports.UserRef),
		assets:       make(map[int64]ports.AssetRef),
		subordinates: make(map[int64][]int64),
	}
}

// SeedUser registers a user reference for directory lookups.
func (s *Store) SeedUser(ref ports.UserRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[ref.ID] = ref
}

// SeedAsset registers an asset reference for directory lookups.
func (s *Store) SeedAsset(ref ports.AssetRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[ref.ID] = ref
}

// SeedSubordinates sets the delegation set reported for a user.
func (s *Store) SeedSubordinates(userID int64, ids []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subordinates[userID] = append([]int64(nil), ids...)
}

// SeedSession records a login session row.
func (s *Store) SeedSession(session entities.SessionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	session.ID = s.nextID
	s.sessions = append(s.sessions, session)
}

func (s *Store) SubordinateIDs(ctx context.Context, userID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int64(nil), s.subordinates[userID]...), nil
}

func (s *Store) UserRefs(ctx context.Context, userIDs []int64) (map[int64]ports.UserRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refs := make(map[int64]ports.UserRef, len(userIDs))
	for _, id := range userIDs {
		if ref, ok := s.users[id]; ok {
			refs[id] = ref
		}
	}
	return refs, nil
}

func (s *Store) InsertActivity(ctx context.Context, log entities.ActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	log.ID = s.nextID
	s.activities = append(s.activities, log)
	return nil
}

func (s *Store) InsertAssetActivity(ctx context.Context, log entities.AssetActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	log.ID = s.nextID
	s.assetActivities = append(s.assetActivities, log)
	return nil
}

func (s *Store) InsertAuditEntry(ctx context.Context, entry entities.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	entry.ID = s.nextID
	s.auditEntries = append(s.auditEntries, entry)
	return nil
}

func (s *Store) ListActivities(ctx context.Context, visible []int64, filter ports.ActivityFilter) ([]ports.ActivityDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]entities.ActivityLog, 0)
	for _, log := range s.activities {
		if !userVisible(visible, log.UserID) {
			continue
		}
		if filter.StartDate != nil && log.CreatedAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && log.CreatedAt.After(*filter.EndDate) {
			continue
		}
		if filter.UserID != nil && log.UserID != *filter.UserID {
			continue
		}
		if filter.ActivityType != "" && log.ActivityType != filter.ActivityType {
			continue
		}
		matched = append(matched, log)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	matched = page(matched, filter.Offset, filter.Limit)

	details := make([]ports.ActivityDetail, 0, len(matched))
	for _, log := range matched {
		detail := ports.ActivityDetail{Log: log}
		if ref, ok := s.users[log.UserID]; ok {
			detail.User = &ref
		}
		details = append(details, detail)
	}
	return details, nil
}

func (s *Store) ListSessions(ctx context.Context, visible []int64, filter ports.SessionFilter) ([]ports.SessionDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]entities.SessionRecord, 0)
	for _, session := range s.sessions {
		if !userVisible(visible, session.UserID) {
			continue
		}
		if filter.StartDate != nil && session.LoginTime.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && session.LoginTime.After(*filter.EndDate) {
			continue
		}
		if filter.UserID != nil && session.UserID != *filter.UserID {
			continue
		}
		if filter.IsActive != nil && session.IsActive != *filter.IsActive {
			continue
		}
		matched = append(matched, session)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].LoginTime.After(matched[j].LoginTime)
	})
	matched = page(matched, filter.Offset, filter.Limit)

	details := make([]ports.SessionDetail, 0, len(matched))
	for _, session := range matched {
		detail := ports.SessionDetail{Session: session}
		if ref, ok := s.users[session.UserID]; ok {
			detail.User = &ref
		}
		details = append(details, detail)
	}
	return details, nil
}

func (s *Store) ListAssetActivities(ctx context.Context, visible []int64, filter ports.AssetActivityFilter) ([]ports.AssetActivityDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]entities.AssetActivityLog, 0)
	for _, log := range s.assetActivities {
		if !userVisible(visible, log.UserID) {
			continue
		}
		if filter.AssetID != nil && log.AssetID != *filter.AssetID {
			continue
		}
		if filter.StartDate != nil && log.CreatedAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && log.CreatedAt.After(*filter.EndDate) {
			continue
		}
		if filter.UserID != nil && log.UserID != *filter.UserID {
			continue
		}
		if filter.ActivityType != "" && log.ActivityType != filter.ActivityType {
			continue
		}
		matched = append(matched, log)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	matched = page(matched, filter.Offset, filter.Limit)

	details := make([]ports.AssetActivityDetail, 0, len(matched))
	for _, log := range matched {
		detail := ports.AssetActivityDetail{Log: log}
		if ref, ok := s.users[log.UserID]; ok {
			detail.User = &ref
		}
		if asset, ok := s.assets[log.AssetID]; ok {
			detail.Asset = &asset
		}
		details = append(details, detail)
	}
	return details, nil
}

func (s *Store) ListAuditEntries(ctx context.Context, visible []int64, filter ports.AuditFilter) ([]ports.AuditDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]entities.AuditEntry, 0)
	for _, entry := range s.auditEntries {
		if !userVisible(visible, entry.UserID) {
			continue
		}
		if filter.Resource != "" && entry.Resource != filter.Resource {
			continue
		}
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		matched = append(matched, entry)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})
	matched = page(matched, filter.Offset, filter.Limit)

	details := make([]ports.AuditDetail, 0, len(matched))
	for _, entry := range matched {
		detail := ports.AuditDetail{Entry: entry}
		if ref, ok := s.users[entry.UserID]; ok {
			detail.User = &ref
		}
		details = append(details, detail)
	}
	return details, nil
}

func (s *Store) CountActivitiesByType(ctx context.Context, visible []int64, start, end time.Time) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, log := range s.activities {
		if !userVisible(visible, log.UserID) {
			continue
		}
		if log.CreatedAt.Before(start) || log.CreatedAt.After(end) {
			continue
		}
		counts[log.ActivityType]++
	}
	return counts, nil
}

func (s *Store) CountActiveSessions(ctx context.Context, visible []int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, session := range s.sessions {
		if session.IsActive && userVisible(visible, session.UserID) {
			count++
		}
	}
	return count, nil
}

func userVisible(visible []int64, userID int64) bool {
	if visible == nil {
		return true
	}
	for _, id := range visible {
		if id == userID {
			return true
		}
	}
	return false
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
