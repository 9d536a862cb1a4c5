package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/campusdesk/timetable-api/internal/models"
	appErrors "github.com/campusdesk/timetable-api/pkg/errors"
)

type dashboardRepository interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
	TodaysSchedule(ctx context.Context, dayOfWeek int) ([]models.ScheduleItem, error)
	OccupiedRoomIDs(ctx context.Context, dayOfWeek int, currentTime string) ([]string, error)
	DepartmentOverview(ctx context.Context) ([]models.DepartmentOverview, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

const (
	cacheKeyStats    = "dashboard:stats"
	cacheKeyOverview = "dashboard:department-overview"
)

// DashboardService composes dashboard payloads with a short-lived cache in
// front of the aggregate queries.
type DashboardService struct {
	repo   dashboardRepository
	rooms  roomLister
	cache  dashboardCache
	logger *zap.Logger
	now    func() time.Time
	ttl    time.Duration
}

// NewDashboardService instantiates DashboardService. cache may be nil.
func NewDashboardService(repo dashboardRepository, rooms roomLister, cache dashboardCache, logger *zap.Logger, ttl time.Duration) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DashboardService{
		repo:   repo,
		rooms:  rooms,
		cache:  cache,
		logger: logger,
		now:    time.Now,
		ttl:    ttl,
	}
}

// Stats returns headline counters, cached.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	var cached models.DashboardStats
	if s.cacheGet(ctx, cacheKeyStats, &cached) {
		return &cached, nil
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard stats")
	}

	s.cacheSet(ctx, cacheKeyStats, stats)
	return stats, nil
}

// TodaysSchedule returns today's resolved sessions. Not cached: the answer
// changes with the wall clock day.
func (s *DashboardService) TodaysSchedule(ctx context.Context) ([]models.ScheduleItem, error) {
	items, err := s.repo.TodaysSchedule(ctx, currentDayOfWeek(s.now()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load today's schedule")
	}
	return items, nil
}

// RoomOccupancy reports which active rooms are hosting a session right now.
func (s *DashboardService) RoomOccupancy(ctx context.Context) ([]models.RoomOccupancy, error) {
	now := s.now()
	occupiedIDs, err := s.repo.OccupiedRoomIDs(ctx, currentDayOfWeek(now), now.Format("15:04"))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room occupancy")
	}

	occupied := make(map[string]struct{}, len(occupiedIDs))
	for _, id := range occupiedIDs {
		occupied[id] = struct{}{}
	}

	rooms, err := s.rooms.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}

	result := make([]models.RoomOccupancy, 0, len(rooms))
	for _, room := range rooms {
		_, inUse := occupied[room.ID]
		status := "available"
		if inUse {
			status = "occupied"
		}
		result = append(result, models.RoomOccupancy{
			ID:         room.ID,
			Name:       room.Name,
			Type:       room.Type,
			IsOccupied: inUse,
			Status:     status,
		})
	}
	return result, nil
}

// DepartmentOverview returns per-department counts, cached.
func (s *DashboardService) DepartmentOverview(ctx context.Context) ([]models.DepartmentOverview, error) {
	var cached []models.DepartmentOverview
	if s.cacheGet(ctx, cacheKeyOverview, &cached) {
		return cached, nil
	}

	overview, err := s.repo.DepartmentOverview(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department overview")
	}

	s.cacheSet(ctx, cacheKeyOverview, overview)
	return overview, nil
}

func (s *DashboardService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
	}
	return false
}

func (s *DashboardService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// currentDayOfWeek converts Go's Sunday-based weekday to the 1=Monday..7=Sunday domain.
func currentDayOfWeek(now time.Time) int {
	day := int(now.Weekday())
	if day == 0 {
		return 7
	}
	return day
}
