package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusdesk/timetable-api/internal/models"
	appErrors "github.com/campusdesk/timetable-api/pkg/errors"
)

type mockDashboardRepo struct {
	stats         *models.DashboardStats
	statsCalls    int
	schedule      []models.ScheduleItem
	scheduleDay   int
	occupiedIDs   []string
	occupiedTime  string
	overview      []models.DepartmentOverview
	overviewCalls int
}

func (m *mockDashboardRepo) Stats(_ context.Context) (*models.DashboardStats, error) {
	m.statsCalls++
	return m.stats, nil
}

func (m *mockDashboardRepo) TodaysSchedule(_ context.Context, dayOfWeek int) ([]models.ScheduleItem, error) {
	m.scheduleDay = dayOfWeek
	return m.schedule, nil
}

func (m *mockDashboardRepo) OccupiedRoomIDs(_ context.Context, _ int, currentTime string) ([]string, error) {
	m.occupiedTime = currentTime
	return m.occupiedIDs, nil
}

func (m *mockDashboardRepo) DepartmentOverview(_ context.Context) ([]models.DepartmentOverview, error) {
	m.overviewCalls++
	return m.overview, nil
}

type stubDashboardCache struct {
	store map[string][]byte
}

func (s *stubDashboardCache) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubDashboardCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func TestDashboardStatsCaching(t *testing.T) {
	repo := &mockDashboardRepo{stats: &models.DashboardStats{TotalStudents: 120, TotalFaculty: 14, ActiveRooms: 9, WeeklyClasses: 42}}
	svc := NewDashboardService(repo, &stubRoomLister{}, &stubDashboardCache{}, zap.NewNop(), time.Minute)

	first, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, first.TotalStudents)

	second, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.statsCalls)
}

func TestDashboardStatsWithoutCache(t *testing.T) {
	repo := &mockDashboardRepo{stats: &models.DashboardStats{}}
	svc := NewDashboardService(repo, &stubRoomLister{}, nil, zap.NewNop(), time.Minute)

	_, err := svc.Stats(context.Background())
	require.NoError(t, err)
	_, err = svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.statsCalls)
}

func TestTodaysScheduleMapsWeekday(t *testing.T) {
	repo := &mockDashboardRepo{schedule: []models.ScheduleItem{{SubjectName: "Physics"}}}
	svc := NewDashboardService(repo, &stubRoomLister{}, nil, zap.NewNop(), time.Minute)
	// Sunday must map to 7, not 0.
	svc.now = func() time.Time { return time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC) }

	items, err := svc.TodaysSchedule(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 7, repo.scheduleDay)
}

func TestRoomOccupancy(t *testing.T) {
	repo := &mockDashboardRepo{occupiedIDs: []string{"room-1"}}
	rooms := &stubRoomLister{rooms: []models.Room{
		{ID: "room-1", Name: "Lab A", Type: models.RoomTypeLab, IsActive: true},
		{ID: "room-2", Name: "101", Type: models.RoomTypeClassroom, IsActive: true},
	}}
	svc := NewDashboardService(repo, rooms, nil, zap.NewNop(), time.Minute)
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC) }

	occupancy, err := svc.RoomOccupancy(context.Background())
	require.NoError(t, err)
	require.Len(t, occupancy, 2)
	assert.Equal(t, "09:30", repo.occupiedTime)
	assert.True(t, occupancy[0].IsOccupied)
	assert.Equal(t, "occupied", occupancy[0].Status)
	assert.False(t, occupancy[1].IsOccupied)
	assert.Equal(t, "available", occupancy[1].Status)
}

func TestDepartmentOverviewCaching(t *testing.T) {
	repo := &mockDashboardRepo{overview: []models.DepartmentOverview{{ID: "dep-1", Name: "CS", DivisionCount: 2, StudentCount: 80}}}
	svc := NewDashboardService(repo, &stubRoomLister{}, &stubDashboardCache{}, zap.NewNop(), time.Minute)

	first, err := svc.DepartmentOverview(context.Background())
	require.NoError(t, err)
	second, err := svc.DepartmentOverview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.overviewCalls)
}
