package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/testutil"
)

func record(id string, duration int64, deps ...domain.Dependency) *domain.TaskRecord {
	return &domain.TaskRecord{
		ID:           id,
		Title:        "Task " + id,
		Status:       domain.StatusPending,
		Priority:     domain.PriorityMedium,
		DurationMins: duration,
		Depends:      deps,
	}
}

func fs(onID string) domain.Dependency {
	return domain.Dependency{OnID: onID, Type: domain.EdgeFinishToStart}
}

func TestAnalyzeScheduleExecute(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	repo.Add(
		record("a", 120),
		record("b", 180, fs("a")),
		record("c", 60, fs("b")),
	)

	uc := NewAnalyzeSchedule(repo, &testutil.MockLogger{})
	out, err := uc.Execute(context.Background(), AnalyzeScheduleInput{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, out.Result.CriticalPath)
	assert.Equal(t, int64(360), out.Result.TotalDurationMins)
	assert.Len(t, out.Tasks, 3)
	assert.True(t, out.Graph.Validated())
}

func TestAnalyzeScheduleCycle(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	repo.Add(
		record("a", 10, fs("b")),
		record("b", 10, fs("a")),
	)

	uc := NewAnalyzeSchedule(repo, &testutil.MockLogger{})
	_, err := uc.Execute(context.Background(), AnalyzeScheduleInput{})

	var cerr *domain.CycleError
	require.True(t, errors.As(err, &cerr))
	require.Len(t, cerr.Cycles, 1)
}

func TestAnalyzeScheduleDanglingDependency(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	repo.Add(
		record("a", 120),
		record("b", 60, fs("a"), fs("ghost")),
	)

	logger := &testutil.MockLogger{}
	uc := NewAnalyzeSchedule(repo, logger)
	out, err := uc.Execute(context.Background(), AnalyzeScheduleInput{})
	require.NoError(t, err)

	require.Len(t, out.Result.Warnings, 1)
	assert.Equal(t, "b", out.Result.Warnings[0].TaskID)
	assert.Equal(t, "ghost", out.Result.Warnings[0].MissingID)

	// The dangling edge is omitted; the resolved one still drives the schedule.
	assert.Equal(t, []string{"a", "b"}, out.Result.CriticalPath)

	require.NotEmpty(t, logger.Entries)
	assert.Contains(t, logger.Entries[0], "WARN [analyze]")
	assert.Contains(t, logger.Entries[0], "ghost")
}

func TestAnalyzeScheduleListError(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	repo.ListErr = errors.New("store unavailable")

	uc := NewAnalyzeSchedule(repo, &testutil.MockLogger{})
	_, err := uc.Execute(context.Background(), AnalyzeScheduleInput{})
	assert.Error(t, err)
}

func TestAnalyzeScheduleEmptyPopulation(t *testing.T) {
	uc := NewAnalyzeSchedule(testutil.NewMockTaskRepository(), &testutil.MockLogger{})
	out, err := uc.Execute(context.Background(), AnalyzeScheduleInput{})
	require.NoError(t, err)
	assert.Empty(t, out.Result.Tasks)
}
