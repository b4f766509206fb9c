package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/testutil"
)

func TestLevelScheduleExecute(t *testing.T) {
	day := int64(1440)

	repo := testutil.NewMockTaskRepository()
	repo.Add(record("t1", day), record("t2", day))

	resources := &testutil.MockResourceRepository{
		Resources: []domain.Resource{{ID: "r1", CapacityPerWindow: 8}},
		Assignments: []domain.Assignment{
			{TaskID: "t1", ResourceID: "r1", EffortPerWindow: 8},
			{TaskID: "t2", ResourceID: "r1", EffortPerWindow: 8},
		},
	}

	logger := &testutil.MockLogger{}
	uc := NewLevelSchedule(NewAnalyzeSchedule(repo, logger), resources, logger)

	out, err := uc.Execute(context.Background(), LevelScheduleInput{
		Config: domain.LevelingConfig{WindowMins: day, MaxIterations: 100},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), out.Leveling.StartMins["t1"])
	assert.Equal(t, day, out.Leveling.StartMins["t2"])
	assert.Equal(t, day, out.Leveling.ExtensionMins)
	assert.True(t, out.Leveling.Resolved())
}

func TestLevelScheduleNoResources(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	repo.Add(record("t1", 60))

	logger := &testutil.MockLogger{}
	uc := NewLevelSchedule(NewAnalyzeSchedule(repo, logger), &testutil.MockResourceRepository{}, logger)

	out, err := uc.Execute(context.Background(), LevelScheduleInput{
		Config: domain.LevelingConfig{WindowMins: 1440, MaxIterations: 100},
	})
	require.NoError(t, err)
	assert.True(t, out.Leveling.Resolved())
	assert.Equal(t, 0, out.Leveling.Iterations)
}
