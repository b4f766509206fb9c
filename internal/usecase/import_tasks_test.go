package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/testutil"
)

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImportTasksExecute(t *testing.T) {
	path := writePlan(t, `
project: rollout
tasks:
  - id: a
    title: Task a
    duration_mins: 60
  - title: Task without ID
    duration_mins: 30
resources:
  - id: r1
    capacity_per_window: 8
assignments:
  - task: a
    resource: r1
    effort_per_window: 4
`)

	repo := testutil.NewMockTaskRepository()
	resources := &testutil.MockResourceRepository{}
	clock := &testutil.MockClock{Time: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}

	uc := NewImportTasks(repo, resources, clock, &testutil.MockLogger{})
	out, err := uc.Execute(context.Background(), ImportTasksInput{Path: path})
	require.NoError(t, err)

	assert.Equal(t, "rollout", out.ProjectID)
	assert.Equal(t, 2, out.Imported)
	assert.Equal(t, 1, out.Resources)
	assert.Equal(t, 1, out.Assignments)

	require.Len(t, repo.Saved, 2)
	assert.Equal(t, clock.Time, repo.Saved[0].Created)
	// Tasks without an ID get a generated one.
	assert.NotEmpty(t, repo.Saved[1].ID)
	assert.NotEqual(t, "a", repo.Saved[1].ID)
}

func TestImportTasksRejectsExistingID(t *testing.T) {
	path := writePlan(t, `
tasks:
  - id: a
    title: Task a
`)

	repo := testutil.NewMockTaskRepository()
	repo.Add(record("a", 10))

	uc := NewImportTasks(repo, &testutil.MockResourceRepository{}, &testutil.MockClock{}, &testutil.MockLogger{})
	_, err := uc.Execute(context.Background(), ImportTasksInput{Path: path})
	assert.ErrorIs(t, err, domain.ErrDuplicateTaskID)
}

func TestImportTasksMissingFile(t *testing.T) {
	uc := NewImportTasks(testutil.NewMockTaskRepository(), &testutil.MockResourceRepository{}, &testutil.MockClock{}, &testutil.MockLogger{})
	_, err := uc.Execute(context.Background(), ImportTasksInput{Path: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}
