package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planweave/planweave/internal/app"
	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/testutil"
)

// stubLoader returns a fixed configuration.
type stubLoader struct {
	cfg *domain.Config
}

func (l stubLoader) Load() (*domain.Config, error) {
	if l.cfg != nil {
		return l.cfg, nil
	}
	return domain.NewDefaultConfig(), nil
}

// testContainer wires the CLI against mocks.
func testContainer(repo *testutil.MockTaskRepository, mutator *testutil.MockMutator) *app.Container {
	return app.NewWithDeps(
		app.Paths{},
		repo,
		&testutil.MockResourceRepository{},
		mutator,
		&testutil.MockInitializer{},
		stubLoader{},
		&testutil.MockClock{},
		&testutil.MockLogger{},
	)
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, c *app.Container, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(c, "test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func taskRecord(id string) *domain.TaskRecord {
	return &domain.TaskRecord{
		ID:       id,
		Title:    "Task " + id,
		Status:   domain.StatusPending,
		Priority: domain.PriorityMedium,
	}
}

func TestBulkCommandFieldUpdate(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	repo.Add(taskRecord("a"), taskRecord("b"))
	mutator := testutil.NewMockMutator(taskRecord("a"), taskRecord("b"))

	out, err := execute(t, testContainer(repo, mutator), "bulk", "a", "b", "--set-priority", "high")
	require.NoError(t, err)

	assert.Contains(t, out, "Status: completed")
	assert.Contains(t, out, "Committed 2/2")
	assert.Equal(t, domain.PriorityHigh, mutator.Tasks["a"].Priority)
}

func TestBulkCommandTagMutation(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	repo.Add(taskRecord("a"))
	mutator := testutil.NewMockMutator(taskRecord("a"))

	_, err := execute(t, testContainer(repo, mutator), "bulk", "a", "--add-tag", "wave2", "--remove-tag", "wave1")
	require.NoError(t, err)
	assert.Contains(t, mutator.Tasks["a"].Tags, "wave2")
}

func TestBulkCommandRejectsNoMutation(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	mutator := testutil.NewMockMutator()

	_, err := execute(t, testContainer(repo, mutator), "bulk", "a")
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}

func TestBulkCommandRejectsMixedKinds(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	mutator := testutil.NewMockMutator()

	_, err := execute(t, testContainer(repo, mutator), "bulk", "a",
		"--set-priority", "high", "--migrate-to", "p2")
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}

func TestBulkCommandRollbackFailure(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	repo.Add(taskRecord("a"), taskRecord("b"))
	mutator := testutil.NewMockMutator(taskRecord("a"), taskRecord("b"))
	mutator.ApplyErrs["b"] = domain.NewPermanentMutationError("b", assert.AnError)
	mutator.RestoreErr = errors.New("store unavailable")

	out, err := execute(t, testContainer(repo, mutator), "bulk", "a", "b",
		"--set-priority", "high", "--rollback", "--workers", "1")
	require.Error(t, err)

	var rerr *domain.RollbackError
	require.True(t, errors.As(err, &rerr))
	assert.NotEmpty(t, rerr.Failures)
	assert.Contains(t, out, "Rollback incomplete")
}

func TestBulkCommandReportsFailure(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	repo.Add(taskRecord("a"))
	mutator := testutil.NewMockMutator() // task missing from the mutator store

	out, err := execute(t, testContainer(repo, mutator), "bulk", "a", "--set-priority", "high")
	require.Error(t, err)
	assert.Contains(t, out, "Status: partially_failed")
}
