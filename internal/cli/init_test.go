package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planweave/planweave/internal/app"
	"github.com/planweave/planweave/internal/domain"
	"github.com/planweave/planweave/internal/testutil"
)

func TestInitCommand(t *testing.T) {
	initializer := &testutil.MockInitializer{}
	c := app.NewWithDeps(
		app.Paths{WorkspaceDir: "/tmp/ws/.planweave"},
		testutil.NewMockTaskRepository(),
		&testutil.MockResourceRepository{},
		testutil.NewMockMutator(),
		initializer,
		stubLoader{},
		&testutil.MockClock{},
		&testutil.MockLogger{},
	)

	out, err := execute(t, c, "init")
	require.NoError(t, err)
	assert.True(t, initializer.Initialized)
	assert.Contains(t, out, "Initialized planweave")
}

func TestInitCommandAlreadyInitialized(t *testing.T) {
	initializer := &testutil.MockInitializer{InitErr: domain.ErrAlreadyInitialized}
	c := app.NewWithDeps(
		app.Paths{WorkspaceDir: "/tmp/ws/.planweave"},
		testutil.NewMockTaskRepository(),
		&testutil.MockResourceRepository{},
		testutil.NewMockMutator(),
		initializer,
		stubLoader{},
		&testutil.MockClock{},
		&testutil.MockLogger{},
	)

	out, err := execute(t, c, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already initialized")
}

func TestListCommand(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	repo.Add(taskRecord("a"))

	out, err := execute(t, testContainer(repo, testutil.NewMockMutator()), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Task a")
}

func TestListCommandRejectsUnknownStatus(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	_, err := execute(t, testContainer(repo, testutil.NewMockMutator()), "list", "--status", "limbo")
	assert.Error(t, err)
}

func TestAnalyzeCommand(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	repo.Add(taskRecord("a"))

	out, err := execute(t, testContainer(repo, testutil.NewMockMutator()), "analyze")
	require.NoError(t, err)
	assert.Contains(t, out, "Critical path")
}
