package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/deskshell/internal/log"
	"github.com/slok/deskshell/internal/model"
	"github.com/slok/deskshell/internal/storage/memory"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		run func(t *testing.T, repo *memory.Repository)
	}{
		"Creating and getting a run should return the same run.": {
			run: func(t *testing.T, repo *memory.Repository) {
				run := model.ServerRun{ID: "r1", Executable: "main", PID: 10, Status: model.RunStatusRunning, StartedAt: base}
				require.NoError(t, repo.CreateRun(ctx, run))

				got, err := repo.GetRun(ctx, "r1")
				require.NoError(t, err)
				assert.Equal(t, run, *got)
			},
		},
		"Creating a duplicated run should fail.": {
			run: func(t *testing.T, repo *memory.Repository) {
				run := model.ServerRun{ID: "r1", StartedAt: base}
				require.NoError(t, repo.CreateRun(ctx, run))
				assert.ErrorIs(t, repo.CreateRun(ctx, run), model.ErrAlreadyExists)
			},
		},
		"Getting or updating a missing run should fail with not found.": {
			run: func(t *testing.T, repo *memory.Repository) {
				_, err := repo.GetRun(ctx, "missing")
				assert.ErrorIs(t, err, model.ErrNotFound)
				assert.ErrorIs(t, repo.UpdateRun(ctx, model.ServerRun{ID: "missing"}), model.ErrNotFound)
			},
		},
		"Mutating a returned run should not change the stored one.": {
			run: func(t *testing.T, repo *memory.Repository) {
				code := 1
				require.NoError(t, repo.CreateRun(ctx, model.ServerRun{ID: "r1", ExitCode: &code, StartedAt: base}))

				got, err := repo.GetRun(ctx, "r1")
				require.NoError(t, err)
				*got.ExitCode = 99

				got, err = repo.GetRun(ctx, "r1")
				require.NoError(t, err)
				assert.Equal(t, 1, *got.ExitCode)
			},
		},
		"Listing should return newest first and honor the limit.": {
			run: func(t *testing.T, repo *memory.Repository) {
				for i, id := range []string{"a", "b", "c"} {
					require.NoError(t, repo.CreateRun(ctx, model.ServerRun{ID: id, StartedAt: base.Add(time.Duration(i) * time.Second)}))
				}

				runs, err := repo.ListRuns(ctx, 2)
				require.NoError(t, err)
				require.Len(t, runs, 2)
				assert.Equal(t, "c", runs[0].ID)
				assert.Equal(t, "b", runs[1].ID)
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: log.Noop})
			require.NoError(t, err)
			test.run(t, repo)
		})
	}
}
