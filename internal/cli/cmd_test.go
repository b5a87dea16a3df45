package cli

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/alexanderramin/dagatna/internal/cleanup"
	"github.com/alexanderramin/dagatna/internal/config"
	"github.com/alexanderramin/dagatna/internal/repository"
	"github.com/alexanderramin/dagatna/internal/service"
	"github.com/alexanderramin/dagatna/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

type testEnv struct {
	app   *App
	clock *clockwork.FakeClock
	runs  repository.RunRepo
}

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T, cooldown time.Duration) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	clock := clockwork.NewFakeClockAt(epoch)

	runRepo := repository.NewSQLiteRunRepo(database)
	claimRepo := repository.NewSQLiteClaimRepo(database)
	uow := testutil.NewTestUoW(database)

	cfg, err := config.LoadFrom(map[string]string{"DAGATNA_DB": ":memory:"})
	require.NoError(t, err)
	cfg.Cooldown = cooldown

	app := &App{
		Runs:          service.NewRunService(runRepo, clock, cooldown),
		Claims:        service.NewClaimService(runRepo, claimRepo, uow, service.NewOfflineClaimer(nil), clock, cfg.Engine.RewardCap),
		Config:        cfg,
		Clock:         clock,
		IsInteractive: func() bool { return true },
		Confirm:       func(string, string) (bool, error) { return true, nil },
		RunProgram: func(context.Context, tea.Model) (tea.Model, error) {
			return nil, errors.New("no program expected")
		},
	}
	return &testEnv{app: app, clock: clock, runs: runRepo}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return stripANSI(buf.String()), err
}

// scriptedProgram plays the session by pressing keys and then letting the
// fake clock run out the budget.
func scriptedProgram(t *testing.T, clock *clockwork.FakeClock, keys string) func(context.Context, tea.Model) (tea.Model, error) {
	return scriptedRounds(t, clock, keys)
}

// scriptedRounds plays one key script per program run and asks to play
// again after every round but the last.
func scriptedRounds(t *testing.T, clock *clockwork.FakeClock, rounds ...string) func(context.Context, tea.Model) (tea.Model, error) {
	played := 0
	return func(_ context.Context, model tea.Model) (tea.Model, error) {
		require.Less(t, played, len(rounds), "unexpected extra round")
		keys := rounds[played]
		played++

		m := model.(*playModel)
		for _, r := range keys {
			m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		}
		if r := []rune(keys); len(r) > 0 && r[len(r)-1] == 'q' {
			return m, nil
		}
		clock.Advance(61 * time.Second)
		select {
		case res := <-m.results:
			m.Update(sessionFinishedMsg{result: res})
		case <-time.After(2 * time.Second):
			t.Fatal("session did not finish")
		}
		if played < len(rounds) {
			m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
		}
		return m, nil
	}
}

func TestTiersCmd(t *testing.T) {
	env := testApp(t, 0)
	out, err := executeCmd(t, env.app, "tiers")
	require.NoError(t, err)
	assert.Contains(t, out, "40+")
	assert.Contains(t, out, "20+")
	assert.Contains(t, out, "10+")
	assert.Contains(t, out, "capped at 10")
}

func TestSimulateCmd_Deterministic(t *testing.T) {
	env := testApp(t, 0)

	first, err := executeCmd(t, env.app, "simulate", "--seed", "7")
	require.NoError(t, err)
	second, err := executeCmd(t, env.app, "simulate", "--seed", "7")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "25 items cleared")
	assert.Contains(t, first, "2 fish food")

	runs, err := env.app.Runs.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs, "simulations are not recorded without --record")
}

func TestSimulateCmd_EngineFlags(t *testing.T) {
	env := testApp(t, 0)
	out, err := executeCmd(t, env.app, "simulate", "--seed", "7", "--duration", "10s", "--clears", "50", "--every", "100ms")
	require.NoError(t, err)
	assert.Contains(t, out, "items cleared")

	_, err = executeCmd(t, env.app, "simulate", "--spawn-cap", "0")
	assert.ErrorIs(t, err, cleanup.ErrInvalidConfig)
}

func TestSimulateRecordClaimFlow(t *testing.T) {
	env := testApp(t, 0)
	ctx := context.Background()

	out, err := executeCmd(t, env.app, "simulate", "--seed", "7", "--record")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded run")

	runs, err := env.app.Runs.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	runID := runs[0].ID

	out, err = executeCmd(t, env.app, "history")
	require.NoError(t, err)
	assert.Contains(t, out, runID[:8])
	assert.Contains(t, out, "25")

	assert.Contains(t, out, "simulate")

	out, err = executeCmd(t, env.app, "claim", runID)
	require.NoError(t, err)
	assert.Contains(t, out, "Simulated runs earn no fish food")

	out, err = executeCmd(t, env.app, "balance")
	require.NoError(t, err)
	assert.Contains(t, out, "0 fish food claimed")

	out, err = executeCmd(t, env.app, "history", runID)
	require.NoError(t, err)
	assert.Contains(t, out, runID)
	assert.Contains(t, out, "simulated, not claimable")
}

func TestSimulateCmd_LowRewardCapCannotBeClaimedUp(t *testing.T) {
	env := testApp(t, 0)
	ctx := context.Background()

	out, err := executeCmd(t, env.app, "simulate", "--seed", "7", "--clears", "120",
		"--offset", "100ms", "--every", "400ms", "--reward-cap", "1", "--record")
	require.NoError(t, err)
	assert.Contains(t, out, "Worth in play 1 fish food")

	runs, err := env.app.Runs.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].RewardCap)

	_, err = executeCmd(t, env.app, "claim", runs[0].ID)
	require.NoError(t, err)
	total, err := env.app.Claims.Balance(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestClaimCmd_PlayedRun(t *testing.T) {
	env := testApp(t, 0)
	run := testutil.NewTestRun(testutil.WithCleared(25, 2))
	require.NoError(t, env.runs.Create(context.Background(), run))

	out, err := executeCmd(t, env.app, "claim", run.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Submitted")
	assert.Contains(t, out, "2 fish food")

	out, err = executeCmd(t, env.app, "claim", run.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "already claimed")

	out, err = executeCmd(t, env.app, "balance")
	require.NoError(t, err)
	assert.Contains(t, out, "2 fish food claimed")

	out, err = executeCmd(t, env.app, "history", run.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "offline-")
}

func TestSimulateCmd_RecordRespectsCooldown(t *testing.T) {
	env := testApp(t, 10*time.Minute)

	_, err := executeCmd(t, env.app, "simulate", "--seed", "1", "--record")
	require.NoError(t, err)
	_, err = executeCmd(t, env.app, "simulate", "--seed", "1", "--record")
	assert.ErrorIs(t, err, ErrCoolingDown)

	_, err = executeCmd(t, env.app, "simulate", "--seed", "1")
	assert.NoError(t, err, "unrecorded simulations ignore the cooldown")
}

func TestClaimCmd_UnknownRun(t *testing.T) {
	env := testApp(t, 0)
	_, err := executeCmd(t, env.app, "claim", "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestClaimCmd_NoReward(t *testing.T) {
	env := testApp(t, 0)
	run := testutil.NewTestRun(testutil.WithCleared(3, 0))
	require.NoError(t, env.runs.Create(context.Background(), run))

	out, err := executeCmd(t, env.app, "claim", run.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "did not reach a reward tier")
}

func TestPlayCmd_RequiresTerminal(t *testing.T) {
	env := testApp(t, 0)
	env.app.IsInteractive = func() bool { return false }

	_, err := executeCmd(t, env.app, "play")
	assert.ErrorIs(t, err, ErrNotInteractive)
}

func TestPlayCmd_RulesDeclined(t *testing.T) {
	env := testApp(t, 0)
	env.app.Confirm = func(string, string) (bool, error) { return false, nil }

	out, err := executeCmd(t, env.app, "play")
	require.NoError(t, err)
	assert.Contains(t, out, "Maybe next time")
}

func TestPlayCmd_CoolingDown(t *testing.T) {
	env := testApp(t, 10*time.Minute)
	run := testutil.NewTestRun(testutil.WithStartedAt(epoch.Add(-time.Minute)))
	require.NoError(t, env.runs.Create(context.Background(), run))

	_, err := executeCmd(t, env.app, "play")
	require.ErrorIs(t, err, ErrCoolingDown)
	assert.Contains(t, err.Error(), "9m")
}

func TestPlayCmd_RecordsFinishedSession(t *testing.T) {
	env := testApp(t, 0)
	env.app.RunProgram = scriptedProgram(t, env.clock, "ab")

	out, err := executeCmd(t, env.app, "play", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "2 items cleared")

	runs, err := env.app.Runs.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].ItemsCleared)
	assert.Equal(t, 0, runs[0].RewardTier)
	assert.True(t, epoch.Equal(runs[0].StartedAt))
}

func TestPlayCmd_ClaimsAfterConfirm(t *testing.T) {
	env := testApp(t, 0)
	env.app.RunProgram = scriptedProgram(t, env.clock, "abcdefghij")
	var asked []string
	env.app.Confirm = func(title, _ string) (bool, error) {
		asked = append(asked, title)
		return true, nil
	}

	out, err := executeCmd(t, env.app, "play")
	require.NoError(t, err)
	assert.Contains(t, out, "10 items cleared")
	assert.Contains(t, out, "Submitted")
	require.Len(t, asked, 2)
	assert.Equal(t, "Claim 1 fish food now?", asked[1])

	total, err := env.app.Claims.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestPlayCmd_AbandonRecordsNothing(t *testing.T) {
	env := testApp(t, 0)
	env.app.RunProgram = scriptedProgram(t, env.clock, "aq")

	out, err := executeCmd(t, env.app, "play", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Session abandoned")

	runs, err := env.app.Runs.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestPlayCmd_RewardCapFlagBoundsClaim(t *testing.T) {
	env := testApp(t, 0)
	env.app.RunProgram = scriptedProgram(t, env.clock, "abcdefghijklmnoprstu")
	var asked []string
	env.app.Confirm = func(title, _ string) (bool, error) {
		asked = append(asked, title)
		return true, nil
	}

	out, err := executeCmd(t, env.app, "play", "--yes",
		"--initial-items", "25", "--spawn-cap", "25", "--reward-cap", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "20 items cleared")
	assert.Contains(t, out, "Claimable 1 fish food")
	require.Len(t, asked, 1)
	assert.Equal(t, "Claim 1 fish food now?", asked[0])

	runs, err := env.app.Runs.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].RewardTier)
	assert.Equal(t, 1, runs[0].RewardCap)

	total, err := env.app.Claims.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestSessionConfig_FlagCannotRaiseCap(t *testing.T) {
	env := testApp(t, 0)
	engine := env.app.Config.Engine
	engine.RewardCap = 50

	cfg, err := sessionConfig(env.app, engine)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.RewardCap)
}

func TestPlayCmd_PoolLargerThanLabels(t *testing.T) {
	env := testApp(t, 0)

	_, err := executeCmd(t, env.app, "play", "--yes", "--spawn-cap", "30")
	assert.ErrorIs(t, err, cleanup.ErrInvalidConfig)

	_, err = executeCmd(t, env.app, "play", "--yes", "--initial-items", "26")
	assert.ErrorIs(t, err, cleanup.ErrInvalidConfig)
}

func TestPlayCmd_PlayAgain(t *testing.T) {
	env := testApp(t, 0)
	env.app.RunProgram = scriptedRounds(t, env.clock, "ab", "abc")

	out, err := executeCmd(t, env.app, "play", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "2 items cleared")
	assert.Contains(t, out, "3 items cleared")

	runs, err := env.app.Runs.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 3, runs[0].ItemsCleared)
	assert.Equal(t, 2, runs[1].ItemsCleared)
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))
	assert.Zero(t, runs[0].Seed, "replays are not reproducible from the seed")
}

func TestPlayCmd_PlayAgainRespectsCooldown(t *testing.T) {
	env := testApp(t, 10*time.Minute)
	env.app.RunProgram = scriptedRounds(t, env.clock, "ab", "abc")

	_, err := executeCmd(t, env.app, "play", "--yes")
	require.ErrorIs(t, err, ErrCoolingDown)

	runs, err := env.app.Runs.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].ItemsCleared)
}
