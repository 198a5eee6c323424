package devserver

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Team26SWP/InnoAlias/game"
	"github.com/Team26SWP/InnoAlias/httpapi"
	"github.com/Team26SWP/InnoAlias/session"
)

// The tests below run the real client stack against the dev server over a
// live websocket, pending to in_progress to finished.

func startTestServer(t *testing.T) (apiBase, wsBase string) {
	t.Helper()
	srv := httptest.NewServer(NewServer().Handler())
	t.Cleanup(srv.Close)
	return srv.URL + "/api", "ws" + strings.TrimPrefix(srv.URL, "http") + "/api"
}

func createGame(t *testing.T, apiBase string, words []string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	code, err := httpapi.NewClient(apiBase).CreateGame(ctx, httpapi.CreateGameRequest{
		Words:          words,
		TriesPerPlayer: 3,
		RightToAdvance: 1,
		GuessingSec:    3600,
		TeamCount:      1,
	})
	require.NoError(t, err)
	return code
}

func startClient(t *testing.T, wsBase string, role game.Role, id session.Identity) *session.Engine {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	mgr := session.NewManager(wsBase, session.WebsocketDialer{})
	eng := session.NewEngine(mgr, session.Handoff{Identity: id, Role: role}, clockwork.NewRealClock())
	go func() { _ = eng.Run(ctx) }()
	return eng
}

// updateWhere drains updates until pred matches, consuming countdown noise
// and intermediate snapshots along the way.
func updateWhere(t *testing.T, eng *session.Engine, desc string, pred func(session.Update) bool) session.Update {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case u := <-eng.Updates():
			if pred(u) {
				return u
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", desc)
			return session.Update{}
		}
	}
}

func TestEndToEnd_TeamGame(t *testing.T) {
	apiBase, wsBase := startTestServer(t)
	code := createGame(t, apiBase, []string{"apple", "bridge"})

	host := startClient(t, wsBase, game.RoleHost, session.Identity{Name: "host", Code: code, IsHost: true})
	updateWhere(t, host, "host connected", func(u session.Update) bool {
		return u.Status == session.StatusConnected
	})

	// alice must be registered before bob joins; the first player in
	// becomes the word master.
	alice := startClient(t, wsBase, game.RolePlayer, session.Identity{Name: "alice", Code: code})
	updateWhere(t, host, "alice joined", func(u session.Update) bool {
		hs, ok := u.Snapshot.(*game.HostState)
		return ok && len(hs.Teams["team_1"].Players) == 1
	})
	bob := startClient(t, wsBase, game.RolePlayer, session.Identity{Name: "bob", Code: code})

	// The host's lobby must fill up before starting makes sense.
	u := updateWhere(t, host, "full lobby", func(u session.Update) bool {
		hs, ok := u.Snapshot.(*game.HostState)
		return ok && len(hs.Teams["team_1"].Players) == 2
	})
	hs := u.Snapshot.(*game.HostState)
	require.NoError(t, game.ValidateStart(hs, false))

	require.NoError(t, host.Send(session.StartGame()))

	updateWhere(t, host, "host overview", func(u session.Update) bool {
		return u.View == game.ViewHostOverview
	})

	// alice joined first, so she is the word master and sees the word.
	u = updateWhere(t, alice, "master view", func(u session.Update) bool {
		return u.View == game.ViewWordMaster
	})
	master := u.Snapshot.(*game.PlayerState)
	assert.Equal(t, "apple", master.CurrentWord)

	u = updateWhere(t, bob, "guesser view", func(u session.Update) bool {
		return u.View == game.ViewGuesser
	})
	guesser := u.Snapshot.(*game.PlayerState)
	assert.Empty(t, guesser.CurrentWord)

	// A wrong guess derives as an event from nothing but snapshots.
	require.NoError(t, bob.Send(session.Guess("banana")))
	updateWhere(t, bob, "wrong guess event", func(u session.Update) bool {
		return u.Event.Event == game.EventWrongGuess
	})

	require.NoError(t, bob.Send(session.Guess("apple")))
	updateWhere(t, bob, "correct guess event", func(u session.Update) bool {
		return u.Event.Event == game.EventCorrectGuess
	})

	require.NoError(t, bob.Send(session.Guess("bridge")))
	u = updateWhere(t, bob, "finished view", func(u session.Update) bool {
		return u.View == game.ViewFinished
	})
	final := u.Snapshot.(*game.PlayerState)
	assert.Equal(t, "Team 1", final.WinningTeam)
	assert.Equal(t, 2, final.TeamScores["bob"])

	updateWhere(t, host, "host finished", func(u session.Update) bool {
		return u.View == game.ViewFinished
	})

	// Post-game collaborators see the same result.
	ctx := context.Background()
	rows, err := httpapi.NewClient(apiBase).Leaderboard(ctx, code)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, httpapi.TeamScore{Team: "Team 1", Score: 2}, rows[0])
}

func TestEndToEnd_UnknownGameIsFatal(t *testing.T) {
	_, wsBase := startTestServer(t)

	eng := startClient(t, wsBase, game.RolePlayer, session.Identity{Name: "alice", Code: "NOPE"})

	u := updateWhere(t, eng, "fatal update", func(u session.Update) bool {
		return u.Status == session.StatusFatal
	})
	require.Error(t, u.Err)
	assert.Equal(t, "Game not found", u.Err.Error())
}

func TestEndToEnd_SecondHostIsRejected(t *testing.T) {
	apiBase, wsBase := startTestServer(t)
	code := createGame(t, apiBase, []string{"apple"})

	first := startClient(t, wsBase, game.RoleHost, session.Identity{Name: "host", Code: code, IsHost: true})
	updateWhere(t, first, "first host connected", func(u session.Update) bool {
		return u.Status == session.StatusConnected
	})

	second := startClient(t, wsBase, game.RoleHost, session.Identity{Name: "imposter", Code: code, IsHost: true})
	u := updateWhere(t, second, "second host rejected", func(u session.Update) bool {
		return u.Status == session.StatusFatal
	})
	assert.Equal(t, "Game already in progress", u.Err.Error())
}

func TestEndToEnd_LateJoinerIsRejected(t *testing.T) {
	apiBase, wsBase := startTestServer(t)
	code := createGame(t, apiBase, []string{"apple"})

	host := startClient(t, wsBase, game.RoleHost, session.Identity{Name: "host", Code: code, IsHost: true})
	alice := startClient(t, wsBase, game.RolePlayer, session.Identity{Name: "alice", Code: code})
	bob := startClient(t, wsBase, game.RolePlayer, session.Identity{Name: "bob", Code: code})

	updateWhere(t, host, "full lobby", func(u session.Update) bool {
		hs, ok := u.Snapshot.(*game.HostState)
		return ok && len(hs.Teams["team_1"].Players) == 2
	})
	require.NoError(t, host.Send(session.StartGame()))
	updateWhere(t, alice, "game started", func(u session.Update) bool {
		return u.Snapshot != nil && u.Snapshot.Phase() == game.PhaseInProgress
	})
	_ = bob

	late := startClient(t, wsBase, game.RolePlayer, session.Identity{Name: "carol", Code: code})
	u := updateWhere(t, late, "late joiner rejected", func(u session.Update) bool {
		return u.Status == session.StatusFatal
	})
	assert.Equal(t, "Game already in progress", u.Err.Error())
}

func TestEndToEnd_Solo(t *testing.T) {
	_, wsBase := startTestServer(t)

	eng := startClient(t, wsBase, game.RoleSolo, session.Identity{Name: "solo", Code: "practice"})
	updateWhere(t, eng, "solo connected", func(u session.Update) bool {
		return u.Status == session.StatusConnected
	})

	require.NoError(t, eng.Send(session.StartGame()))
	u := updateWhere(t, eng, "solo in progress", func(u session.Update) bool {
		return u.Snapshot != nil && u.Snapshot.Phase() == game.PhaseInProgress
	})
	solo := u.Snapshot.(*game.SoloState)
	require.NotEmpty(t, solo.CurrentWord)
	require.NotEmpty(t, solo.Clues)

	require.NoError(t, eng.Send(session.Guess(solo.CurrentWord)))
	updateWhere(t, eng, "solo scored", func(u session.Update) bool {
		return u.Event.Event == game.EventCorrectGuess
	})
}
