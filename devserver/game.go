package devserver

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Team26SWP/InnoAlias/game"
)

// Settings mirrors the create request. Zero values fall back to defaults.
type Settings struct {
	Words          []string `json:"remaining_words"`
	WordsAmount    int      `json:"words_amount"`
	TriesPerPlayer int      `json:"tries_per_player"`
	RightToAdvance int      `json:"right_answers_to_advance"`
	GuessingSec    int      `json:"time_for_guessing"`
	RotateMasters  bool     `json:"rotate_masters"`
	TeamCount      int      `json:"team_count"`
}

func (s *Settings) applyDefaults() {
	if s.WordsAmount <= 0 || s.WordsAmount > len(s.Words) {
		s.WordsAmount = len(s.Words)
	}
	if s.TriesPerPlayer <= 0 {
		s.TriesPerPlayer = 3
	}
	if s.RightToAdvance <= 0 {
		s.RightToAdvance = 1
	}
	if s.GuessingSec <= 0 {
		s.GuessingSec = 60
	}
	if s.TeamCount <= 0 {
		s.TeamCount = 1
	}
}

type stubTeam struct {
	id      string
	name    string
	players []string
	conns   map[string]*wsConn

	remaining      []string
	currentWord    string
	currentMaster  string
	masterIdx      int
	expiresAt      *time.Time
	scores         map[string]int
	triesLeft      map[string]int
	currentCorrect int
	round          int
	done           bool
}

func (t *stubTeam) totalScore() int {
	sum := 0
	for _, s := range t.scores {
		sum += s
	}
	return sum
}

type stubGame struct {
	mu sync.Mutex

	code     string
	settings Settings
	phase    game.Phase
	deck     []string
	teams    map[string]*stubTeam
	host     *wsConn
	winning  string
}

func newStubGame(code string, settings Settings) *stubGame {
	settings.applyDefaults()
	g := &stubGame{
		code:     code,
		settings: settings,
		phase:    game.PhasePending,
		deck:     settings.Words[:settings.WordsAmount],
		teams:    make(map[string]*stubTeam),
	}
	for i := 0; i < settings.TeamCount; i++ {
		id := teamID(i + 1)
		g.teams[id] = &stubTeam{
			id:        id,
			name:      "Team " + strconv.Itoa(i+1),
			conns:     make(map[string]*wsConn),
			scores:    make(map[string]int),
			triesLeft: make(map[string]int),
		}
	}
	return g
}

func teamID(n int) string { return "team_" + strconv.Itoa(n) }

// smallestTeam picks the team with the fewest players, ties broken by id.
func (g *stubGame) smallestTeam() *stubTeam {
	ids := make([]string, 0, len(g.teams))
	for id := range g.teams {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var best *stubTeam
	for _, id := range ids {
		t := g.teams[id]
		if best == nil || len(t.players) < len(best.players) {
			best = t
		}
	}
	return best
}

func (g *stubGame) addPlayer(name, teamPref string, c *wsConn) *stubTeam {
	t, ok := g.teams[teamPref]
	if !ok {
		t = g.smallestTeam()
	}
	if !contains(t.players, name) {
		t.players = append(t.players, name)
	}
	t.conns[name] = c
	t.triesLeft[name] = g.settings.TriesPerPlayer
	if _, ok := t.scores[name]; !ok {
		t.scores[name] = 0
	}
	return t
}

func (g *stubGame) removePlayer(name string) {
	for _, t := range g.teams {
		delete(t.conns, name)
	}
}

// knowsPlayer reports whether the name joined before. Returning players may
// reconnect mid-game; strangers may not.
func (g *stubGame) knowsPlayer(name string) bool {
	for _, t := range g.teams {
		if contains(t.players, name) {
			return true
		}
	}
	return false
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func (g *stubGame) start() {
	if g.phase != game.PhasePending {
		return
	}
	g.phase = game.PhaseInProgress
	for _, t := range g.teams {
		t.remaining = append([]string(nil), g.deck...)
		g.nextRound(t)
	}
}

// nextRound hands the team its next word and arms the round timer. When the
// deck runs dry for every team the game finishes.
func (g *stubGame) nextRound(t *stubTeam) {
	if len(t.remaining) == 0 {
		t.done = true
		t.currentWord = ""
		t.expiresAt = nil
		if g.allDone() {
			g.finish()
		}
		return
	}

	t.currentWord = t.remaining[0]
	t.remaining = t.remaining[1:]
	t.currentCorrect = 0
	t.round++

	if len(t.players) > 0 {
		if g.settings.RotateMasters {
			t.masterIdx = (t.round - 1) % len(t.players)
		}
		t.currentMaster = t.players[t.masterIdx]
	}
	for name := range t.triesLeft {
		t.triesLeft[name] = g.settings.TriesPerPlayer
	}

	deadline := time.Now().Add(time.Duration(g.settings.GuessingSec) * time.Second)
	t.expiresAt = &deadline

	round := t.round
	time.AfterFunc(time.Until(deadline), func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		// A guess may have already moved the team on.
		if g.phase != game.PhaseInProgress || t.round != round {
			return
		}
		log.Debug().Str("code", g.code).Str("team", t.id).Str("word", t.currentWord).Msg("round expired")
		g.nextRound(t)
		g.broadcast()
	})
}

func (g *stubGame) allDone() bool {
	for _, t := range g.teams {
		if !t.done {
			return false
		}
	}
	return true
}

func (g *stubGame) finish() {
	g.phase = game.PhaseFinished
	best := -1
	ids := make([]string, 0, len(g.teams))
	for id := range g.teams {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if s := g.teams[id].totalScore(); s > best {
			best = s
			g.winning = g.teams[id].name
		}
	}
	for _, t := range g.teams {
		t.expiresAt = nil
		t.currentWord = ""
	}
}

// guess handles one attempt. The word master cannot guess their own word.
func (g *stubGame) guess(t *stubTeam, name, word string) {
	if g.phase != game.PhaseInProgress || t.done || name == t.currentMaster {
		return
	}
	if t.triesLeft[name] <= 0 {
		return
	}

	if strings.EqualFold(strings.TrimSpace(word), t.currentWord) {
		t.scores[name]++
		t.currentCorrect++
		if t.currentCorrect >= g.settings.RightToAdvance {
			g.nextRound(t)
		}
		return
	}
	t.triesLeft[name]--
}

// skip is master-only and forfeits the current word.
func (g *stubGame) skip(t *stubTeam, name string) {
	if g.phase != game.PhaseInProgress || t.done || name != t.currentMaster {
		return
	}
	g.nextRound(t)
}

func (g *stubGame) switchTeam(name, newTeamID string) {
	if g.phase != game.PhasePending {
		return
	}
	dst, ok := g.teams[newTeamID]
	if !ok {
		return
	}
	for _, t := range g.teams {
		if t == dst || !contains(t.players, name) {
			continue
		}
		c := t.conns[name]
		filtered := t.players[:0]
		for _, p := range t.players {
			if p != name {
				filtered = append(filtered, p)
			}
		}
		t.players = filtered
		delete(t.conns, name)
		delete(t.scores, name)
		delete(t.triesLeft, name)

		dst.players = append(dst.players, name)
		if c != nil {
			dst.conns[name] = c
		}
		dst.scores[name] = 0
		dst.triesLeft[name] = g.settings.TriesPerPlayer
		return
	}
}

func (g *stubGame) leaderboard() map[string]int {
	out := make(map[string]int, len(g.teams))
	for _, t := range g.teams {
		out[t.name] = t.totalScore()
	}
	return out
}

// hostSnapshot builds the full-board view.
func (g *stubGame) hostSnapshot() game.HostState {
	teams := make(map[string]game.TeamState, len(g.teams))
	for id, t := range g.teams {
		teams[id] = game.TeamState{
			Name:                t.name,
			Players:             append([]string(nil), t.players...),
			CurrentWord:         t.currentWord,
			CurrentMaster:       t.currentMaster,
			ExpiresAt:           t.expiresAt,
			Scores:              copyScores(t.scores),
			CurrentCorrect:      t.currentCorrect,
			RightToAdvance:      g.settings.RightToAdvance,
			RemainingWordsCount: len(t.remaining),
		}
	}
	return game.HostState{
		GameState:   g.phase,
		Teams:       teams,
		WinningTeam: g.winning,
	}
}

// playerSnapshot builds the view for one participant. The current word is
// only disclosed to the team's word master.
func (g *stubGame) playerSnapshot(t *stubTeam, name string) game.PlayerState {
	word := ""
	if name == t.currentMaster {
		word = t.currentWord
	}

	all := make(map[string]int, len(g.teams))
	for _, other := range g.teams {
		all[other.name] = other.totalScore()
	}

	var tries *int
	if name != t.currentMaster {
		n := t.triesLeft[name]
		tries = &n
	}

	return game.PlayerState{
		GameState:           g.phase,
		TeamID:              t.id,
		TeamName:            t.name,
		ExpiresAt:           t.expiresAt,
		CurrentWord:         word,
		CurrentMaster:       t.currentMaster,
		RemainingWordsCount: len(t.remaining),
		TriesLeft:           tries,
		TeamScores:          copyScores(t.scores),
		AllTeamsScores:      all,
		PlayersInTeam:       append([]string(nil), t.players...),
		WinningTeam:         g.winning,
	}
}

func copyScores(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// broadcast pushes a tailored snapshot to the host and every player. Called
// with g.mu held after every mutation.
func (g *stubGame) broadcast() {
	if g.host != nil {
		if err := g.host.sendJSON(g.hostSnapshot()); err != nil {
			log.Debug().Err(err).Str("code", g.code).Msg("host write failed")
		}
	}
	for _, t := range g.teams {
		for name, c := range t.conns {
			if err := c.sendJSON(g.playerSnapshot(t, name)); err != nil {
				log.Debug().Err(err).Str("code", g.code).Str("player", name).Msg("player write failed")
			}
		}
	}
}
