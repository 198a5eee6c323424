package devserver

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Team26SWP/InnoAlias/game"
)

// soloGame is the single-player mode. One socket, the server plays the word
// master and drips out clues.
type soloGame struct {
	mu sync.Mutex

	code      string
	phase     game.Phase
	deck      []string
	remaining []string
	current   string
	clues     []string
	score     int
	expiresAt *time.Time
	guessSec  int
	round     int

	conn *wsConn
}

func newSoloGame(code string, words []string, guessSec int) *soloGame {
	if guessSec <= 0 {
		guessSec = 60
	}
	return &soloGame{
		code:     code,
		phase:    game.PhasePending,
		deck:     words,
		guessSec: guessSec,
	}
}

func (g *soloGame) start() {
	if g.phase != game.PhasePending {
		return
	}
	g.phase = game.PhaseInProgress
	g.remaining = append([]string(nil), g.deck...)
	g.nextWord()
}

func (g *soloGame) nextWord() {
	if len(g.remaining) == 0 {
		g.phase = game.PhaseFinished
		g.current = ""
		g.clues = nil
		g.expiresAt = nil
		return
	}

	g.current = g.remaining[0]
	g.remaining = g.remaining[1:]
	g.clues = cluesFor(g.current)
	g.round++

	deadline := time.Now().Add(time.Duration(g.guessSec) * time.Second)
	g.expiresAt = &deadline

	round := g.round
	time.AfterFunc(time.Until(deadline), func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.phase != game.PhaseInProgress || g.round != round {
			return
		}
		g.nextWord()
		g.push()
	})
}

func (g *soloGame) guess(word string) {
	if g.phase != game.PhaseInProgress {
		return
	}
	if strings.EqualFold(strings.TrimSpace(word), g.current) {
		g.score++
		g.nextWord()
	}
}

func (g *soloGame) skip() {
	if g.phase != game.PhaseInProgress {
		return
	}
	g.nextWord()
}

// cluesFor produces stand-in hints. A real deployment generates these from a
// language model; shape on the wire is identical.
func cluesFor(word string) []string {
	w := strings.TrimSpace(word)
	if w == "" {
		return nil
	}
	return []string{
		"The word has " + strconv.Itoa(len([]rune(w))) + " letters",
		"It starts with " + strings.ToUpper(string([]rune(w)[0])),
	}
}

func (g *soloGame) snapshot() game.SoloState {
	return game.SoloState{
		GameState:      g.phase,
		Deck:           append([]string(nil), g.deck...),
		RemainingWords: append([]string(nil), g.remaining...),
		CurrentWord:    g.current,
		Clues:          append([]string(nil), g.clues...),
		Score:          g.score,
		ExpiresAt:      g.expiresAt,
	}
}

func (g *soloGame) push() {
	if g.conn != nil {
		_ = g.conn.sendJSON(g.snapshot())
	}
}
