// Package devserver is an in-memory server speaking the same HTTP and
// websocket protocol as the production backend. It backs the serve command
// and the end-to-end tests; nothing survives a restart.
package devserver

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Team26SWP/InnoAlias/game"
	"github.com/Team26SWP/InnoAlias/session"
)

var defaultDeck = []string{"apple", "bridge", "candle", "dolphin", "engine", "forest"}

type Server struct {
	mu       sync.Mutex
	games    map[string]*stubGame
	solos    map[string]*soloGame
	upgrader websocket.Upgrader
}

func NewServer() *Server {
	return &Server{
		games: make(map[string]*stubGame),
		solos: make(map[string]*soloGame),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler builds the gin engine with every route mounted under /api.
//
// The realtime paths share a prefix with the REST ones (/game/{code} next to
// /game/deck/{id}), which the router's trees cannot express, so GET requests
// under /game go through one catch-all and are dispatched by hand.
func (s *Server) Handler() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	api := r.Group("/api")
	api.POST("/game/create", s.createGame)
	api.DELETE("/game/delete/:id", s.deleteGame)
	api.GET("/game/*rest", s.dispatchGame)
	api.GET("/aigame/:code", func(c *gin.Context) { s.soloSocket(c, c.Param("code")) })
	return r
}

func (s *Server) dispatchGame(c *gin.Context) {
	rest := strings.Trim(c.Param("rest"), "/")
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 2 && parts[0] == "leaderboard":
		s.leaderboard(c, parts[1])
	case len(parts) == 3 && parts[0] == "leaderboard" && parts[2] == "export":
		s.exportDeck(c, parts[1])
	case len(parts) == 2 && parts[0] == "deck":
		s.deck(c, parts[1])
	case len(parts) == 2 && parts[0] == "player":
		s.playerSocket(c, parts[1])
	case len(parts) == 1 && parts[0] != "":
		s.hostSocket(c, parts[0])
	default:
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found"})
	}
}

func (s *Server) createGame(c *gin.Context) {
	var settings Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if len(settings.Words) == 0 {
		settings.Words = append([]string(nil), defaultDeck...)
	}

	code := strings.ToUpper(uuid.NewString()[:6])
	s.mu.Lock()
	s.games[code] = newStubGame(code, settings)
	s.mu.Unlock()

	log.Info().Str("code", code).Int("words", len(settings.Words)).Msg("game created")
	c.JSON(http.StatusOK, gin.H{"id": code})
}

func (s *Server) deleteGame(c *gin.Context) {
	code := c.Param("id")
	s.mu.Lock()
	_, ok := s.games[code]
	delete(s.games, code)
	delete(s.solos, code)
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Game not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": code})
}

func (s *Server) lookup(code string) *stubGame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.games[code]
}

func (s *Server) leaderboard(c *gin.Context, code string) {
	g := s.lookup(code)
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Game not found"})
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	c.JSON(http.StatusOK, g.leaderboard())
}

func (s *Server) deck(c *gin.Context, code string) {
	g := s.lookup(code)
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Game not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"words": g.deck})
}

func (s *Server) exportDeck(c *gin.Context, code string) {
	g := s.lookup(code)
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Game not found"})
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(strings.Join(g.deck, "\n")+"\n"))
}

// wsConn serializes writes to one websocket.
type wsConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *wsConn) sendJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

func (c *wsConn) closeWith(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	_ = c.ws.Close()
}

func (s *Server) upgrade(c *gin.Context) (*wsConn, bool) {
	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return nil, false
	}
	return &wsConn{ws: ws}, true
}

func (s *Server) hostSocket(c *gin.Context, code string) {
	conn, ok := s.upgrade(c)
	if !ok {
		return
	}

	g := s.lookup(code)
	if g == nil {
		conn.closeWith(session.CloseGameNotFound, session.ReasonGameNotFound)
		return
	}

	g.mu.Lock()
	if g.host != nil {
		g.mu.Unlock()
		conn.closeWith(session.ClosePolicyViolation, session.ReasonGameInProgress)
		return
	}
	g.host = conn
	g.broadcast()
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		if g.host == conn {
			g.host = nil
		}
		g.mu.Unlock()
		_ = conn.ws.Close()
	}()

	for {
		var a session.Action
		if err := conn.ws.ReadJSON(&a); err != nil {
			return
		}
		g.mu.Lock()
		switch a.Action {
		case session.ActionStartGame:
			g.start()
		case session.ActionStopGame:
			g.finish()
		}
		g.broadcast()
		g.mu.Unlock()
	}
}

func (s *Server) playerSocket(c *gin.Context, code string) {
	name := c.Query("name")
	teamPref := c.Query("team")

	conn, ok := s.upgrade(c)
	if !ok {
		return
	}

	g := s.lookup(code)
	if g == nil {
		conn.closeWith(session.CloseGameNotFound, session.ReasonGameNotFound)
		return
	}

	g.mu.Lock()
	if g.phase != game.PhasePending && !g.knowsPlayer(name) {
		g.mu.Unlock()
		conn.closeWith(session.ClosePolicyViolation, session.ReasonGameInProgress)
		return
	}
	t := g.addPlayer(name, teamPref, conn)
	g.broadcast()
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.removePlayer(name)
		g.broadcast()
		g.mu.Unlock()
		_ = conn.ws.Close()
	}()

	for {
		var a session.Action
		if err := conn.ws.ReadJSON(&a); err != nil {
			return
		}
		g.mu.Lock()
		switch a.Action {
		case session.ActionGuess:
			g.guess(t, name, a.Guess)
		case session.ActionSkip:
			g.skip(t, name)
		case session.ActionSwitchTeam:
			g.switchTeam(name, a.NewTeamID)
			if moved, ok := g.teams[a.NewTeamID]; ok && contains(moved.players, name) {
				t = moved
			}
		}
		g.broadcast()
		g.mu.Unlock()
	}
}

func (s *Server) soloSocket(c *gin.Context, code string) {
	conn, ok := s.upgrade(c)
	if !ok {
		return
	}

	s.mu.Lock()
	sg, exists := s.solos[code]
	if !exists {
		deck := append([]string(nil), defaultDeck...)
		guessSec := 0
		if g, hasDeck := s.games[code]; hasDeck {
			deck = append([]string(nil), g.deck...)
			guessSec = g.settings.GuessingSec
		}
		sg = newSoloGame(code, deck, guessSec)
		s.solos[code] = sg
	}
	s.mu.Unlock()

	sg.mu.Lock()
	sg.conn = conn
	sg.push()
	sg.mu.Unlock()

	defer func() {
		sg.mu.Lock()
		if sg.conn == conn {
			sg.conn = nil
		}
		sg.mu.Unlock()
		_ = conn.ws.Close()
	}()

	for {
		var a session.Action
		if err := conn.ws.ReadJSON(&a); err != nil {
			return
		}
		sg.mu.Lock()
		switch a.Action {
		case session.ActionStartGame:
			sg.start()
		case session.ActionGuess:
			sg.guess(a.Guess)
		case session.ActionSkip:
			sg.skip()
		}
		sg.push()
		sg.mu.Unlock()
	}
}
