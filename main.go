package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Team26SWP/InnoAlias/config"
	"github.com/Team26SWP/InnoAlias/devserver"
	"github.com/Team26SWP/InnoAlias/game"
	"github.com/Team26SWP/InnoAlias/httpapi"
	"github.com/Team26SWP/InnoAlias/session"
)

func main() {
	cfg := config.Load()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(cfg)
	case "host":
		err = runHost(cfg, os.Args[2:])
	case "join":
		err = runJoin(cfg, os.Args[2:])
	case "solo":
		err = runSolo(cfg, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("exited")
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  innoalias serve                             run the in-memory dev server
  innoalias host  [-words a,b,c] [-teams n]   create a game and host it
  innoalias join  -code CODE -name NAME       join a game as a player
  innoalias solo  [-code CODE]                play against the server`)
}

func runServe(cfg config.Config) error {
	srv := devserver.NewServer()
	log.Info().Str("addr", cfg.ListenAddr).Msg("dev server listening")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Handler().Run(cfg.ListenAddr) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, os.Interrupt)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Info().Msg("shutting down")
		return nil
	}
}

func runHost(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("host", flag.ExitOnError)
	name := fs.String("name", "host", "host display name")
	words := fs.String("words", "", "comma-separated deck, server default when empty")
	teams := fs.Int("teams", 2, "number of teams")
	tries := fs.Int("tries", 3, "wrong guesses per player per word")
	advance := fs.Int("advance", 1, "right answers needed to advance")
	guessSec := fs.Int("time", 60, "seconds per word")
	rotate := fs.Bool("rotate", true, "rotate word masters")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var deck []string
	if *words != "" {
		for _, w := range strings.Split(*words, ",") {
			if w = strings.TrimSpace(w); w != "" {
				deck = append(deck, w)
			}
		}
	}

	api := httpapi.NewClient(cfg.APIBase())
	code, err := api.CreateGame(ctx, httpapi.CreateGameRequest{
		Words:          deck,
		TriesPerPlayer: *tries,
		RightToAdvance: *advance,
		GuessingSec:    *guessSec,
		RotateMasters:  *rotate,
		TeamCount:      *teams,
	})
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	fmt.Printf("Game created. Join code: %s\n", code)

	id := session.Identity{Name: *name, Code: code, IsHost: true}
	return runSession(ctx, cfg, game.RoleHost, id, func(e *session.Engine, latest func() game.Snapshot, line string) {
		switch line {
		case "start":
			hs, _ := latest().(*game.HostState)
			if verr := game.ValidateStart(hs, *teams > 1); verr != nil {
				fmt.Println(verr.Error())
				return
			}
			sendOrReport(e, session.StartGame())
		case "stop":
			sendOrReport(e, session.StopGame())
		default:
			fmt.Println("commands: start, stop, quit")
		}
	})
}

func runJoin(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	code := fs.String("code", "", "game join code")
	name := fs.String("name", "", "player name")
	team := fs.String("team", "", "team id, auto-assigned when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("join requires -name")
	}
	joinCode, err := game.NormalizeJoinCode(*code)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	id := session.Identity{Name: *name, Code: joinCode, TeamID: *team}
	return runSession(ctx, cfg, game.RolePlayer, id, func(e *session.Engine, latest func() game.Snapshot, line string) {
		switch {
		case line == "/skip":
			sendOrReport(e, session.Skip())
		case strings.HasPrefix(line, "/team "):
			if game.CanSwitchTeam(false, latest()) {
				sendOrReport(e, session.SwitchTeam(strings.TrimSpace(strings.TrimPrefix(line, "/team "))))
			} else {
				fmt.Println("Team switching is not available")
			}
		default:
			sendOrReport(e, session.Guess(line))
		}
	})
}

func runSolo(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("solo", flag.ExitOnError)
	code := fs.String("code", "practice", "game code")
	name := fs.String("name", "solo", "player name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	id := session.Identity{Name: *name, Code: *code}
	return runSession(ctx, cfg, game.RoleSolo, id, func(e *session.Engine, _ func() game.Snapshot, line string) {
		switch line {
		case "start":
			sendOrReport(e, session.StartGame())
		case "/skip":
			sendOrReport(e, session.Skip())
		default:
			sendOrReport(e, session.Guess(line))
		}
	})
}

func sendOrReport(e *session.Engine, a session.Action) {
	if err := e.Send(a); err != nil {
		fmt.Println(err)
	}
}

// runSession wires an engine to the terminal: updates and the countdown are
// printed as they arrive, stdin lines go to onLine.
func runSession(ctx context.Context, cfg config.Config, role game.Role, id session.Identity,
	onLine func(e *session.Engine, latest func() game.Snapshot, line string)) error {

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mgr := session.NewManager(cfg.WSBase(), session.WebsocketDialer{})
	eng := session.NewEngine(mgr, session.Handoff{Identity: id, Role: role}, clockwork.NewRealClock())

	var mu sync.Mutex
	var latest game.Snapshot
	getLatest := func() game.Snapshot {
		mu.Lock()
		defer mu.Unlock()
		return latest
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case u := <-eng.Updates():
				mu.Lock()
				if u.Snapshot != nil {
					latest = u.Snapshot
				}
				mu.Unlock()
				render(u)
			case left := <-eng.Countdown():
				fmt.Printf("\r%-20s", left)
			}
		}
	}()

	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			if line == "quit" || line == "/quit" {
				cancel()
				return
			}
			onLine(eng, getLatest, line)
		}
		cancel()
	}()

	err := eng.Run(ctx)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func render(u session.Update) {
	switch u.Status {
	case session.StatusReconnecting:
		fmt.Println("Connection lost, reconnecting...")
		return
	case session.StatusFatal:
		var cerr *session.ConnectionError
		if errors.As(u.Err, &cerr) {
			fmt.Printf("Could not connect: %v\n", cerr.Err)
			fmt.Println("Check the server address and game code, then try again.")
			return
		}
		fmt.Printf("Session ended: %v\n", u.Err)
		return
	}
	if u.Err != nil {
		log.Warn().Err(u.Err).Msg("bad frame ignored")
		return
	}
	if u.Event.Event == game.EventCorrectGuess {
		fmt.Println("Correct!")
	}
	if u.Event.Event == game.EventWrongGuess {
		fmt.Println("Wrong guess.")
	}
	if u.Event.MissedWord != "" {
		fmt.Printf("Time ran out, the word was %q.\n", u.Event.MissedWord)
	}

	switch u.View {
	case game.ViewLobby:
		fmt.Println("Waiting in the lobby...")
	case game.ViewWordMaster:
		if s, ok := u.Snapshot.(*game.PlayerState); ok {
			fmt.Printf("You are the word master. The word is %q. Words left: %d\n", s.CurrentWord, s.RemainingWordsCount)
		}
	case game.ViewGuesser:
		renderGuesser(u.Snapshot)
	case game.ViewHostOverview:
		renderHost(u.Snapshot)
	case game.ViewFinished:
		renderFinished(u.Snapshot)
	}
}

func renderGuesser(snap game.Snapshot) {
	switch s := snap.(type) {
	case *game.PlayerState:
		fmt.Printf("Guess the word! Master: %s.", s.CurrentMaster)
		if s.TriesLeft != nil {
			fmt.Printf(" Tries left: %d.", *s.TriesLeft)
		}
		fmt.Printf(" Words left: %d\n", s.RemainingWordsCount)
	case *game.SoloState:
		fmt.Printf("Score %d, words left %d.\n", s.Score, len(s.RemainingWords))
		for _, clue := range s.Clues {
			fmt.Println("  clue:", clue)
		}
	}
}

func renderHost(snap game.Snapshot) {
	s, ok := snap.(*game.HostState)
	if !ok {
		return
	}
	ids := make([]string, 0, len(s.Teams))
	for tid := range s.Teams {
		ids = append(ids, tid)
	}
	sort.Strings(ids)
	for _, tid := range ids {
		t := s.Teams[tid]
		fmt.Printf("%s: word %q, master %s, progress %d/%d, words left %d\n",
			t.Name, t.CurrentWord, t.CurrentMaster, t.CurrentCorrect, t.RightToAdvance, t.RemainingWordsCount)
	}
}

func renderFinished(snap game.Snapshot) {
	switch s := snap.(type) {
	case *game.HostState:
		fmt.Printf("Game over. Winner: %s\n", s.WinningTeam)
	case *game.PlayerState:
		fmt.Printf("Game over. Winner: %s\n", s.WinningTeam)
		ids := make([]string, 0, len(s.AllTeamsScores))
		for team := range s.AllTeamsScores {
			ids = append(ids, team)
		}
		sort.Strings(ids)
		for _, team := range ids {
			fmt.Printf("  %s: %d\n", team, s.AllTeamsScores[team])
		}
	case *game.SoloState:
		fmt.Printf("Game over. Final score: %d\n", s.Score)
	}
}
