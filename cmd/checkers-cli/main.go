package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/park285/cheese-checkers/internal/apiclient"
	"github.com/park285/cheese-checkers/internal/checkers"
	"github.com/park285/cheese-checkers/internal/httpapi"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdin, os.Stdout).Run(os.Args); err != nil {
		log.Fatalf("checkers-cli: %v", err)
	}
}

func newApp(in io.Reader, out io.Writer) *cli.App {
	play := func(cCtx *cli.Context) error {
		client := newClient(cCtx)
		s := &shell{client: client, out: out}

		ctx, cancel := context.WithTimeout(cCtx.Context, 10*time.Second)
		var err error
		if id := cCtx.String("game"); id != "" {
			s.game, err = client.Game(ctx, id)
		} else {
			s.game, err = client.CreateGame(ctx)
		}
		cancel()
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}

		s.print()
		return s.run(in)
	}
	return &cli.App{
		Name:      "checkers-cli",
		Usage:     "play hot-seat checkers against a checkers-server",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api",
				Usage:   "checkers server base URL",
				EnvVars: []string{"CHECKERS_API"},
				Value:   "http://localhost:8080",
			},
			gameFlag(),
		},
		Action: play,
		Commands: []*cli.Command{
			{
				Name:   "play",
				Usage:  "start or resume a game and read clicks from stdin",
				Flags:  []cli.Flag{gameFlag()},
				Action: play,
			},
			{
				Name:  "games",
				Usage: "list stored games, newest first",
				Action: func(cCtx *cli.Context) error {
					s := &shell{client: newClient(cCtx), out: out}
					s.exec([]string{"games"})
					return nil
				},
			},
			{
				Name:  "results",
				Usage: "list archived results",
				Action: func(cCtx *cli.Context) error {
					s := &shell{client: newClient(cCtx), out: out}
					s.exec([]string{"results"})
					return nil
				},
			},
		},
	}
}

func gameFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "game",
		Aliases: []string{"g"},
		Usage:   "resume an existing game id",
	}
}

func newClient(cCtx *cli.Context) *apiclient.Client {
	return apiclient.New(cCtx.String("api"), apiclient.WithTimeout(5*time.Second))
}

type shell struct {
	client *apiclient.Client
	game   *httpapi.GameView
	out    io.Writer
}

func (s *shell) run(in io.Reader) error {
	sc := bufio.NewScanner(in)
	fmt.Fprint(s.out, "> ")
	for sc.Scan() {
		if quit := s.exec(strings.Fields(sc.Text())); quit {
			return nil
		}
		fmt.Fprint(s.out, "> ")
	}
	return sc.Err()
}

func (s *shell) exec(args []string) bool {
	if len(args) == 0 {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cmd := strings.ToLower(args[0]); cmd {
	case "quit", "exit", "q":
		return true
	case "help":
		fmt.Fprintln(s.out, "commands: <row> <col> | show | new | reset | games | resume <id> | png <file> | results | quit")
	case "show":
		g, err := s.client.Game(ctx, s.game.ID)
		if s.report(err) {
			s.game = g
			s.print()
		}
	case "new":
		g, err := s.client.CreateGame(ctx)
		if s.report(err) {
			s.game = g
			s.print()
		}
	case "games":
		list, err := s.client.ListGames(ctx, 10)
		if s.report(err) {
			for _, g := range list {
				fmt.Fprintf(s.out, "%s  %-8s  %3d plies  %s\n", g.ID, g.Status, g.Plies, g.Message)
			}
		}
	case "resume":
		if len(args) != 2 {
			fmt.Fprintln(s.out, "usage: resume <id>")
			return false
		}
		g, err := s.client.Game(ctx, args[1])
		if s.report(err) {
			s.game = g
			s.print()
		}
	case "reset":
		g, err := s.client.Reset(ctx, s.game.ID)
		if s.report(err) {
			s.game = g
			s.print()
		}
	case "png":
		if len(args) != 2 {
			fmt.Fprintln(s.out, "usage: png <file>")
			return false
		}
		img, err := s.client.BoardPNG(ctx, s.game.ID)
		if s.report(err) && s.report(os.WriteFile(args[1], img, 0o644)) {
			fmt.Fprintf(s.out, "wrote %s (%d bytes)\n", args[1], len(img))
		}
	case "results":
		list, err := s.client.Results(ctx, 10)
		if s.report(err) {
			for _, r := range list {
				fmt.Fprintf(s.out, "%s #%d  %-5s  %3d plies  %s\n", r.GameID, r.Round, r.Winner, r.Plies, time.Duration(r.DurationMS)*time.Millisecond)
			}
		}
	default:
		row, col, ok := parseSquare(args)
		if !ok {
			fmt.Fprintln(s.out, "unknown command, try 'help'")
			return false
		}
		resp, err := s.client.Select(ctx, s.game.ID, row, col)
		if s.report(err) {
			s.game = &resp.Game
			s.print()
		}
	}
	return false
}

func (s *shell) report(err error) bool {
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return false
	}
	return true
}

// print draws the grid with offered squares as '*' and the selected piece in brackets.
func (s *shell) print() {
	g := s.game
	offered := make(map[checkers.Pos]bool, len(g.Offered))
	for _, p := range g.Offered {
		offered[p] = true
	}
	fmt.Fprintln(s.out, "    0  1  2  3  4  5  6  7")
	for r, line := range g.Rows {
		fmt.Fprintf(s.out, "%d ", r)
		for c := 0; c < len(line); c++ {
			cell := string(line[c])
			switch {
			case offered[checkers.Pos{Row: r, Col: c}]:
				cell = "*"
			case cell == "." && !checkers.Playable(r, c):
				cell = " "
			}
			if sel := g.Selected; sel != nil && sel.Row == r && sel.Col == c {
				fmt.Fprintf(s.out, "[%s]", cell)
			} else {
				fmt.Fprintf(s.out, " %s ", cell)
			}
		}
		fmt.Fprintln(s.out)
	}
	fmt.Fprintf(s.out, "game %s  white %d  red %d\n%s\n", g.ID, g.WhiteLeft, g.RedLeft, g.Message)
}

func parseSquare(args []string) (int, int, bool) {
	if len(args) != 2 {
		return 0, 0, false
	}
	row, err1 := strconv.Atoi(args[0])
	col, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return row, col, true
}
