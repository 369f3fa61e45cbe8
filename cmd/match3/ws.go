package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-match3/internal/config"
	"github.com/vovakirdan/tui-match3/internal/games/match3"
	"github.com/vovakirdan/tui-match3/internal/games/match3/levels"
	"github.com/vovakirdan/tui-match3/internal/storage"
	"github.com/vovakirdan/tui-match3/internal/transport/ws"
)

var (
	flagWSAddr string
	flagWSMode string
)

var wsCmd = &cobra.Command{
	Use:   "ws",
	Short: "Start the websocket server for shared boards",
	Long: `Start an HTTP server that serves match-3 boards over websockets.

Clients connect to /ws, optionally naming a session with ?session=<id>
and seeding a new board with ?seed=<n>. Every client of a session shares
one board and receives the events of every swap.

Messages are JSON objects:
  {"type":"swap","a":{"x":0,"y":0},"b":{"x":1,"y":0}}
  {"type":"state"}
  {"type":"hint"}
  {"type":"new","seed":42}

Examples:
  match3 ws                          # Listen on :8080
  match3 ws --addr :9000 --mode strict
  match3 ws --level cascade
  match3 ws --no-journal`,
	Args: cobra.NoArgs,
	RunE: runWS,
}

func init() {
	wsCmd.Flags().StringVar(&flagWSAddr, "addr", ":8080", "HTTP listen address (host:port)")
	wsCmd.Flags().StringVar(&flagWSMode, "mode", string(match3.ModeClassic), "Mode: classic, strict, deplete")
	wsCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom match-3 config YAML")
	wsCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	wsCmd.Flags().StringVar(&flagLevel, "level", "", "Preset board ID for every new session")
	wsCmd.Flags().BoolVar(&flagNoJournal, "no-journal", false, "Disable the session journal")
}

func runWS(_ *cobra.Command, _ []string) error {
	mode, ok := match3.ParseMode(flagWSMode)
	if !ok {
		return fmt.Errorf("unknown mode %q", flagWSMode)
	}

	m3cfg, err := config.LoadMatch3(flagConfig)
	if err != nil {
		return err
	}
	if flagDifficulty != "" {
		config.ApplyMatch3Preset(&m3cfg, config.DifficultyPreset(flagDifficulty))
	}

	cfg := ws.Config{
		Match3: m3cfg,
		Mode:   mode,
		Logger: logger.WithPrefix("match3-ws"),
	}

	if flagLevel != "" {
		lvl, err := levels.DefaultLoader().LoadByID(flagLevel)
		if err != nil {
			return err
		}
		cfg.Level = &lvl
	}

	if !flagNoJournal {
		store, err := storage.Open(flagDBPath)
		if err != nil {
			logger.Warn("journal disabled", "path", flagDBPath, "error", err)
		} else {
			defer store.Close()
			cfg.Journal = store
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Starting match-3 websocket server on %s\n", flagWSAddr)
	fmt.Printf("Connect to: ws://localhost:%s/ws\n", port(flagWSAddr))
	fmt.Println("Press Ctrl+C to stop")

	return ws.NewServer(cfg).ListenAndServe(ctx, flagWSAddr)
}

// port returns the port part of a listen address.
func port(addr string) string {
	if _, p, err := net.SplitHostPort(addr); err == nil {
		return p
	}
	return addr
}
