package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/nstehr/vimy/vimy-macro/agent"
	"github.com/nstehr/vimy/vimy-macro/composition"
	"github.com/nstehr/vimy/vimy-macro/faction"
	"github.com/nstehr/vimy/vimy-macro/ipc"
	"github.com/nstehr/vimy/vimy-macro/journal"
)

const banner = `
██╗   ██╗██╗███╗   ███╗██╗   ██╗
██║   ██║██║████╗ ████║╚██╗ ██╔╝
██║   ██║██║██╔████╔██║ ╚████╔╝
╚██╗ ██╔╝██║██║╚██╔╝██║  ╚██╔╝
 ╚████╔╝ ██║██║ ╚═╝ ██║   ██║
  ╚═══╝  ╚═╝╚═╝     ╚═╝   ╚═╝

Data-Driven Macro Intelligence`

var (
	flagContent  string
	flagSocket   string
	flagWS       string
	flagJournal  string
	flagIndex    string
	flagStats    string
	flagSeed     int64
	flagStrict   bool
	flagCheck    bool
	flagLogLevel string
)

func init() {
	flag.StringVar(&flagContent, "content", "content", "content directory (factions/*.yaml, buildorders.yaml)")
	flag.StringVar(&flagSocket, "socket", "/tmp/vimy-macro.sock", "unix socket to listen on")
	flag.StringVar(&flagWS, "ws", "", "also serve the protocol over websocket at this address (e.g. :8090); empty disables it")
	flag.StringVar(&flagJournal, "journal", "", "directory for the decision journal; empty disables it")
	flag.StringVar(&flagIndex, "index", "", "sqlite file indexing journal entries for rule stats; empty disables it")
	flag.StringVar(&flagStats, "stats", "", "print rule stats for this faction from -index, then exit")
	flag.Int64Var(&flagSeed, "seed", 0, "random seed for sessions whose hello carries none (0 = now)")
	flag.BoolVar(&flagStrict, "strict", false, "fail on content lint errors instead of warning")
	flag.BoolVar(&flagCheck, "check", false, "load and lint content, then exit")
	flag.StringVar(&flagLogLevel, "log-level", "info", "debug, info, warn or error")
}

func main() {
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(flagLogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level %q: %v\n", flagLogLevel, err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if flagStats != "" {
		if err := printStats(flagIndex, flagStats); err != nil {
			slog.Error("failed to read rule stats", "index", flagIndex, "error", err)
			os.Exit(1)
		}
		return
	}

	content, err := faction.LoadDir(flagContent, faction.LoadOptions{Strict: flagStrict})
	if err != nil {
		slog.Error("failed to load content", "dir", flagContent, "error", err)
		os.Exit(1)
	}
	slog.Info("content loaded", "dir", flagContent, "factions", content.Registry.IDs())
	if flagCheck {
		return
	}

	fmt.Println(banner)

	slog.Info("starting vimy-macro")

	deps := agent.Deps{
		Registry:    content.Registry,
		BuildOrders: content.BuildOrders,
		Selector:    composition.NewSelector(content.Registry.CompositionTable()),
		Journal:     journal.Discard,
		Seed:        flagSeed,
	}
	var recorders []journal.Recorder
	if flagJournal != "" {
		j := journal.Open(flagJournal)
		defer func() {
			if err := j.Close(); err != nil {
				slog.Error("failed to close journal", "error", err)
			}
		}()
		recorders = append(recorders, j)
		slog.Info("journaling decisions", "dir", flagJournal)
	}
	if flagIndex != "" {
		idx, err := journal.OpenIndex(flagIndex)
		if err != nil {
			slog.Error("failed to open index", "path", flagIndex, "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := idx.Close(); err != nil {
				slog.Error("failed to close index", "error", err)
			}
		}()
		recorders = append(recorders, idx)
		slog.Info("indexing decisions", "path", flagIndex)
	}
	if len(recorders) > 0 {
		deps.Journal = journal.Tee(recorders...)
	}

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(flagSocket); err != nil {
		slog.Error("failed to clean up socket", "path", flagSocket, "error", err)
		os.Exit(1)
	}

	listener, err := net.Listen("unix", flagSocket)
	if err != nil {
		slog.Error("failed to listen on socket", "path", flagSocket, "error", err)
		os.Exit(1)
	}
	defer listener.Close()
	defer os.Remove(flagSocket)

	slog.Info("listening on domain socket", "path", flagSocket)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					slog.Error("failed to accept connection", "error", err)
					continue
				}
			}
			slog.Info("new connection accepted")
			go handleConn(ctx, ipc.Stream(conn), deps)
		}
	}()

	if flagWS != "" {
		mux := http.NewServeMux()
		mux.Handle("/ws", ipc.WebSocketHandler(func(t ipc.Transport) { handleConn(ctx, t, deps) }))
		srv := &http.Server{Addr: flagWS, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("websocket server failed", "addr", flagWS, "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		slog.Info("listening on websocket", "addr", flagWS, "path", "/ws")
	}

	<-ctx.Done()
	slog.Info("shutting down")
}

func handleConn(ctx context.Context, t ipc.Transport, deps agent.Deps) {
	a := agent.New(deps)
	c := ipc.NewConnection(t, a.Handlers())
	c.RegisterHandler(ipc.TypeHello, func(env ipc.Envelope) (*ipc.Envelope, error) {
		resp, err := a.HandleHello(env)
		if err == nil {
			c.Player = a.Player
		}
		return resp, err
	})
	c.ReadLoop(ctx)
}

func printStats(indexPath, factionID string) error {
	if indexPath == "" {
		return fmt.Errorf("-stats needs -index")
	}
	idx, err := journal.OpenIndex(indexPath)
	if err != nil {
		return err
	}
	defer idx.Close()

	stats, err := idx.RuleStats(context.Background(), factionID)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RULE\tDECISIONS\tOK\tFAILED")
	for _, st := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", st.RuleID, st.Decisions, st.Succeeded, st.Failed)
	}
	return tw.Flush()
}
