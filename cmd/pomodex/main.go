// Package main provides the CLI entrypoint for pomodex.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/verte-zerg/pomodex/internal/api"
	"github.com/verte-zerg/pomodex/internal/config"
	"github.com/verte-zerg/pomodex/internal/dexui"
	"github.com/verte-zerg/pomodex/internal/logging"
	"github.com/verte-zerg/pomodex/internal/model"
	"github.com/verte-zerg/pomodex/internal/roster"
	"github.com/verte-zerg/pomodex/internal/sprites"
	"github.com/verte-zerg/pomodex/internal/stats"
	"github.com/verte-zerg/pomodex/internal/tui"
)

var (
	configPath string

	battleMinutes     int
	battleRevealDelay time.Duration

	dexSearch string

	statsJSON bool

	serveAddr string

	spritesOut         string
	spritesForce       bool
	spritesConcurrency int
)

var bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFCC00"))

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pomodex",
		Short:         "Focus timer that turns sessions into Pokemon battles",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runBattleCmd,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")
	rootCmd.Flags().IntVar(&battleMinutes, "minutes", model.DefaultDurationMinutes, "session length in minutes (5-60, step 5)")
	rootCmd.Flags().DurationVar(&battleRevealDelay, "reveal-delay", config.DefaultRevealDelay, "pause before a caught Pokemon is replaced")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDexCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newRerollCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSpritesCmd())

	return rootCmd
}

func loadSettings() (config.Settings, error) {
	s, err := config.Load(configPath, nil)
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	return s, nil
}

// openAll loads settings, a file logger and the backend. The returned
// cleanup closes them in reverse order.
func openAll(ctx context.Context, logPath func(config.Settings) string) (config.Settings, *zap.Logger, *backend, func(), error) {
	s, err := loadSettings()
	if err != nil {
		return config.Settings{}, nil, nil, nil, err
	}
	logger, err := logging.New(s.LogLevel, logPath(s))
	if err != nil {
		return config.Settings{}, nil, nil, nil, err
	}
	b, err := openBackend(ctx, s, logger)
	if err != nil {
		logging.Sync(logger)
		return config.Settings{}, nil, nil, nil, err
	}
	cleanup := func() {
		b.close(logger)
		logging.Sync(logger)
	}
	return s, logger, b, cleanup, nil
}

func fileLog(s config.Settings) string { return s.LogPath }

func stderrLog(config.Settings) string { return "" }

func runBattleCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	s, logger, b, cleanup, err := openAll(ctx, fileLog)
	if err != nil {
		return err
	}
	defer cleanup()

	applyIntConfig(cmd, "minutes", &battleMinutes, &s.FocusMinutes)
	applyDurationConfig(cmd, "reveal-delay", &battleRevealDelay, &s.RevealDelay)
	if battleRevealDelay < 0 {
		return fmt.Errorf("--reveal-delay must be >= 0")
	}
	if err := b.seedDuration(ctx, model.ClampDuration(battleMinutes)); err != nil {
		logger.Warn("failed to seed session length", zap.Error(err))
	}

	d := tui.NewDispatcher()
	orch := b.orchestrator(logger, battleRevealDelay, d.Send)
	orch.Start(ctx)
	if cmd.Flags().Changed("minutes") {
		orch.SetDuration(ctx, battleMinutes)
	}
	defer orch.Cancel()

	logger.Info("battle started",
		zap.String("trainer", b.trainer),
		zap.Int("creature", int(orch.Creature())),
		zap.Int("minutes", orch.Session().Config.DurationMinutes),
	)
	program := tea.NewProgram(tui.NewModel(orch, d, logger), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newDexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dex",
		Short: "Browse the Pokedex",
		Args:  cobra.NoArgs,
		RunE:  runDexCmd,
	}
	cmd.Flags().StringVar(&dexSearch, "search", "", "name prefix or number to filter by")
	return cmd
}

func runDexCmd(_ *cobra.Command, _ []string) error {
	_, _, b, cleanup, err := openAll(context.Background(), fileLog)
	if err != nil {
		return err
	}
	defer cleanup()

	program := tea.NewProgram(dexui.NewModel(b.collection, dexSearch), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run Pokedex TUI: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the trainer card and focus history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().BoolVar(&statsJSON, "json", false, "print the trainer card as JSON")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	_, _, b, cleanup, err := openAll(ctx, fileLog)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := stats.BuildReport(ctx, b.collection, time.Now())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if statsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report.Card); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	var buf bytes.Buffer
	if err := report.Render(&buf); err != nil {
		return fmt.Errorf("failed to render stats: %w", err)
	}
	if isTerminal(os.Stdout) {
		if _, err := fmt.Fprintln(out, bannerStyle.Render("Pomodex")); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if _, err := out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newRerollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reroll",
		Short: "Swap the current Pokemon for a new one (5 per day)",
		Args:  cobra.NoArgs,
		RunE:  runRerollCmd,
	}
}

func runRerollCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	_, logger, b, cleanup, err := openAll(ctx, fileLog)
	if err != nil {
		return err
	}
	defer cleanup()

	orch := b.orchestrator(logger, 0, nil)
	orch.Start(ctx)
	n, rerr := orch.Reroll(ctx)
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), n.String()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if errors.Is(rerr, model.ErrRateLimited) {
		return rerr
	}
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Pokedex over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", config.DefaultServerAddr, "listen address")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, logger, b, cleanup, err := openAll(ctx, stderrLog)
	if err != nil {
		return err
	}
	defer cleanup()
	applyStringConfig(cmd, "addr", &serveAddr, &s.ServerAddr)

	srv := api.New(serveAddr, api.Deps{
		Source:    b.collection,
		Checks:    b.checks,
		SpriteDir: s.SpriteDir,
		Logger:    logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})
	return g.Wait()
}

func newSpritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sprites",
		Short: "Download Pokemon sprites",
		Args:  cobra.NoArgs,
		RunE:  runSpritesCmd,
	}
	cmd.Flags().StringVar(&spritesOut, "out", "", "output directory (default: data dir)")
	cmd.Flags().BoolVar(&spritesForce, "force", false, "re-download existing sprites")
	cmd.Flags().IntVar(&spritesConcurrency, "concurrency", sprites.DefaultConcurrency, "parallel downloads")
	return cmd
}

func runSpritesCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := loadSettings()
	if err != nil {
		return err
	}
	logger, err := logging.New(s.LogLevel, "")
	if err != nil {
		return err
	}
	defer logging.Sync(logger)
	applyStringConfig(cmd, "out", &spritesOut, &s.SpriteDir)
	if spritesConcurrency <= 0 {
		return fmt.Errorf("--concurrency must be > 0")
	}

	logErrf("Downloading %d sprites to %s...\n", model.RosterSize, spritesOut)
	f := sprites.New(spritesOut,
		sprites.WithForce(spritesForce),
		sprites.WithConcurrency(spritesConcurrency),
		sprites.WithLogger(logger),
	)
	res, err := f.Fetch(ctx, roster.All())
	logErrf("Downloaded %d, skipped %d, failed %d\n", res.Downloaded, res.Skipped, len(res.Failed))
	if err != nil {
		return err
	}
	if len(res.Failed) > 0 {
		return fmt.Errorf("failed to download %d sprites", len(res.Failed))
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target, value *time.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# pomodex configuration
# Uncomment a value to enable it. CLI flags and POMODEX_* variables override config values.

[focus]
# minutes = %d              # Session length for a new trainer (5-60, step 5)
# reveal-delay = %q        # Pause before a caught Pokemon is replaced

[store]
# backend = %q          # "sqlite" or "redis"
# path = %q
# redis-addr = %q
# redis-password = ""
# redis-db = 0

[server]
# addr = %q

[log]
# level = %q              # debug, info, warn, error
# path = %q

[sprites]
# dir = %q
`,
		model.DefaultDurationMinutes,
		config.DefaultRevealDelay.String(),
		config.BackendSQLite,
		config.DefaultDBPath(),
		config.DefaultRedisAddr,
		config.DefaultServerAddr,
		config.DefaultLogLevel,
		config.DefaultLogPath(),
		config.DefaultSpriteDir(),
	)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
