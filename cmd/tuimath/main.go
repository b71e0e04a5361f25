// Package main provides the CLI entrypoint for tuimath.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuimath/internal/auth"
	"github.com/verte-zerg/tuimath/internal/config"
	"github.com/verte-zerg/tuimath/internal/generator"
	"github.com/verte-zerg/tuimath/internal/model"
	"github.com/verte-zerg/tuimath/internal/session"
	"github.com/verte-zerg/tuimath/internal/stats"
	"github.com/verte-zerg/tuimath/internal/store"
	"github.com/verte-zerg/tuimath/internal/tui"
)

const (
	defaultLeaderboardSize = 10
	defaultHistoryLimit    = 20
	defaultCurveWindow     = 10
)

// drillFlags carries the per-command generation flags. Range flags use the
// "min:max" form.
type drillFlags struct {
	add  bool
	sub  bool
	mul  bool
	div  bool
	addA string
	addB string
	subA string
	subB string
	mulA string
	mulB string
	divA string
	divB string
}

var (
	playFlags     drillFlags
	settingsFlags drillFlags
	settingsSave  bool

	statsSince  string
	statsLast   int
	statsWindow int

	topN int

	sessionsPage  int
	sessionsLimit int

	loginUser string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuimath",
		Short:         "TUI mental-arithmetic trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}
	registerDrillFlags(rootCmd, &playFlags)

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newTopCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())

	return rootCmd
}

func registerDrillFlags(cmd *cobra.Command, flags *drillFlags) {
	defaults := model.DefaultSettings()
	cmd.Flags().BoolVar(&flags.add, "add", defaults.Addition.Enabled, "enable addition")
	cmd.Flags().BoolVar(&flags.sub, "sub", defaults.Subtraction.Enabled, "enable subtraction")
	cmd.Flags().BoolVar(&flags.mul, "mul", defaults.Multiplication.Enabled, "enable multiplication")
	cmd.Flags().BoolVar(&flags.div, "div", defaults.Division.Enabled, "enable division")
	cmd.Flags().StringVar(&flags.addA, "add-a", formatRange(defaults.Addition.A), "addition first operand range (min:max)")
	cmd.Flags().StringVar(&flags.addB, "add-b", formatRange(defaults.Addition.B), "addition second operand range (min:max)")
	cmd.Flags().StringVar(&flags.subA, "sub-a", formatRange(defaults.Subtraction.A), "subtraction first operand range (min:max)")
	cmd.Flags().StringVar(&flags.subB, "sub-b", formatRange(defaults.Subtraction.B), "subtraction second operand range (min:max)")
	cmd.Flags().StringVar(&flags.mulA, "mul-a", formatRange(defaults.Multiplication.A), "multiplication first factor range (min:max)")
	cmd.Flags().StringVar(&flags.mulB, "mul-b", formatRange(defaults.Multiplication.B), "multiplication second factor range (min:max)")
	cmd.Flags().StringVar(&flags.divA, "div-a", formatRange(defaults.Division.A), "division divisor range (min:max)")
	cmd.Flags().StringVar(&flags.divB, "div-b", formatRange(defaults.Division.B), "division quotient range (min:max)")
}

// resolveSettings layers stored settings, the TOML config, and changed CLI
// flags, in increasing precedence.
func resolveSettings(cmd *cobra.Command, flags *drillFlags, fileCfg config.FileConfig, stored model.Settings) (model.Settings, error) {
	settings := stored

	resolveBool(cmd, "add", flags.add, fileCfg.Play.Addition, &settings.Addition.Enabled)
	resolveBool(cmd, "sub", flags.sub, fileCfg.Play.Subtraction, &settings.Subtraction.Enabled)
	resolveBool(cmd, "mul", flags.mul, fileCfg.Play.Multiplication, &settings.Multiplication.Enabled)
	resolveBool(cmd, "div", flags.div, fileCfg.Play.Division, &settings.Division.Enabled)

	rangeFields := []struct {
		name    string
		flagVal string
		fileVal *string
		target  *model.Range
	}{
		{"add-a", flags.addA, fileCfg.Play.AdditionA, &settings.Addition.A},
		{"add-b", flags.addB, fileCfg.Play.AdditionB, &settings.Addition.B},
		{"sub-a", flags.subA, fileCfg.Play.SubtractionA, &settings.Subtraction.A},
		{"sub-b", flags.subB, fileCfg.Play.SubtractionB, &settings.Subtraction.B},
		{"mul-a", flags.mulA, fileCfg.Play.MultiplicationA, &settings.Multiplication.A},
		{"mul-b", flags.mulB, fileCfg.Play.MultiplicationB, &settings.Multiplication.B},
		{"div-a", flags.divA, fileCfg.Play.DivisionA, &settings.Division.A},
		{"div-b", flags.divB, fileCfg.Play.DivisionB, &settings.Division.B},
	}
	for _, field := range rangeFields {
		if err := resolveRange(cmd, field.name, field.flagVal, field.fileVal, field.target); err != nil {
			return model.Settings{}, err
		}
	}

	if err := settings.Validate(); err != nil {
		return model.Settings{}, err
	}
	return settings, nil
}

func resolveBool(cmd *cobra.Command, name string, flagVal bool, fileVal *bool, target *bool) {
	if cmd.Flags().Changed(name) {
		*target = flagVal
		return
	}
	if fileVal != nil {
		*target = *fileVal
	}
}

func resolveRange(cmd *cobra.Command, name string, flagVal string, fileVal *string, target *model.Range) error {
	value := ""
	switch {
	case cmd.Flags().Changed(name):
		value = flagVal
	case fileVal != nil:
		value = *fileVal
	default:
		return nil
	}
	parsed, err := parseRange(value)
	if err != nil {
		return fmt.Errorf("--%s: %w", name, err)
	}
	*target = parsed
	return nil
}

func parseRange(value string) (model.Range, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return model.Range{}, fmt.Errorf("range %q must be min:max", value)
	}
	minVal, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return model.Range{}, fmt.Errorf("range %q has a bad lower bound", value)
	}
	maxVal, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return model.Range{}, fmt.Errorf("range %q has a bad upper bound", value)
	}
	return model.Range{Min: minVal, Max: maxVal}, nil
}

func formatRange(r model.Range) string {
	return fmt.Sprintf("%d:%d", r.Min, r.Max)
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func currentUserID(ctx context.Context, st *store.Store) *int64 {
	user := auth.CurrentUser(ctx, st, config.DefaultCredentialsPath())
	if user == nil {
		return nil
	}
	return &user.ID
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	userID := currentUserID(ctx, st)
	stored := st.GetSettings(ctx, userID)

	settings, err := resolveSettings(cmd, &playFlags, fileCfg, stored)
	if err != nil {
		return err
	}
	if len(settings.Enabled()) == 0 {
		logErrln("no operations enabled; falling back to multiplication")
	}

	runner := session.NewRunner(settings, generator.New(), time.Now)
	uiModel := tui.NewModel(runner, st, userID)
	program := tea.NewProgram(uiModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
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
	path := config.DefaultConfigPath()
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

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or save generation settings",
		Args:  cobra.NoArgs,
		RunE:  runSettingsCmd,
	}
	registerDrillFlags(cmd, &settingsFlags)
	cmd.Flags().BoolVar(&settingsSave, "save", false, "persist the effective settings for the current profile")
	return cmd
}

func runSettingsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	userID := currentUserID(ctx, st)
	stored := st.GetSettings(ctx, userID)

	settings, err := resolveSettings(cmd, &settingsFlags, fileCfg, stored)
	if err != nil {
		return err
	}

	if settingsSave {
		if err := st.UpdateSettings(ctx, userID, settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		logErrln("Settings saved.")
	}
	printSettings(cmd, settings)
	return nil
}

func printSettings(cmd *cobra.Command, settings model.Settings) {
	out := cmd.OutOrStdout()
	rows := []struct {
		name string
		os   model.OperationSettings
	}{
		{"addition", settings.Addition},
		{"subtraction", settings.Subtraction},
		{"multiplication", settings.Multiplication},
		{"division", settings.Division},
	}
	for _, row := range rows {
		state := "off"
		if row.os.Enabled {
			state = "on"
		}
		fmt.Fprintf(out, "%-14s %-3s  %s × %s\n", row.name, state, formatRange(row.os.A), formatRange(row.os.B))
	}
	if settings.IsDefault() {
		fmt.Fprintln(out, "These are the default settings; sessions are leaderboard-eligible.")
	} else {
		fmt.Fprintln(out, "Custom settings; sessions will not appear on the leaderboard.")
	}
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats for your sessions",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsWindow, "window", defaultCurveWindow, "moving average window for the score trend")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	filter := model.HistoryFilter{
		UserID: currentUserID(ctx, st),
		Since:  sinceTime,
		Last:   statsLast,
	}
	report, err := stats.BuildReport(ctx, st, filter)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderScoreCurve(out, report, statsWindow, stats.TerminalWidth()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newTopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the leaderboard",
		Args:  cobra.NoArgs,
		RunE:  runTopCmd,
	}
	cmd.Flags().IntVar(&topN, "n", defaultLeaderboardSize, "number of entries")
	return cmd
}

func runTopCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	entries, err := st.TopSessions(context.Background(), topN)
	if err != nil {
		return fmt.Errorf("failed to load leaderboard: %w", err)
	}
	if err := stats.RenderLeaderboard(cmd.OutOrStdout(), stats.Rank(entries)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List session history",
		Args:  cobra.NoArgs,
		RunE:  runSessionsListCmd,
	}
	cmd.Flags().IntVar(&sessionsPage, "page", 1, "page number")
	cmd.Flags().IntVar(&sessionsLimit, "limit", defaultHistoryLimit, "sessions per page")
	cmd.AddCommand(newSessionsShowCmd())
	cmd.AddCommand(newSessionsDeleteCmd())
	return cmd
}

func runSessionsListCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	summaries, err := st.ListSessions(ctx, currentUserID(ctx, st), sessionsPage, sessionsLimit)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if err := stats.RenderHistory(cmd.OutOrStdout(), summaries); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newSessionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one session with its problems",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionsShowCmd,
	}
}

func runSessionsShowCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid session id %q", args[0])
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	sessionData, err := st.GetSession(context.Background(), id)
	if err != nil {
		return fmt.Errorf("failed to load session %d: %w", id, err)
	}
	if err := stats.RenderSessionDetail(cmd.OutOrStdout(), sessionData); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newSessionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionsDeleteCmd,
	}
}

func runSessionsDeleteCmd(_ *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid session id %q", args[0])
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.DeleteSession(context.Background(), id); err != nil {
		return fmt.Errorf("failed to delete session %d: %w", id, err)
	}
	logErrf("Deleted session %d\n", id)
	return nil
}

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Create or switch to a profile",
		Args:  cobra.NoArgs,
		RunE:  runLoginCmd,
	}
	cmd.Flags().StringVar(&loginUser, "user", "", "profile name")
	return cmd
}

func runLoginCmd(_ *cobra.Command, _ []string) error {
	name := strings.TrimSpace(loginUser)
	if name == "" {
		return fmt.Errorf("--user must not be empty")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	user, token, err := st.CreateUser(context.Background(), name)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	if err := auth.SaveToken(config.DefaultCredentialsPath(), token); err != nil {
		return err
	}
	logErrf("Logged in as %s\n", user.Username)
	return nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored profile credential",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := auth.ClearToken(config.DefaultCredentialsPath()); err != nil {
				return err
			}
			logErrln("Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current profile",
		Args:  cobra.NoArgs,
		RunE:  runWhoamiCmd,
	}
}

func runWhoamiCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	user := auth.CurrentUser(context.Background(), st, config.DefaultCredentialsPath())
	if user == nil {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), "anonymous"); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), user.Username); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	defaults := model.DefaultSettings()
	return fmt.Sprintf(`# tuimath configuration
# Uncomment a value to enable it. CLI flags override config values,
# and both override settings saved with "tuimath settings --save".
# Ranges are inclusive "min:max" intervals.

[play]
# add = true          # Enable addition
# sub = true          # Enable subtraction
# mul = true          # Enable multiplication
# div = true          # Enable division
# add-a = %q      # Addition first operand
# add-b = %q      # Addition second operand
# sub-a = %q      # Subtraction first operand
# sub-b = %q      # Subtraction second operand
# mul-a = %q       # Multiplication first factor
# mul-b = %q      # Multiplication second factor
# div-a = %q       # Division divisor
# div-b = %q      # Division quotient
`,
		formatRange(defaults.Addition.A),
		formatRange(defaults.Addition.B),
		formatRange(defaults.Subtraction.A),
		formatRange(defaults.Subtraction.B),
		formatRange(defaults.Multiplication.A),
		formatRange(defaults.Multiplication.B),
		formatRange(defaults.Division.A),
		formatRange(defaults.Division.B),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
