package stats

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/verte-zerg/tuimath/internal/model"
)

const terminalWidthBackup = 80

// TerminalWidth returns the current terminal width or a backup value when
// stdout is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// RenderSummary prints totals for the filtered sessions.
func RenderSummary(w io.Writer, report Report) error {
	if report.Totals.Sessions == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Sessions: %d\n", report.Totals.Sessions); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Problems solved: %d\n", report.Problems.Problems); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Best score: %d\n", report.Totals.BestScore); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg score: %.1f\n", report.Totals.AvgScore); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg pace: %.1f problems/min\n", report.Totals.AvgPerMinute); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg solve time: %.0f ms\n", report.AvgSolve); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg typos: %.2f per problem\n", report.AvgTypos); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderScoreCurve prints a moving-average score sparkline sized to the
// given width.
func RenderScoreCurve(w io.Writer, report Report, window, width int) error {
	if len(report.ScoreLine) < 2 {
		return nil
	}
	values := MovingAverage(report.ScoreLine, window)
	values = Resample(values, width)
	if _, err := fmt.Fprintln(w, "Score trend (oldest to newest)"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, Sparkline(values)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderLeaderboard prints ranked entries as a table.
func RenderLeaderboard(w io.Writer, entries []model.LeaderboardEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No eligible sessions yet. Play with the default settings to get ranked.")
		return err
	}
	headers := []string{"Rank", "Player", "Score", "Duration", "Played"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		player := e.Username
		if e.IsAnonymous {
			player += " *"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", e.Rank),
			player,
			fmt.Sprintf("%d", e.Score),
			fmt.Sprintf("%ds", e.DurationSec),
			e.StartedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	rightAlign := map[int]bool{0: true, 2: true, 3: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "* anonymous player")
	return err
}

// RenderHistory prints session summaries as a table, newest first.
func RenderHistory(w io.Writer, summaries []model.SessionSummary) error {
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	headers := []string{"ID", "Score", "Pace", "Settings", "Played"}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		settingsTag := "custom"
		if s.IsDefaultSettings {
			settingsTag = "default"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.ID),
			fmt.Sprintf("%d", s.Score),
			fmt.Sprintf("%.1f/min", SessionMetrics(s.Score, s.DurationSec)),
			settingsTag,
			s.StartedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	rightAlign := map[int]bool{0: true, 1: true, 2: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSessionDetail prints one session with its problem list.
func RenderSessionDetail(w io.Writer, session model.Session) error {
	player := session.Username
	if player == "" {
		player = session.AnonymousName
	}
	if _, err := fmt.Fprintf(w, "Session %d by %s\n", session.ID, player); err != nil {
		return err
	}
	ended := "unfinished"
	if session.EndedAt != nil {
		ended = session.EndedAt.Local().Format(time.RFC1123)
	}
	if _, err := fmt.Fprintf(w, "Score %d in %ds, started %s, ended %s\n\n",
		session.Score, session.DurationSec, session.StartedAt.Local().Format(time.RFC1123), ended); err != nil {
		return err
	}
	if len(session.Problems) == 0 {
		_, err := fmt.Fprintln(w, "No problems recorded.")
		return err
	}
	headers := []string{"#", "Question", "Answer", "Time", "Typos"}
	rows := make([][]string, 0, len(session.Problems))
	for i, p := range session.Problems {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			p.Question,
			fmt.Sprintf("%d", p.UserAnswer),
			fmt.Sprintf("%.1fs", float64(p.TimeSpentMs)/1000.0),
			fmt.Sprintf("%d", p.TypoCount),
		})
	}
	rightAlign := map[int]bool{0: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
