package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/devteam/internal/state"
)

var (
	historyLimit     int
	historyStatus    string
	historyJSON      bool
	historyShowCode  bool
	historyOlderThan time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded sessions",
	Long: `List sessions recorded in the history database, newest first.

Sessions whose process died before they finished are shown as abandoned.`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show the tasks and team chat of a session",
	Long:  `Show a recorded session. The ID may be abbreviated to any unique prefix.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old sessions",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of sessions to list (0 for all)")
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "Only list sessions with this status")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print as JSON")

	historyShowCmd.Flags().BoolVar(&historyShowCode, "code", false, "Include generated code")
	historyShowCmd.Flags().BoolVar(&historyJSON, "json", false, "Print as JSON")

	historyPruneCmd.Flags().DurationVar(&historyOlderThan, "older-than", 30*24*time.Hour, "Delete sessions started longer ago than this")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyPruneCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	db, err := openHistoryDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var status *state.SessionStatus
	if historyStatus != "" {
		s := state.SessionStatus(historyStatus)
		status = &s
	}

	sessions, err := db.ListSessions(status, historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if historyJSON {
		return writeJSON(out, sessions)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions recorded. Run 'devteam run <idea>' to start.")
		return nil
	}
	printSessions(out, sessions)
	return nil
}

func printSessions(out io.Writer, sessions []state.Session) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tPROVIDER\tIDEA")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			shortID(s.ID),
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			s.Status,
			s.Provider,
			truncateLine(s.Idea, 60))
	}
	w.Flush()
}

// sessionDetail is the JSON shape of 'history show'.
type sessionDetail struct {
	Session  *state.Session        `json:"session"`
	Tasks    []state.TaskRecord    `json:"tasks"`
	Messages []state.MessageRecord `json:"messages"`
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	db, err := openHistoryDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	session, err := db.FindSession(args[0])
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("no session matches %q", args[0])
	}

	tasks, err := db.ListTasks(session.ID)
	if err != nil {
		return err
	}
	messages, err := db.ListMessages(session.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if historyJSON {
		if !historyShowCode {
			for i := range tasks {
				tasks[i].Code = ""
			}
		}
		return writeJSON(out, sessionDetail{Session: session, Tasks: tasks, Messages: messages})
	}

	bold := color.New(color.Bold)
	fmt.Fprintf(out, "%s %s\n", bold.Sprint("Session"), session.ID)
	fmt.Fprintf(out, "Idea:     %s\n", session.Idea)
	fmt.Fprintf(out, "Provider: %s\n", session.Provider)
	fmt.Fprintf(out, "Started:  %s\n", session.StartedAt.Local().Format(time.RFC1123))
	fmt.Fprintf(out, "Status:   %s\n", session.Status)
	if session.CompletedAt != nil {
		fmt.Fprintf(out, "Ended:    %s\n", session.CompletedAt.Local().Format(time.RFC1123))
	}

	fmt.Fprintf(out, "\n%s\n", bold.Sprint("Tasks"))
	for _, t := range tasks {
		fmt.Fprintf(out, "%2d. %-8s %s (%s)\n", t.Position+1, t.Status, t.Description, t.Assignee)
		if t.TestResults != "" {
			fmt.Fprintf(out, "    tests: %s\n", truncateLine(t.TestResults, 100))
		}
		if historyShowCode && t.Code != "" {
			fmt.Fprintf(out, "%s\n", t.Code)
		}
	}

	fmt.Fprintf(out, "\n%s\n", bold.Sprint("Team Chat"))
	printer := newEventPrinter(out, false)
	for _, m := range messages {
		fmt.Fprintf(out, "%s %s %s\n",
			color.HiBlackString(m.CreatedAt.Local().Format("15:04:05")),
			printer.agentColor(m.Agent).Sprintf("[%s]", m.Agent),
			m.Message)
	}
	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	if historyOlderThan <= 0 {
		return fmt.Errorf("--older-than must be positive")
	}

	db, err := openHistoryDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.PurgeOldSessions(historyOlderThan)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d sessions.\n", n)
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncateLine keeps the first line of s, cut to n runes.
func truncateLine(s string, n int) string {
	for i, r := range s {
		if r == '\n' {
			s = s[:i]
			break
		}
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
