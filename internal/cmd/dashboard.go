package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show application counts by status",
	RunE:  runStats,
}

var interviewsCmd = &cobra.Command{
	Use:   "interviews",
	Short: "List upcoming interviews",
	RunE:  runInterviews,
}

func init() {
	rootCmd.AddCommand(statsCmd, interviewsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireAuth(cmd.Context()); err != nil {
		return err
	}

	stats, err := a.apps.Stats(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Total applications: %d\n", stats.Total)
	fmt.Printf("  Applied:      %d\n", stats.Applied)
	fmt.Printf("  Interviewing: %d\n", stats.Interviewing)
	fmt.Printf("  Assessment:   %d\n", stats.Assessment)
	fmt.Printf("  Ghosted:      %d\n", stats.Ghosted)
	return nil
}

func runInterviews(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireAuth(cmd.Context()); err != nil {
		return err
	}

	interviews, err := a.apps.UpcomingInterviews(cmd.Context())
	if err != nil {
		return err
	}
	if len(interviews) == 0 {
		fmt.Println("No upcoming interviews.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTIME\tCOMPANY\tPOSITION\tTYPE")
	for _, iv := range interviews {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", iv.Date, iv.Time, iv.Company, iv.Position, iv.Type)
	}
	return w.Flush()
}
