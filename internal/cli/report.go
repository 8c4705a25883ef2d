package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"spendlog/internal/core"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show aggregate statistics over all expenses",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openService()
		if err != nil {
			return err
		}
		defer store.Close()

		insights, err := store.Insights(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Average spending:     %s\n", insights.AverageSpending)
		fmt.Printf("Highest expense:      %s\n", insights.HighestExpense)
		fmt.Printf("Most common category: %s (%d expenses)\n",
			insights.MostCommonCategory, insights.CategoryCount)
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show per-date spending totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openService()
		if err != nil {
			return err
		}
		defer store.Close()

		summaries, err := store.Summaries(cmd.Context())
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("No expenses recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tTOTAL")
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%s\n", s.Date, s.Total)
		}
		w.Flush()
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the available expense categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, c := range core.CategoryNames() {
			fmt.Println(c)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd, summaryCmd, categoriesCmd)
}
