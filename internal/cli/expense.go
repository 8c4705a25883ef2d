package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"spendlog/internal/core"
)

var (
	addDate        string
	addCategory    string
	addAmount      string
	addDescription string
	listOrder      string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new expense",
	Example: `  spendlog add --date 2026-08-30 --category Food --amount 15.50 --description "lunch"
  spendlog add --date 2026-08-30 --category Bills --amount 120`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openService()
		if err != nil {
			return err
		}
		defer store.Close()

		created, err := store.Add(cmd.Context(), core.ExpenseInput{
			Date:        addDate,
			Category:    addCategory,
			Amount:      addAmount,
			Description: addDescription,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Recorded expense %d: %s %s %s\n",
			created.ID, created.Date, created.Category, created.Amount)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all expenses",
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := core.ParseListOrder(listOrder)
		if err != nil {
			return err
		}

		store, err := openService()
		if err != nil {
			return err
		}
		defer store.Close()

		expenses, err := store.List(cmd.Context(), order)
		if err != nil {
			return err
		}
		if len(expenses) == 0 {
			fmt.Println("No expenses recorded.")
			return nil
		}

		printExpenses(expenses)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a single expense",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return err
		}

		store, err := openService()
		if err != nil {
			return err
		}
		defer store.Close()

		expense, err := store.Get(cmd.Context(), id)
		if err != nil {
			return err
		}

		printExpenses([]core.Expense{expense})
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an expense",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return err
		}

		store, err := openService()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(cmd.Context(), id); err != nil {
			return err
		}

		fmt.Printf("Deleted expense %d\n", id)
		return nil
	},
}

func parseIDArg(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid expense id %q", raw)
	}
	return id, nil
}

func printExpenses(expenses []core.Expense) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tCATEGORY\tAMOUNT\tDESCRIPTION")
	for _, e := range expenses {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			e.ID, e.Date, e.Category, e.Amount, e.Description)
	}
	w.Flush()
}

func init() {
	addCmd.Flags().StringVar(&addDate, "date", "", "expense date (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&addCategory, "category", "", "expense category")
	addCmd.Flags().StringVar(&addAmount, "amount", "", "amount, e.g. 15.50")
	addCmd.Flags().StringVar(&addDescription, "description", "", "optional description")
	_ = addCmd.MarkFlagRequired("date")
	_ = addCmd.MarkFlagRequired("category")
	_ = addCmd.MarkFlagRequired("amount")

	listCmd.Flags().StringVar(&listOrder, "order", "", "sort order: id (default) or date")

	rootCmd.AddCommand(addCmd, listCmd, getCmd, deleteCmd)
}
