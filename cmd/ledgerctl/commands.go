package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/sarrafbook/ledger/internal/csvparse"
	"github.com/sarrafbook/ledger/internal/jalali"
	"github.com/sarrafbook/ledger/internal/numerals"
	"github.com/sarrafbook/ledger/internal/reconcile"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func newRootCmd() *cobra.Command {
	var timezone string

	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Helpers for the currency-trade ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loc, err := time.LoadLocation(timezone)
			if err != nil {
				return fmt.Errorf("unknown time zone %q: %w", timezone, err)
			}
			jalali.SetLocation(loc)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&timezone, "tz", "Asia/Tehran", "time zone that decides today's date")

	root.AddCommand(
		newReconcileCmd(),
		newDateCmd(),
		newNumberCmd(),
		newCalendarCmd(),
		newCheckCmd(),
		newVersionCmd(),
	)
	return root
}

func newReconcileCmd() *cobra.Command {
	var amount, rate, total string
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Derive the missing one of amount, rate and total",
		Example: `  ledgerctl reconcile --amount 100 --rate 58000
  ledgerctl reconcile --amount ۱۰ --total ۶۵۰٬۰۰۰`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := reconcile.Reconcile(amount, rate, total)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "amount: %s\n", f.Amount)
			fmt.Fprintf(out, "rate:   %s\n", f.Rate)
			fmt.Fprintf(out, "total:  %s\n", f.Total)
			if f.Derived != "" {
				fmt.Fprintf(out, "derived: %s\n", f.Derived)
			}
			if f.Mismatch() {
				return errors.New("amount × rate does not equal total")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "quantity of foreign currency")
	cmd.Flags().StringVar(&rate, "rate", "", "price per unit")
	cmd.Flags().StringVar(&total, "total", "", "total value")
	return cmd
}

func newDateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "date [jalali-date...]",
		Short: "Normalize Jalali dates, or print today's date",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				fmt.Fprintln(out, jalali.Today())
				return nil
			}
			for _, a := range args {
				d, err := jalali.ParseStrict(a)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%s\n", d, weekdayName(d))
			}
			return nil
		},
	}
	return cmd
}

var weekdayNames = [7]string{"شنبه", "یکشنبه", "دوشنبه", "سه‌شنبه", "چهارشنبه", "پنجشنبه", "جمعه"}

func weekdayName(d jalali.Date) string {
	return weekdayNames[jalali.Weekday(d)]
}

func newNumberCmd() *cobra.Command {
	var persian bool
	cmd := &cobra.Command{
		Use:   "number <value...>",
		Short: "Parse numbers typed in any digit script",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, a := range args {
				d, ok := reconcile.Parse(a)
				if !ok {
					return fmt.Errorf("not a number: %q", a)
				}
				if persian {
					fmt.Fprintln(out, numerals.FormatQuantity(d))
				} else {
					fmt.Fprintln(out, d.String())
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&persian, "fa", false, "print in the fa-IR display format")
	return cmd
}

func newCalendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar [YYYY/MM]",
		Short: "Print a Saturday-first month calendar",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			month := jalali.TodayDate()
			if len(args) == 1 {
				d, err := jalali.ParseStrict(strings.TrimSuffix(args[0], "/") + "/01")
				if err != nil {
					return err
				}
				month = d
			}
			printMonth(cmd.OutOrStdout(), month)
			return nil
		},
	}
	return cmd
}

func printMonth(w io.Writer, month jalali.Date) {
	fmt.Fprintln(w, jalali.MonthTitle(month))
	header := make([]string, 0, 7)
	for _, l := range jalali.WeekdayLabels {
		header = append(header, fmt.Sprintf("%3s", l))
	}
	fmt.Fprintln(w, strings.Join(header, " "))

	var line []string
	for _, c := range jalali.MonthGrid(month) {
		cell := "   "
		if !c.Blank {
			cell = fmt.Sprintf("%3d", c.Date.Day)
			if jalali.IsToday(c.Date) {
				cell = fmt.Sprintf("*%2d", c.Date.Day)
			}
		}
		line = append(line, cell)
		if len(line) == 7 {
			fmt.Fprintln(w, strings.Join(line, " "))
			line = line[:0]
		}
	}
	if len(line) > 0 {
		fmt.Fprintln(w, strings.Join(line, " "))
	}
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file.csv>",
		Short: "Validate an import file without uploading it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			txs, problems := csvparse.ParseCSV(string(data))

			out := cmd.OutOrStdout()
			total := decimal.Zero
			for _, t := range txs {
				total = total.Add(t.TotalValue)
			}
			fmt.Fprintf(out, "%d valid rows, total %s\n", len(txs), numerals.FormatAmount(total))
			for _, p := range problems {
				fmt.Fprintln(out, p)
			}
			if len(problems) > 0 {
				return fmt.Errorf("%d rows rejected", len(problems))
			}
			return nil
		},
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ledgerctl %s (%s)\n", Version, runtime.Version())
		},
	}
}
