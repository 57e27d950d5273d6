package hrmscli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func runDashboard(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var api apiFlags
	api.register(fs)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	client, logger, err := api.client()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	summary, err := client.Dashboard.Get(ctx)
	if err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(stdout, "Employees: %d  Present today: %d  Absent today: %d\n",
		summary.TotalEmployees, summary.TotalPresentToday, summary.TotalAbsentToday)
	if len(summary.EmployeesSummary) == 0 {
		fmt.Fprintln(stdout, "No employees yet.")
		return nil
	}

	fmt.Fprintln(stdout)
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDEPARTMENT\tPRESENT\tABSENT\tRATE")
	for _, row := range summary.EmployeesSummary {
		rate := "—"
		if pct, ok := row.Rate(); ok {
			rate = fmt.Sprintf("%d%%", pct)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			row.EmployeeID, row.FullName, row.Department, row.TotalPresent, row.TotalAbsent, rate)
	}
	return tw.Flush()
}
