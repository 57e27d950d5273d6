package hrmscli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/phillip-england/hrms/internal/forms"
	"github.com/phillip-england/hrms/internal/roster"
	"github.com/phillip-england/hrms/internal/sheets"
	"go.uber.org/zap"
)

func runExport(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: hrms export employees|attendance --out <file.xlsx>", ErrUsage)
	}
	target := args[0]

	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var api apiFlags
	api.register(fs)
	out := fs.String("out", "", "output .xlsx path")
	date := fs.String("date", "", "only records on this date (attendance)")
	employee := fs.String("employee", "", "only records of this employee ID (attendance)")
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if *out == "" {
		return errors.New("--out is required")
	}

	client, logger, err := api.client()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var (
		rows  int
		write func(io.Writer) error
	)
	switch target {
	case "employees":
		list, err := client.Employees.List(ctx)
		if err != nil {
			return err
		}
		rows = len(list.Employees)
		write = func(w io.Writer) error { return sheets.WriteEmployees(w, list.Employees) }
	case "attendance":
		list, err := client.Attendance.List(ctx, *date)
		if err != nil {
			return err
		}
		records := list.Records
		if *employee != "" {
			records = nil
			for _, rec := range list.Records {
				if rec.EmployeeStringID == *employee {
					records = append(records, rec)
				}
			}
		}
		rows = len(records)
		write = func(w io.Writer) error { return sheets.WriteAttendance(w, records) }
	default:
		return fmt.Errorf("%w: unknown export target %q", ErrUsage, target)
	}

	file, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	logger.Info("export written", zap.String("target", target), zap.String("path", *out), zap.Int("rows", rows))
	fmt.Fprintf(stdout, "wrote %d rows to %s\n", rows, *out)
	return nil
}

func runImport(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) < 1 || args[0] != "employees" {
		return fmt.Errorf("%w: hrms import employees --file <roster.xlsx>", ErrUsage)
	}

	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var api apiFlags
	api.register(fs)
	path := fs.String("file", "", "roster .xlsx or .xls file")
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if *path == "" {
		return errors.New("--file is required")
	}

	file, err := os.Open(*path)
	if err != nil {
		return fmt.Errorf("open %s: %w", *path, err)
	}
	defer file.Close()

	rows, err := sheets.ReadRows(file, *path)
	if err != nil {
		return err
	}
	parsed, err := sheets.ParseRoster(rows)
	if err != nil {
		return err
	}

	client, logger, err := api.client()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	result := roster.NewImporter(client, forms.New(nil)).Import(ctx, parsed)
	for _, failure := range result.Failures {
		fmt.Fprintln(stdout, failure.String())
	}
	fmt.Fprintln(stdout, result.Summary())
	return nil
}
