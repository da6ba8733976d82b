package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"

	"github.com/trezcool/masomo-reports/core"
	"github.com/trezcool/masomo-reports/core/report"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp     = errors.New("help provided")
	errNoDB     = errors.New("this command needs the postgres database engine")
	errTerminal = errors.New("refusing to write a binary report to a terminal, use -out FILE")
)

const defaultPreviewLimit = 20

type commandLine struct {
	conf     *core.Config
	db       *sqlx.DB // nil unless the database engine is postgres
	repo     report.Repository
	renderer *report.Renderer
	stdout   io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.stdout, "Usage:")
	fmt.Fprintln(cli.stdout, "  migrate COMMAND [ARGS] - run database migrations (up, up-by-one, up-to, down, down-to, redo, status, version)")
	fmt.Fprintln(cli.stdout, "  seed -dir DIR - load <collection>.json fixtures into the database")
	fmt.Fprintln(cli.stdout, "  export -type TYPE [-format pdf|csv] [-out FILE|-] [-data FILE] - render a report")
	fmt.Fprintln(cli.stdout, "  slip -student ID [-out FILE|-] - render a student's result slip")
	fmt.Fprintln(cli.stdout, "  preview -type TYPE [-limit N] [-data FILE] - print the first records of a report as a table")
	fmt.Fprintln(cli.stdout, "Report types: "+kindList())
}

func kindList() string {
	names := make([]string, 0, len(report.Kinds))
	for _, k := range report.Kinds {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	seedCmd := flag.NewFlagSet("seed", flag.ContinueOnError)
	seedDir := seedCmd.String("dir", cli.conf.Database.FixturesDir, "The directory holding <collection>.json files.")

	exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
	exportType := exportCmd.String("type", "", "The report type: "+kindList()+".")
	exportFormat := exportCmd.String("format", "pdf", "The output format: pdf or csv.")
	exportOut := exportCmd.String("out", "", "The output file, - for stdout. Defaults to TYPE.FORMAT.")
	exportData := exportCmd.String("data", "", "Render the JSON array of records in this file instead of querying the store.")

	slipCmd := flag.NewFlagSet("slip", flag.ContinueOnError)
	slipStudent := slipCmd.String("student", "", "The student's id.")
	slipOut := slipCmd.String("out", "", "The output file, - for stdout. Defaults to the download name.")

	previewCmd := flag.NewFlagSet("preview", flag.ContinueOnError)
	previewType := previewCmd.String("type", "", "The report type: "+kindList()+".")
	previewLimit := previewCmd.Int("limit", defaultPreviewLimit, "The number of records to show.")
	previewData := previewCmd.String("data", "", "Preview the JSON array of records in this file instead of querying the store.")

	ctx := context.Background()

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.seed(ctx, *seedDir)
	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *exportType == "" && *exportData == "" {
			exportCmd.Usage()
			return errHelp
		}
		return cli.export(ctx, *exportType, report.ParseFormat(*exportFormat), *exportOut, *exportData)
	case "slip":
		if err := slipCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *slipStudent == "" {
			slipCmd.Usage()
			return errHelp
		}
		return cli.slip(ctx, *slipStudent, *slipOut)
	case "preview":
		if err := previewCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if (*previewType == "" && *previewData == "") || *previewLimit <= 0 {
			previewCmd.Usage()
			return errHelp
		}
		return cli.preview(ctx, *previewType, *previewLimit, *previewData)
	default:
		cli.printUsage()
		return errHelp
	}
}

// loadRecords returns the records of a report, read from dataFile when given.
// The report name defaults to the data file's base name.
func (cli *commandLine) loadRecords(ctx context.Context, name, dataFile string) (string, []report.Record, error) {
	if dataFile == "" {
		kind, err := report.ParseKind(name)
		if err != nil {
			return "", nil, err
		}
		records, err := cli.repo.QueryRecords(ctx, kind)
		return string(kind), records, err
	}

	f, err := os.Open(dataFile)
	if err != nil {
		return "", nil, err
	}
	defer func() { _ = f.Close() }()

	records, err := report.DecodeRecords(f)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", dataFile, err)
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(dataFile), filepath.Ext(dataFile))
	}
	return name, records, nil
}

// output opens where a download goes: path, or stdout for "-".
func (cli *commandLine) output(path string) (*download, error) {
	if path != "-" {
		return newFileDownload(path), nil
	}
	if f, ok := cli.stdout.(*os.File); ok && isTerminalFunc(int(f.Fd())) {
		return nil, errTerminal
	}
	return newDownload(cli.stdout), nil
}

func (cli *commandLine) export(ctx context.Context, name string, format report.Format, out, dataFile string) error {
	name, records, err := cli.loadRecords(ctx, name, dataFile)
	if err != nil {
		return err
	}
	if out == "" {
		out = name + "." + format.Ext()
	}
	dl, err := cli.output(out)
	if err != nil {
		return err
	}

	err = cli.renderer.Render(dl, name, records, format)
	if cerr := dl.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if out != "-" {
		fmt.Fprintf(cli.stdout, "%s: %d records written to %s (%d bytes)\n", name, len(records), out, dl.written)
	}
	return nil
}

func (cli *commandLine) slip(ctx context.Context, studentID, out string) error {
	student, err := cli.repo.GetStudent(ctx, studentID)
	if err != nil {
		return err
	}
	results, err := cli.repo.QueryStudentResults(ctx, studentID)
	if err != nil {
		return err
	}
	if out == "" {
		out = report.SlipFilename(student) + ".pdf"
	}
	dl, err := cli.output(out)
	if err != nil {
		return err
	}

	err = cli.renderer.RenderResultSlip(dl, student, results)
	if cerr := dl.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if out != "-" {
		fmt.Fprintf(cli.stdout, "result slip written to %s (%d bytes)\n", out, dl.written)
	}
	return nil
}

// preview prints the first records the way the PDF report lays them out: same columns, same labels.
func (cli *commandLine) preview(ctx context.Context, name string, limit int, dataFile string) error {
	name, records, err := cli.loadRecords(ctx, name, dataFile)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return report.ErrNoData
	}
	columns := report.InferColumns(records)
	if len(columns) == 0 {
		return report.ErrNoData
	}

	labels := make([]string, len(columns))
	for i, col := range columns {
		labels[i] = col.Label
	}
	table := tablewriter.NewWriter(cli.stdout)
	table.Header(labels)

	shown := records
	if len(shown) > limit {
		shown = shown[:limit]
	}
	for _, rec := range shown {
		row := make([]string, len(columns))
		for i, col := range columns {
			v, _ := rec.Get(col.Key)
			row[i] = report.FormatValue(v)
		}
		if err = table.Append(row); err != nil {
			return err
		}
	}
	if err = table.Render(); err != nil {
		return err
	}

	plan, _ := report.PlanPage(columns, report.DefaultPage)
	fmt.Fprintf(cli.stdout, "%s: %d of %d records, %d columns, %s\n", report.Title(name), len(shown), len(records), len(columns), plan.Orientation)
	return nil
}
