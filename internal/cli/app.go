package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"railists/internal/config"
	"railists/internal/core"
	"railists/internal/datasource"
	"railists/internal/log"
	"railists/internal/render"
	"railists/internal/report"
	"railists/internal/services"
)

// ErrUsage is returned for unknown commands and bad flags; the usage text
// has already been written to stderr.
var ErrUsage = errors.New("usage")

const usage = `Usage:
  railists collection (c) list|l    [-f FILE]
  railists collection     csv|c     [-f FILE] [-o OUT.csv]
  railists collection     stats|s   [-f FILE]
  railists collection     depot|d   [-f FILE]
  railists collection     export|e  [-f FILE] -o OUT.xlsx|OUT.csv|OUT.pdf|OUT.txt
  railists collection     import|i  [-f FILE]
  railists wishlist (w)   list|l    [-f FILE]
  railists wishlist       budget|b  [-f FILE]
  railists serve                    [-addr :PORT]
`

// App runs railists commands. Reports go to stdout, logs and usage to
// stderr.
type App struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
	logger *log.Logger
}

func NewApp(cfg *config.Config, stdout, stderr io.Writer, logger *log.Logger) *App {
	return &App{cfg: cfg, stdout: stdout, stderr: stderr, logger: logger.WithComponent(log.ComponentCLI)}
}

// Run dispatches args (without the program name).
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usageError("missing command")
	}
	switch args[0] {
	case "collection", "c":
		return a.collection(ctx, args[1:])
	case "wishlist", "w":
		return a.wishList(args[1:])
	case "serve":
		return a.serve(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(a.stdout, usage)
		return nil
	default:
		return a.usageError("unknown command %q", args[0])
	}
}

func (a *App) usageError(format string, args ...any) error {
	fmt.Fprintf(a.stderr, "railists: "+format+"\n\n", args...)
	fmt.Fprint(a.stderr, usage)
	return ErrUsage
}

// fileFlags parses the -f and -o flags shared by the report commands.
func (a *App) fileFlags(name, defaultFile string, args []string) (file, out string, err error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.StringVar(&file, "f", defaultFile, "input file")
	fs.StringVar(&out, "o", "", "output file")
	if err := fs.Parse(args); err != nil {
		return "", "", ErrUsage
	}
	if fs.NArg() > 0 {
		return "", "", a.usageError("unexpected arguments %v", fs.Args())
	}
	if file == "" {
		return "", "", a.usageError("%s: missing -f FILE", name)
	}
	return file, out, nil
}

func (a *App) collection(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usageError("collection: missing subcommand")
	}
	sub, rest := args[0], args[1:]

	var name string
	switch sub {
	case "list", "l":
		name = "list"
	case "csv", "c":
		name = "csv"
	case "stats", "s":
		name = "stats"
	case "depot", "d":
		name = "depot"
	case "export", "e":
		name = "export"
	case "import", "i":
		name = "import"
	default:
		return a.usageError("collection: unknown subcommand %q", sub)
	}

	file, out, err := a.fileFlags("collection "+name, a.cfg.CollectionFile, rest)
	if err != nil {
		return err
	}
	if name == "import" {
		return a.importCollection(ctx, file)
	}

	c, err := datasource.LoadCollection(file)
	if err != nil {
		return err
	}
	a.logger.Debug("Collection loaded",
		log.FieldOperation, log.OpLoad,
		log.FieldFile, file,
		log.FieldItems, c.Len())

	switch name {
	case "list":
		return render.Text(a.stdout, report.CollectionTable(c))
	case "csv":
		return a.writeOutput(out, render.FormatCSV, report.CollectionRecords(c))
	case "stats":
		return render.Text(a.stdout, report.StatsTable(core.ComputeStats(c.Items)))
	case "depot":
		return render.Text(a.stdout, report.DepotTable(core.BuildDepot(c.Items)))
	default:
		return a.export(ctx, c, out)
	}
}

// export writes every view of the collection to one file, the format
// picked from its extension.
func (a *App) export(ctx context.Context, c core.Collection, out string) error {
	if out == "" {
		return a.usageError("collection export: missing -o OUT")
	}
	format, err := render.FormatFromPath(out)
	if err != nil {
		return err
	}
	if format == render.FormatCSV {
		return a.writeOutput(out, format, report.CollectionRecords(c))
	}

	rep, err := services.BuildReports(ctx, c)
	if err != nil {
		return err
	}
	return a.writeOutput(out, format,
		report.CollectionTable(c),
		report.StatsTable(rep.Stats),
		report.DepotTable(rep.Depot))
}

// writeOutput renders to path, or to stdout when path is empty.
func (a *App) writeOutput(path string, format render.Format, tables ...report.Table) error {
	if path == "" {
		return render.Write(a.stdout, format, tables...)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := render.Write(f, format, tables...); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	a.logger.Info("Report written",
		log.FieldOperation, log.OpExport,
		log.FieldFile, path,
		"format", string(format))
	return nil
}

// importCollection stores the file in SQLite and, when AMQP is configured,
// notifies the sync worker.
func (a *App) importCollection(ctx context.Context, file string) error {
	importer, closeImporter, err := newImporter(a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer closeImporter()

	rec, err := importer.Import(ctx, file)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "imported %d item(s) from %s as import #%d (run %s)\n", rec.ItemCount, file, rec.ID, rec.RunID)
	return nil
}

func (a *App) wishList(args []string) error {
	if len(args) == 0 {
		return a.usageError("wishlist: missing subcommand")
	}
	sub, rest := args[0], args[1:]

	var name string
	switch sub {
	case "list", "l":
		name = "list"
	case "budget", "b":
		name = "budget"
	default:
		return a.usageError("wishlist: unknown subcommand %q", sub)
	}

	file, out, err := a.fileFlags("wishlist "+name, a.cfg.WishListFile, rest)
	if err != nil {
		return err
	}
	w, err := datasource.LoadWishList(file)
	if err != nil {
		return err
	}

	format := render.FormatText
	if out != "" {
		if format, err = render.FormatFromPath(out); err != nil {
			return err
		}
	}
	if name == "budget" {
		return a.writeOutput(out, format, report.BudgetTable(core.ComputeBudget(w)))
	}
	return a.writeOutput(out, format, report.WishListTable(w))
}
