package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"daterbo-console/internal/core/actions"
	"daterbo-console/internal/core/domain"
	"daterbo-console/internal/core/filter"
	"daterbo-console/internal/core/services"

	"github.com/spf13/cobra"
)

// filterFlags mirror the list filters of the console
type filterFlags struct {
	search, date, status, leasing, user, pic, surveyor string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.search, "search", "q", "", "Search NIK or name")
	cmd.Flags().StringVar(&f.date, "date", "", "Input day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.status, "status", "", "Status name (default all)")
	cmd.Flags().StringVar(&f.leasing, "leasing", "", "Leasing id")
	cmd.Flags().StringVar(&f.user, "user", "", "Owner user id")
	cmd.Flags().StringVar(&f.pic, "pic", "", "PIC id")
	cmd.Flags().StringVar(&f.surveyor, "surveyor", "", "Surveyor id")
}

func (f *filterFlags) criteria() (filter.Criteria, error) {
	c := filter.Criteria{
		Search:   f.search,
		Status:   filter.ParseSelection(f.status),
		Leasing:  filter.ParseSelection(f.leasing),
		User:     filter.ParseSelection(f.user),
		PIC:      filter.ParseSelection(f.pic),
		Surveyor: filter.ParseSelection(f.surveyor),
	}
	if f.date != "" {
		day, err := domain.ParseDay(f.date)
		if err != nil {
			return c, err
		}
		c.Date = &day
	}
	return c, nil
}

func recordsCmd(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "records",
		Aliases: []string{"peminjam"},
		Short:   "Work with borrower records",
	}
	cmd.AddCommand(
		recordsListCmd(app),
		recordsShowCmd(app),
		recordsTransitionCmd(app),
		recordsExportCmd(app),
		recordsDocumentsCmd(app),
	)
	return cmd
}

func recordsListCmd(app *cli) *cobra.Command {
	var (
		flags  filterFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records with status counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := flags.criteria()
			if err != nil {
				return err
			}
			format, err := parseOutput(output)
			if err != nil {
				return err
			}
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}

			view, err := app.records.List(cmd.Context(), app.sess, criteria)
			if err != nil {
				return explain(err)
			}

			if format != outputTable {
				return printStructured(cmd.OutOrStdout(), format, view)
			}
			printList(cmd.OutOrStdout(), view)
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "O", outputTable, "Output format: table, json or yaml")
	return cmd
}

func printList(out io.Writer, view *services.ListView) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNIK\tNAMA\tSTATUS\tLEASING\tTGL INPUT\tAKSI")
	for _, row := range view.Rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.ID,
			row.NIK,
			row.Name,
			dash(row.StatusName()),
			dash(row.LeasingName()),
			row.InputDate.Display(),
			actionNames(row.Actions),
		)
	}
	w.Flush()

	counts := make([]string, 0, len(view.Statuses)+1)
	counts = append(counts, fmt.Sprintf("Semua: %d", view.Total))
	for _, st := range view.Statuses {
		counts = append(counts, fmt.Sprintf("%s: %d", st.Name, view.Counts[st.Name]))
	}
	fmt.Fprintf(out, "\n%s\n", strings.Join(counts, " | "))
}

func actionNames(views []services.ActionView) string {
	names := make([]string, 0, len(views))
	for _, v := range views {
		names = append(names, string(v.Action))
	}
	return strings.Join(names, ",")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func recordsShowCmd(app *cli) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one record with its actions and documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutput(output)
			if err != nil {
				return err
			}
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			d, err := app.records.Detail(cmd.Context(), app.sess, args[0])
			if err != nil {
				return explain(err)
			}
			if format != outputTable {
				return printStructured(cmd.OutOrStdout(), format, d)
			}

			r := d.Record
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, kv := range [][2]string{
				{"ID", r.ID},
				{"NIK", r.NIK},
				{"Nama", r.Name},
				{"User", dash(r.UserName())},
				{"No. HP", dash(r.Phone)},
				{"WhatsApp", dash(d.WhatsAppLink)},
				{"Aset", dash(strings.TrimSpace(r.Asset + " " + r.AssetYear))},
				{"Alamat", dash(strings.Join(nonEmpty(r.Address, r.District, r.City), ", "))},
				{"Status", dash(r.StatusName())},
				{"Leasing", dash(r.LeasingName())},
				{"Tgl Input", r.InputDate.Display()},
				{"Tgl Penerimaan", r.ReceiptDate.Display()},
				{"Tgl Pencairan", r.DisburseDate.Display()},
				{"Keterangan", dash(r.Notes)},
				{"Aksi", actionNames(d.Actions)},
			} {
				fmt.Fprintf(w, "%s:\t%s\n", kv[0], kv[1])
			}
			for _, doc := range d.Documents {
				fmt.Fprintf(w, "%s:\t%s\n", doc.Label, doc.URL)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "O", outputTable, "Output format: table, json or yaml")
	return cmd
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func recordsTransitionCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "transition <id> <action>",
		Short: "Run a lifecycle action (mark_complete, process, disburse, cancel, delete)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := actions.Parse(args[1])
			if err != nil {
				return err
			}
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}

			switch {
			case action == actions.Delete:
				err = app.records.Delete(cmd.Context(), app.sess, args[0])
			case action.IsTransition():
				err = app.records.Transition(cmd.Context(), app.sess, args[0], action)
			default:
				return fmt.Errorf("%s is not a lifecycle action", action)
			}
			if err != nil {
				return explain(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], action.Label())
			return nil
		},
	}
}

func recordsExportCmd(app *cli) *cobra.Command {
	var (
		flags  filterFlags
		format string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered records to Excel or PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := flags.criteria()
			if err != nil {
				return err
			}
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}

			var file *services.File
			switch strings.ToLower(format) {
			case "xlsx", "excel":
				file, err = app.exports.XLSX(cmd.Context(), app.sess, criteria)
			case "pdf":
				file, err = app.exports.PDF(cmd.Context(), app.sess, criteria)
			default:
				return fmt.Errorf("unknown format %q (xlsx or pdf)", format)
			}
			if err != nil {
				return explain(err)
			}
			return writeFile(cmd.OutOrStdout(), outDir, file)
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "Output format: xlsx or pdf")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	return cmd
}

func recordsDocumentsCmd(app *cli) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "documents <id>",
		Short: "Bundle the documents of a record into one PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			file, err := app.exports.Documents(cmd.Context(), app.sess, args[0])
			if err != nil {
				return explain(err)
			}
			return writeFile(cmd.OutOrStdout(), outDir, file)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	return cmd
}

func writeFile(out io.Writer, dir string, file *services.File) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, file.Name)
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(out, "Saved %s (%d bytes)\n", path, len(file.Data))
	return nil
}
