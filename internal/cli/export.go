package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/rcliao/recordkeeper/internal/model"
	"github.com/rcliao/recordkeeper/internal/session"
	"github.com/rcliao/recordkeeper/internal/store"
)

const exportSheet = "Registros"

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every record",
		Long:  "Export every readable record as a document import accepts, or as a spreadsheet with --xlsx.",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}

	cmd.Flags().String("xlsx", "", "Write an .xlsx workbook to this path instead")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	xlsxPath, _ := cmd.Flags().GetString("xlsx")

	s, err := openStore()
	if err != nil {
		return fail("open store", err)
	}
	defer s.Close()

	res, err := store.Export(cmd.Context(), s)
	if err != nil {
		return fail("export", err)
	}
	for _, name := range res.Skipped {
		logger.Warn("export skipped unreadable record", "name", name)
	}

	if xlsxPath != "" {
		if err := writeWorkbook(xlsxPath, res.Entries); err != nil {
			return fail("export xlsx", err)
		}
		out := map[string]any{"ok": true, "path": xlsxPath, "records": len(res.Entries)}
		return render(cmd, out, func(w io.Writer) {
			fmt.Fprintf(w, "wrote %d records to %s\n", len(res.Entries), xlsxPath)
		})
	}

	return render(cmd, res, func(w io.Writer) {
		for _, e := range res.Entries {
			fmt.Fprintf(w, "== %s\n", e.Name)
			writeRecord(w, e.Record)
		}
	})
}

// writeWorkbook lays entries out one per row: the record name, then the
// recognized fields in display order.
func writeWorkbook(path string, entries []store.Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	header := []any{"Archivo"}
	for _, field := range model.Fields {
		header = append(header, session.Label(field))
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return err
	}

	for i, e := range entries {
		row := []any{e.Name}
		for _, field := range model.Fields {
			row = append(row, e.Record[field])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}
