package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xeipuuv/gojsonschema"

	"github.com/rcliao/recordkeeper/internal/store"
)

// exportSchema describes the document export writes.
const exportSchema = `{
  "type": "object",
  "required": ["entries"],
  "properties": {
    "entries": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "record"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "record": {
            "type": "object",
            "additionalProperties": {"type": "string"}
          }
        }
      }
    },
    "skipped": {"type": "array", "items": {"type": "string"}}
  }
}`

var exportSchemaLoader = gojsonschema.NewStringLoader(exportSchema)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import records from an export",
		Long:  "Import records from a document produced by export, read from a file or stdin. Existing names are skipped unless --overwrite.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runImport,
	}

	cmd.Flags().Bool("overwrite", false, "Replace records that already exist")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	overwrite, _ := cmd.Flags().GetBool("overwrite")

	var (
		data []byte
		err  error
	)
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fail("read input", err)
	}

	doc, err := decodeExport(data)
	if err != nil {
		return fail("import", err)
	}

	s, err := openStore()
	if err != nil {
		return fail("open store", err)
	}
	defer s.Close()

	res, err := store.Import(cmd.Context(), s, doc.Entries, overwrite)
	if err != nil {
		return fail("import", err)
	}

	out := struct {
		OK                 bool `json:"ok" yaml:"ok"`
		store.ImportResult `yaml:",inline"`
	}{true, res}
	return render(cmd, out, func(w io.Writer) {
		fmt.Fprintf(w, "imported %d, skipped %d\n", res.Imported, res.Skipped)
	})
}

// decodeExport validates data against exportSchema before decoding it.
func decodeExport(data []byte) (*store.ExportResult, error) {
	result, err := gojsonschema.Validate(exportSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return nil, fmt.Errorf("invalid export document:\n- %s", strings.Join(errs, "\n- "))
	}

	var doc store.ExportResult
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return &doc, nil
}
