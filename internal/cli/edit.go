package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/spf13/cobra"

	"github.com/rcliao/recordkeeper/internal/model"
	"github.com/rcliao/recordkeeper/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "edit <name>",
		Short: "Change values of a stored record",
		Args:  cobra.ExactArgs(1),
		RunE:  runEdit,
	}

	cmd.Flags().StringArrayP("set", "s", nil, "field=value to change (repeatable, required)")
	cmd.Flags().Bool("diff", false, "Print a unified diff of the stored content")
	cmd.MarkFlagRequired("set")

	RootCmd.AddCommand(cmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	sets, _ := cmd.Flags().GetStringArray("set")
	showDiff, _ := cmd.Flags().GetBool("diff")

	changes, err := parseAssignments(sets)
	if err != nil {
		return fail("edit", err)
	}

	s, err := openStore()
	if err != nil {
		return fail("open store", err)
	}
	defer s.Close()

	name := recordName(args[0])
	before, after, err := session.New(s, logger).Edit(cmd.Context(), name, changes)
	if err != nil {
		return fail("edit", err)
	}

	if showDiff {
		fmt.Fprint(cmd.OutOrStdout(), recordDiff(name, before, after))
		return nil
	}
	return render(cmd, after, func(w io.Writer) { writeRecord(w, after) })
}

func parseAssignments(sets []string) (map[string]string, error) {
	changes := make(map[string]string, len(sets))
	for _, kv := range sets {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q (want field=value)", kv)
		}
		changes[k] = v
	}
	return changes, nil
}

// recordDiff diffs the stored JSON layout of two versions of a record.
func recordDiff(name string, before, after model.Record) string {
	a, _ := json.MarshalIndent(before, "", "    ")
	b, _ := json.MarshalIndent(after, "", "    ")
	as, bs := string(a)+"\n", string(b)+"\n"
	edits := myers.ComputeEdits(span.URIFromPath(name), as, bs)
	return fmt.Sprint(gotextdiff.ToUnified(name, name, as, edits))
}
