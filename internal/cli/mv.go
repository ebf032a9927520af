package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rcliao/recordkeeper/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "mv <old> <new>",
		Short: "Rename a record",
		Long:  "Rename a record. The suffix is appended to either name when missing. Renaming onto an existing record fails.",
		Args:  cobra.ExactArgs(2),
		RunE:  runMv,
	}

	RootCmd.AddCommand(cmd)
}

func runMv(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return fail("open store", err)
	}
	defer s.Close()

	oldName := recordName(args[0])
	newName, err := session.New(s, logger).Rename(cmd.Context(), oldName, args[1])
	if err != nil {
		return fail("mv", err)
	}

	res := map[string]any{"ok": true, "from": oldName, "to": newName}
	return render(cmd, res, func(w io.Writer) {
		fmt.Fprintf(w, "%s -> %s\n", oldName, newName)
	})
}
