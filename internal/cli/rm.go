package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm [name...]",
		Short: "Delete records",
		Long:  "Delete the named records, or every record with --all --yes. Every name is attempted; failures are reported together.",
		RunE:  runRm,
	}

	cmd.Flags().Bool("all", false, "Delete every record")
	cmd.Flags().BoolP("yes", "y", false, "Confirm --all")

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	yes, _ := cmd.Flags().GetBool("yes")

	switch {
	case all && len(args) > 0:
		return fail("rm", errors.New("--all takes no names"))
	case all && !yes:
		return fail("rm", errors.New("--all needs --yes"))
	case !all && len(args) == 0:
		return fail("rm", errors.New("no record names given"))
	}

	s, err := openStore()
	if err != nil {
		return fail("open store", err)
	}
	defer s.Close()

	ctx := cmd.Context()
	var names []string
	if all {
		if names, err = s.List(ctx); err != nil {
			return fail("list", err)
		}
	} else {
		for _, a := range args {
			names = append(names, recordName(a))
		}
	}

	if err := s.DeleteAll(ctx, names); err != nil {
		return fail("rm", err)
	}
	if names == nil {
		names = []string{}
	}

	res := map[string]any{"ok": true, "deleted": names}
	return render(cmd, res, func(w io.Writer) {
		for _, n := range names {
			fmt.Fprintf(w, "deleted %s\n", n)
		}
	})
}
