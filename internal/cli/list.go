package cli

import (
	"fmt"
	"io"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List record names",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	cmd.Flags().StringP("match", "m", "", "Only names matching this glob (e.g. 'a*' or '{ana,luis}*')")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) error {
	pattern, _ := cmd.Flags().GetString("match")
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return fail("list", fmt.Errorf("invalid pattern %q", pattern))
	}

	s, err := openStore()
	if err != nil {
		return fail("open store", err)
	}
	defer s.Close()

	names, err := s.List(cmd.Context())
	if err != nil {
		return fail("list", err)
	}

	if pattern != "" {
		kept := names[:0]
		for _, n := range names {
			if ok, _ := doublestar.Match(pattern, n); ok {
				kept = append(kept, n)
			}
		}
		names = kept
	}
	if names == nil {
		names = []string{}
	}

	return render(cmd, names, func(w io.Writer) {
		for _, n := range names {
			fmt.Fprintln(w, n)
		}
	})
}
