package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "find <field> <value>",
		Short: "Find the first record holding an exact field value",
		Args:  cobra.ExactArgs(2),
		RunE:  runFind,
	}

	RootCmd.AddCommand(cmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return fail("open store", err)
	}
	defer s.Close()

	name, found, err := s.FindByFieldValue(cmd.Context(), args[0], args[1])
	if err != nil {
		return fail("find", err)
	}

	res := struct {
		Found bool   `json:"found" yaml:"found"`
		Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	}{found, name}
	return render(cmd, res, func(w io.Writer) {
		if found {
			fmt.Fprintln(w, name)
		} else {
			fmt.Fprintln(w, "not found")
		}
	})
}
