package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/recordkeeper/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search record values",
		Long:  "Case-insensitive substring search over every value of every readable record.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	if strings.TrimSpace(query) == "" {
		return fail("search", errors.New("query is empty"))
	}

	s, err := openStore()
	if err != nil {
		return fail("open store", err)
	}
	defer s.Close()

	matches, err := store.Search(cmd.Context(), s, query)
	if err != nil {
		return fail("search", err)
	}

	return render(cmd, matches, func(w io.Writer) {
		for _, m := range matches {
			fmt.Fprintf(w, "%s\t%s\n", m.Name, strings.Join(m.Fields, ","))
		}
	})
}
