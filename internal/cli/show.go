package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rcliao/recordkeeper/internal/model"
	"github.com/rcliao/recordkeeper/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print one record",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}

	RootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return fail("open store", err)
	}
	defer s.Close()

	rec, err := s.Load(cmd.Context(), recordName(args[0]))
	if err != nil {
		return fail("show", err)
	}
	return render(cmd, rec, func(w io.Writer) { writeRecord(w, rec) })
}

func writeRecord(w io.Writer, rec model.Record) {
	for _, k := range rec.Keys() {
		fmt.Fprintf(w, "%s: %s\n", session.Label(k), rec[k])
	}
}
