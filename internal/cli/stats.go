package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rcliao/recordkeeper/internal/model"
	"github.com/rcliao/recordkeeper/internal/session"
	"github.com/rcliao/recordkeeper/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show store statistics",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return fail("open store", err)
	}
	defer s.Close()

	st, err := store.CollectStats(cmd.Context(), s)
	if err != nil {
		return fail("stats", err)
	}

	out := struct {
		store.Stats `yaml:",inline"`
		Size        string `json:"size" yaml:"size"`
	}{*st, humanize.Bytes(uint64(st.SizeBytes))}
	return render(cmd, out, func(w io.Writer) {
		fmt.Fprintf(w, "backend:   %s (%s)\n", st.Backend, st.Location)
		fmt.Fprintf(w, "size:      %s\n", out.Size)
		fmt.Fprintf(w, "records:   %s\n", humanize.Comma(int64(st.TotalRecords)))
		fmt.Fprintf(w, "complete:  %s\n", humanize.Comma(int64(st.CompleteRecords)))
		fmt.Fprintf(w, "corrupt:   %s\n", humanize.Comma(int64(st.CorruptRecords)))
		for _, f := range model.Fields {
			fmt.Fprintf(w, "%-10s %d\n", session.Label(f)+":", st.FieldCounts[f])
		}
	})
}
