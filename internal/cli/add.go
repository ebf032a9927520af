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
		Use:   "add",
		Short: "Save a new record",
		Long: "Save a new record. Every value is checked against the stored records first; " +
			"a duplicate aborts unless --replace deletes the record holding it.",
		Args: cobra.NoArgs,
		RunE: runAdd,
	}

	for _, f := range model.Fields {
		cmd.Flags().String(f, "", "Value for "+f+" (required)")
		cmd.MarkFlagRequired(f)
	}
	cmd.Flags().String("name", "", "Record name, suffix optional (required)")
	cmd.Flags().Bool("replace", false, "Delete stored records holding a duplicate value")
	cmd.MarkFlagRequired("name")

	RootCmd.AddCommand(cmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	replace, _ := cmd.Flags().GetBool("replace")

	s, err := openStore()
	if err != nil {
		return fail("open store", err)
	}
	defer s.Close()

	var (
		last     session.Conflict
		replaced []string
	)
	resolve := func(c session.Conflict) (session.Resolution, error) {
		last = c
		if !replace {
			return session.KeepExisting, nil
		}
		replaced = append(replaced, c.Name)
		return session.DeleteExisting, nil
	}

	ses := session.New(s, logger)
	ctx := cmd.Context()
	for _, f := range model.Fields {
		value, _ := cmd.Flags().GetString(f)
		for {
			out, err := ses.Add(ctx, f, value, resolve)
			if err != nil {
				return fail("add", err)
			}
			if out == session.OutcomeRejected {
				return fail("add", fmt.Errorf("%s %q already stored in %q (use --replace)", last.Field, last.Value, last.Name))
			}
			if out == session.OutcomeAdded {
				break
			}
		}
	}

	saved, err := ses.Save(ctx, name)
	if err != nil {
		return fail("save", err)
	}

	res := struct {
		OK       bool     `json:"ok" yaml:"ok"`
		Name     string   `json:"name" yaml:"name"`
		Replaced []string `json:"replaced,omitempty" yaml:"replaced,omitempty"`
	}{true, saved, replaced}
	return render(cmd, res, func(w io.Writer) {
		for _, r := range replaced {
			fmt.Fprintf(w, "deleted %s\n", r)
		}
		fmt.Fprintf(w, "saved %s\n", saved)
	})
}
