package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/recordkeeper/internal/session"
	"github.com/rcliao/recordkeeper/internal/ui"
)

func init() {
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Start the interactive menu",
		Args:  cobra.NoArgs,
		RunE:  runMenu,
	}

	RootCmd.AddCommand(cmd)
}

func runMenu(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return fail("open store", err)
	}
	defer s.Close()

	p := ui.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	m := session.NewMenu(session.New(s, logger), p)
	if err := m.Run(cmd.Context()); err != nil {
		return fail("menu", err)
	}
	return nil
}
