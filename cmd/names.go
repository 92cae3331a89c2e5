package cmd

import (
	"fmt"

	"github.com/KaramelBytes/atmscope/internal/menu"
	"github.com/spf13/cobra"
)

var namesCmd = &cobra.Command{
	Use:   "names",
	Short: "List ATM names with their number of locations",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()
		if notLoaded(cmd, sess) {
			return nil
		}
		names, err := sess.NameCounts(cmd.Context())
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "(no ATMs loaded)")
			return nil
		}
		menu.List(cmd.OutOrStdout(), names)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(namesCmd)
}
