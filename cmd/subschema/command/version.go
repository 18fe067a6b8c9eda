package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewVersionCmd(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Version information.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if info.Version == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "subschema snapshot")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "subschema %s", info.Version)
			if info.GitHash != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (%s)", info.GitHash)
			}
			if info.Date != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " built %s", info.Date)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}
