package cli

import (
	"github.com/beetlebugorg/waterway/internal/chunk"
	"github.com/spf13/cobra"
	"github.com/viant/afs"
)

func runChunk(cmd *cobra.Command, args []string) error {
	input := "-"
	if len(args) == 1 {
		input = args[0]
	}

	target, _ := cmd.Flags().GetString("target")
	limit, _ := cmd.Flags().GetInt("limit")
	output, _ := cmd.Flags().GetString("output")

	fs := afs.New()
	return chunk.Run(cmd.Context(), fs, input, output, target, limit, cmd.InOrStdin(), cmd.OutOrStdout())
}
