package main

import (
	"fmt"

	"KeikoHub/internal/announcer"

	"github.com/spf13/cobra"
)

func cuesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cues",
		Short: "List every spoken cue of the curriculum with its recording file name",
		Args:  cobra.NoArgs,
		RunE:  runCues,
	}
	cmd.Flags().String("language", "French", "language used for the speech text column")
	return cmd
}

func runCues(cmd *cobra.Command, args []string) error {
	idx, err := loadIndex(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	language, _ := cmd.Flags().GetString("language")

	for _, cue := range idx.Cues() {
		name := announcer.FileName(cue)
		if name == "" {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", name, cue, announcer.SpeechText(language, cue))
	}
	return nil
}
