package main

import (
	"context"
	"io"

	"KeikoHub/internal/curriculum"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func cliLogger(cmd *cobra.Command) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		logger.SetOutput(io.Discard)
	}
	return logger
}

func loadIndex(ctx context.Context, cmd *cobra.Command) (*curriculum.Index, error) {
	curriculumPath, _ := cmd.Flags().GetString("curriculum")
	videosPath, _ := cmd.Flags().GetString("videos")
	return curriculum.Load(ctx, curriculumPath, videosPath, cliLogger(cmd))
}
