package main

import (
	"errors"
	"fmt"
	"os"

	"KeikoHub/internal/announcer"
	"KeikoHub/pkg/audio"

	"github.com/spf13/cobra"
)

func ttsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tts <Language/Voice>...",
		Short: "Synthesise the recordings of every cue for the given voices",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runTTS,
	}
	cmd.Flags().String("out", envOr("AUDIO_OUTPUT_DIR", "./assets/audio"), "output directory")
	cmd.Flags().String("voices", os.Getenv("VOICES_PATH"), "voice catalog document")
	cmd.Flags().Bool("overwrite", false, "regenerate recordings that already exist")
	cmd.Flags().Int("concurrency", 4, "parallel synthesis requests")
	return cmd
}

func runTTS(cmd *cobra.Command, args []string) error {
	apiKey := os.Getenv("ELEVENLABS_API_KEY")
	if apiKey == "" {
		return errors.New("ELEVENLABS_API_KEY not set")
	}

	idx, err := loadIndex(cmd.Context(), cmd)
	if err != nil {
		return err
	}

	catalogPath, _ := cmd.Flags().GetString("voices")
	catalog := audio.NewVoiceCatalog(catalogPath)

	out, _ := cmd.Flags().GetString("out")
	overwrite, _ := cmd.Flags().GetBool("overwrite")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	batch := audio.Batch{
		Dir:         out,
		Overwrite:   overwrite,
		Concurrency: concurrency,
		FileName:    announcer.FileName,
		Speech:      announcer.SpeechText,
	}
	tts := audio.NewTTSService(apiKey)
	logger := cliLogger(cmd)
	cues := idx.Cues()

	var failed int
	for _, ref := range args {
		voice, err := catalog.Find(ref)
		if err != nil {
			return err
		}

		report, err := batch.Run(cmd.Context(), tts, voice, cues, logger)
		if err != nil {
			return err
		}
		failed += len(report.Failed)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d written, %d skipped, %d failed\n",
			voice.Ref(), len(report.Written), len(report.Skipped), len(report.Failed))
	}

	if failed > 0 {
		return fmt.Errorf("%d cue recordings failed", failed)
	}
	return nil
}
