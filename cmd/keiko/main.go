package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "keiko",
		Short:        "Aikido passage training companion tools",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")

	root.PersistentFlags().String("curriculum", envOr("CURRICULUM_PATH", "./data/nomenclature.json"), "nomenclature document")
	root.PersistentFlags().Bool("quiet", false, "silence logs")
	root.PersistentFlags().String("videos", envOr("VIDEOS_PATH", "./data/videos.json"), "video reference document")

	root.AddCommand(generateCmd())
	root.AddCommand(cuesCmd())
	root.AddCommand(ttsCmd())
	root.AddCommand(versionCmd())
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
