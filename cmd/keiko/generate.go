package main

import (
	"fmt"

	"KeikoHub/internal/curriculum"
	"KeikoHub/internal/entity"
	"KeikoHub/internal/passage"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <grade>",
		Short: "Generate a passage and print it as a text sheet",
		Args:  cobra.ExactArgs(1),
		RunE:  runGenerate,
	}
	cmd.Flags().StringSlice("position", nil, "restrict to positions (repeatable)")
	cmd.Flags().StringSlice("attack", nil, "restrict to attacks containing the text (repeatable)")
	cmd.Flags().StringSlice("technique", nil, "restrict to techniques (repeatable)")
	cmd.Flags().Bool("weapons", false, "include weapons work")
	cmd.Flags().Bool("randori", false, "close the passage with randori")
	cmd.Flags().Int("duration", entity.DefaultDuration, "passage duration in minutes")
	cmd.Flags().Int("interval", entity.DefaultTimeBetweenTechniques, "seconds between techniques")
	cmd.Flags().Bool("json", false, "print the passage as JSON")
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	idx, err := loadIndex(cmd.Context(), cmd)
	if err != nil {
		return err
	}

	grade := args[0]
	if !idx.HasGrade(grade) {
		return fmt.Errorf("unknown grade %q, known grades: %v", grade, idx.Grades())
	}

	filters := entity.PassageFilters{}
	filters.Attacks, _ = cmd.Flags().GetStringSlice("attack")
	filters.Techniques, _ = cmd.Flags().GetStringSlice("technique")
	filters.IncludeWeapons, _ = cmd.Flags().GetBool("weapons")
	filters.IncludeRandori, _ = cmd.Flags().GetBool("randori")

	labels, _ := cmd.Flags().GetStringSlice("position")
	for _, label := range labels {
		position, ok := curriculum.ParsePosition(label)
		if !ok {
			return fmt.Errorf("unknown position %q", label)
		}
		filters.Positions = append(filters.Positions, position)
	}

	config := entity.PassageConfig{}
	config.Duration, _ = cmd.Flags().GetInt("duration")
	config.TimeBetweenTechniques, _ = cmd.Flags().GetInt("interval")

	p, err := passage.NewGenerator(idx, cliLogger(cmd)).Generate(grade, filters, config)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := jsoniter.MarshalIndent(p, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Print(passage.FormatText(p))
	return nil
}
