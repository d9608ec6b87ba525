/*
PURPOSE:
  Defines the 'check-prompts' subcommand.
  Helps debug prompt files before committing to a full run.

REQUIREMENTS:
  User-specified:
  - Validate that a prompt file loads.

  Implementation-discovered:
  - Useful validation step before a long load test.

ARCHITECTURE INTEGRATION:
  - Calls: internal/prompts.Load()

ERROR HANDLING:
  - Returns the loader error if the file is unusable.

IMPLEMENTATION RULES:
  - Simple output to stdout.

USAGE:
  wave-runner check-prompts -f prompts.csv

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/prompts/loader.go

MAINTENANCE:
  - None.
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ruleworks/wave-runner/internal/config"
	"github.com/ruleworks/wave-runner/internal/prompts"
)

const promptPreviewCount = 5

var checkPromptsCmd = &cobra.Command{
	Use:   "check-prompts",
	Short: "Validate a prompt file and preview what would be loaded",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if promptFileFlag != "" {
			cfg.PromptFile = promptFileFlag
		}
		if cmd.Flags().Changed("max-prompts") {
			cfg.MaxPrompts = maxPromptsFlag
		}

		loaded, err := prompts.Load(cfg.PromptFile, cfg.MaxPrompts)
		if err != nil {
			return err
		}

		fmt.Printf("Loaded %d prompts from %s\n", len(loaded), cfg.PromptFile)
		for i, p := range loaded {
			if i >= promptPreviewCount {
				fmt.Printf("  ... and %d more\n", len(loaded)-promptPreviewCount)
				break
			}
			fmt.Printf("  [%d] %s\n", i, p)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkPromptsCmd)

	checkPromptsCmd.Flags().StringVarP(&promptFileFlag, "file", "f", "", "Input CSV file with prompts")
	checkPromptsCmd.Flags().IntVar(&maxPromptsFlag, "max-prompts", 0, "Cap on prompts loaded from the file (0 = all)")
}
