package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/flowpace/flowpace/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate [scenario.yaml]",
	Short: "Check a scenario file.",
	Long: "`validate` parses a scenario file, checks it, and prints the " +
		"scenario with every default filled in. Without a file it prints " +
		"the built-in scenario.",
	Args: cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		scenario := config.DefaultScenario()

		if len(args) == 1 {
			var err error

			scenario, err = config.Load(args[0])
			if err != nil {
				log.Print(err)
				atexit.Exit(1)
			}
		}

		out, err := scenario.Dump()
		if err != nil {
			log.Print(err)
			atexit.Exit(1)
		}

		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
