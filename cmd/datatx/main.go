// Command datatx runs the validation, date and cleaning operations of the
// data API offline, on local files.
//
// Usage:
//
//	datatx validate person.json
//	datatx transform-date 12-15-2024 --from %m-%d-%Y --to %Y-%m-%d
//	datatx clean people.csv
package main

import (
	"fmt"
	"os"

	"github.com/JonMunkholm/datatx/internal/core"
	"github.com/JonMunkholm/datatx/internal/logging"
	"github.com/spf13/cobra"
)

var (
	logLevel     string
	enforceEmail bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "datatx",
	Short:         "Validate records, reformat dates and clean tables",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetupWriter(cmd.ErrOrStderr(), logLevel, "text")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	validateCmd.Flags().BoolVar(&enforceEmail, "enforce-email", false, "Reject emails that do not look like addresses")

	transformDateCmd.Flags().String("from", "", "strftime pattern the date is written in")
	transformDateCmd.Flags().String("to", "", "strftime pattern to render the date in")
	_ = transformDateCmd.MarkFlagRequired("from")
	_ = transformDateCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(transformDateCmd)
	rootCmd.AddCommand(cleanCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		}
		os.Exit(1)
	}
}
