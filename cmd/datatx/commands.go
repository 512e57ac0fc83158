package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/datatx/internal/core"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a JSON person record",
	Long: `Reads a JSON object from file, or stdin when no file is given, and checks
it against the record schema. Prints the validated record, or the violation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

var transformDateCmd = &cobra.Command{
	Use:   "transform-date <date>",
	Short: "Reformat a date from one strftime pattern to another",
	Args:  cobra.ExactArgs(1),
	RunE:  runTransformDate,
}

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Fill missing name, email and age cells in a CSV or XLSX file",
	Long: `Decodes the file (CSV unless the extension is .xlsx or .xlsm), fills
missing values in the name, email and age columns, and prints the rows as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runClean,
}

func runValidate(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	body, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	rec, err := core.Validator{EnforceEmailFormat: enforceEmail}.ValidateJSON(body)
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			if perr := printJSON(cmd.OutOrStdout(), verr.Violations); perr != nil {
				return perr
			}
		}
		return err
	}

	return printJSON(cmd.OutOrStdout(), rec)
}

func runTransformDate(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")

	out, err := core.Reformat(args[0], from, to)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}

func runClean(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	table, err := core.DecodeTable(args[0], f)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), core.Clean(table).Records())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
