package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/microsoft/acquire/internal/projectconfig"
	"github.com/microsoft/acquire/internal/validation"
	"github.com/spf13/cobra"
)

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Validate .acquire.yaml against its schema",
		Long: `Validate the project config file against its JSON schema.

The file is searched for from dir (default --config-dir) up through its
parents. A missing file is not an error; defaults apply.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
	}
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	dir := configDir
	if len(args) > 0 {
		dir = args[0]
	}

	w := cmd.OutOrStdout()
	path, _, err := projectconfig.FindFile(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(w, "No %s found; using defaults\n", projectconfig.FileName) //nolint:errcheck
			return nil
		}
		return err
	}

	errs, err := validation.ValidateConfigFile(path)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		fmt.Fprintf(w, "✗ %s\n", path) //nolint:errcheck
		for _, e := range errs {
			fmt.Fprintf(w, "  - %s\n", e) //nolint:errcheck
		}
		return fmt.Errorf("%s has %d schema error(s)", path, len(errs))
	}

	// the schema passed; make sure the values also load
	if _, err := projectconfig.Load(dir); err != nil {
		return err
	}

	fmt.Fprintf(w, "✓ %s\n", path) //nolint:errcheck
	return nil
}
