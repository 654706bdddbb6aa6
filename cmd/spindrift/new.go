package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eringen/spindrift/scaffold"
)

func newNewCmd() *cobra.Command {
	var author, basePath string
	cmd := &cobra.Command{
		Use:   "new <dir>",
		Short: "Create a new spindrift project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(cmd, args[0], author, basePath)
		},
	}
	cmd.Flags().StringVar(&author, "author", "", "Project author")
	cmd.Flags().StringVar(&basePath, "base-path", "", "Site root URL")
	return cmd
}

func runNew(cmd *cobra.Command, dir, author, basePath string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Creating new spindrift project: %s\n\n", dir)

	created, err := scaffold.Generate(dir, scaffold.NewData(dir, author, basePath))
	if err != nil {
		return err
	}
	for _, f := range created {
		fmt.Fprintf(out, "  created %s\n", filepath.Join(dir, f))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Done! Next steps:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  cd %s\n", dir)
	fmt.Fprintln(out, "  spindrift -s droplets -o public")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Edit templates/*.html to customize your pages.")
	return nil
}
