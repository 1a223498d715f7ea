package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/pubsite/scaffold"
)

var newCmd = &cobra.Command{
	Use:   "new <dir>",
	Short: "Create a new pubsite project",
	Example: `  pubsite new my-lab
  pubsite new sites/research`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

var postCmd = &cobra.Command{
	Use:     "post <title>",
	Short:   "Create a draft post in the content directory",
	Example: `  pubsite post "Notes on light clients"`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runPost,
}

func runNew(cmd *cobra.Command, args []string) error {
	dir := args[0]
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Creating new pubsite project: %s\n\n", dir)

	created, err := scaffold.Site(dir, scaffold.NewData(dir, time.Now()))
	if err != nil {
		return err
	}
	for _, path := range created {
		fmt.Fprintf(out, "  created %s\n", path)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Done! Next steps:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  cd %s\n", dir)
	fmt.Fprintln(out, "  pubsite serve --dev --watch")
	return nil
}

func runPost(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path, err := scaffold.Post(cfg.ContentDir, strings.Join(args, " "), time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s (draft)\n", path)
	return nil
}
