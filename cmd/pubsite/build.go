package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/pubsite"
)

var (
	outDir    string
	indexPath string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Export posts, research data, feed and thumbnails to static files",
	Args:  cobra.NoArgs,
	RunE:  runBuild,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Write the listed posts into a SQLite index",
	Args:  cobra.NoArgs,
	RunE:  runIndex,
}

func init() {
	buildCmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (defaults to output_dir from the config)")
	indexCmd.Flags().StringVar(&indexPath, "db", "", "SQLite file (defaults to index_path from the config)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	dir := outDir
	if dir == "" {
		dir = app.Config.OutputDir
	}
	report, err := app.Export(cmd.Context(), dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d posts, %d papers, %d comics, %d images to %s\n",
		report.Posts, report.Papers, report.Comics, report.Images, dir)
	return nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	path := indexPath
	if path == "" {
		path = app.Config.IndexPath
	}

	store, err := pubsite.NewStore(path)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer store.Close()

	posts := app.Loader.ListPosts()
	if err := store.ReplacePosts(cmd.Context(), posts); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	logger.Info("index written", zap.String("path", path), zap.Int("posts", len(posts)))
	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d posts into %s\n", len(posts), path)
	return nil
}
