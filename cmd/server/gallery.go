package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/imageboard/internal/model"
	"github.com/sakif/imageboard/internal/repository"
	"github.com/sakif/imageboard/internal/server"
	"github.com/sakif/imageboard/internal/service"
)

func newGalleryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "gallery",
		Short: "Print the upload history grouped by day.",
		Long: `Print the upload history grouped by day, most recent day first.

Loading the history drops invalid records (missing url, date or public_id)
and rewrites the document, so this command also repairs a damaged history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, closeDocs, err := server.OpenDocumentStore(a.cfg.Store)
			if err != nil {
				return fmt.Errorf("opening %s document store: %w", a.cfg.Store.Backend, err)
			}
			defer closeDocs()

			history := repository.NewHistory(docs, a.cfg.Store.HistoryName, a.logger)
			groups := service.GroupByDate(history.Load(cmd.Context()))
			printGallery(a.console, groups)
			return nil
		},
	}
}

func printGallery(c *Console, groups []model.DateGroup) {
	if len(groups) == 0 {
		c.Warn("No uploads yet.")
		return
	}

	total := 0
	for _, group := range groups {
		c.Println("%s", c.Bold.Sprint(group.Date))
		for _, image := range group.Images {
			c.Println("  %s  %s  %s", image.Date, c.Cyan.Sprint(image.PublicID), c.Faint.Sprint(image.URL))
		}
		total += len(group.Images)
	}
	c.Success("%d images over %d days", total, len(groups))
}
