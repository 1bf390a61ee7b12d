package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/imageboard/internal/model"
	"github.com/sakif/imageboard/internal/repository"
	"github.com/sakif/imageboard/internal/server"
)

func newThreadsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "threads",
		Short: "Print every thread with its like and comment counts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, closeDocs, err := server.OpenDocumentStore(a.cfg.Store)
			if err != nil {
				return fmt.Errorf("opening %s document store: %w", a.cfg.Store.Backend, err)
			}
			defer closeDocs()

			threads := repository.NewThreads(docs, a.cfg.Store.ThreadsName, a.logger)
			printThreads(a.console, threads.Load(cmd.Context()))
			return nil
		},
	}
}

func printThreads(c *Console, threads []model.Thread) {
	if len(threads) == 0 {
		c.Warn("No threads yet.")
		return
	}

	for _, thread := range threads {
		replies := 0
		for _, comment := range thread.Comments {
			replies += len(comment.Replies)
		}

		like := "♡"
		if thread.Liked {
			like = "♥"
		}

		c.Println("%s %s  %s",
			c.Cyan.Sprintf("#%d", thread.ID),
			c.Bold.Sprint(thread.Title),
			c.Faint.Sprintf("by %s at %s", thread.Username, thread.CreatedAt),
		)
		c.Println("    %s %d  ·  %d comments  ·  %d replies", like, thread.Likes, len(thread.Comments), replies)
	}
	c.Success("%d threads", len(threads))
}
