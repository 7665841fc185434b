package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/parleyhq/parley/pkg/chat"
	"github.com/parleyhq/parley/pkg/presenter"
)

var chatsSearch string

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "List conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, cancel := context.WithTimeout(context.Background(), app.Config.Backend.Timeout)
		defer cancel()

		now := time.Now()
		title := color.New(color.Bold)
		dim := color.New(color.Faint)
		badge := color.New(color.FgRed, color.Bold)

		for _, conv := range app.Registry.List(ctx, chatsSearch) {
			kind := "live"
			if conv.Kind == chat.KindSimulated {
				kind = "sim"
			}
			fmt.Printf("%s %s %s\n", title.Sprint(conv.Title), dim.Sprintf("[%s]", kind), dim.Sprint(presenter.FormatTimeAgo(conv.CreatedAt, now)))
			if conv.LastMessage != "" {
				fmt.Printf("  %s\n", conv.LastMessage)
			}
			if conv.UnreadCount > 0 {
				fmt.Printf("  %s\n", badge.Sprintf("%d unread", conv.UnreadCount))
			}
		}
		return nil
	},
}

func init() {
	chatsCmd.Flags().StringVarP(&chatsSearch, "search", "s", "", "filter by title")
	rootCmd.AddCommand(chatsCmd)
}
