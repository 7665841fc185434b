package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/parleyhq/parley/pkg/chat"
	"github.com/parleyhq/parley/pkg/presenter"
	"github.com/parleyhq/parley/pkg/stream"
)

var sendCmd = &cobra.Command{
	Use:   "send <conversation-id> <message>",
	Short: "Send one message to a conversation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		conversationID, text := args[0], args[1]

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		conv := chat.Conversation{
			ID:    conversationID,
			Title: conversationID,
			Kind:  chat.KindForID(conversationID),
		}
		if contact, ok := chat.ContactForConversation(conversationID); ok {
			conv.Title = contact.Name
		}

		ms := stream.New(conv, app.Gateway, app.Responder, app.Log)
		ctx, cancel := context.WithTimeout(context.Background(), 2*app.Config.Backend.Timeout)
		defer cancel()

		if err := ms.Attach(ctx); err != nil {
			return fmt.Errorf("failed to attach to conversation: %w", err)
		}
		defer ms.Close()

		if !ms.Send(ctx, text) {
			return fmt.Errorf("message rejected (empty or send already in flight)")
		}

		now := time.Now()
		for _, group := range presenter.Group(ms.Messages(), now) {
			fmt.Printf("-- %s --\n", group.Label)
			for _, msg := range group.Messages {
				fmt.Printf("%s %-9s %s\n", presenter.FormatTime(msg.CreatedAt), msg.Sender+":", msg.Content)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
}
