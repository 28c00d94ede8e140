package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Support conversations",
	Args:  cobra.NoArgs,
	RunE:  runChatList,
}

var chatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	Args:  cobra.NoArgs,
	RunE:  runChatList,
}

var chatShowCmd = &cobra.Command{
	Use:   "show <conversation-id>",
	Short: "Read a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatShow,
}

var chatSendCmd = &cobra.Command{
	Use:   "send <conversation-id> <message...>",
	Short: "Send a message",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runChatSend,
}

func init() {
	chatCmd.AddCommand(chatListCmd, chatShowCmd, chatSendCmd)
}

func runChatList(cmd *cobra.Command, _ []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	conversations, err := studio.Chat.Conversations(cmd.Context())
	if err != nil {
		return err
	}
	if len(conversations) == 0 {
		fmt.Println("No conversations.")
		return nil
	}
	for _, conv := range conversations {
		subject := conv.Subject
		if subject == "" && conv.OrderID != 0 {
			subject = fmt.Sprintf("order #%d", conv.OrderID)
		}
		unread := ""
		if conv.UnreadCount > 0 {
			unread = fmt.Sprintf("  (%d unread)", conv.UnreadCount)
		}
		fmt.Printf("%6d  %s%s\n", conv.ID, subject, unread)
	}
	return nil
}

func runChatShow(cmd *cobra.Command, args []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	conversationID, err := parseID(args[0], "conversation")
	if err != nil {
		return err
	}
	_, messages, err := studio.Chat.Open(cmd.Context(), conversationID)
	if err != nil {
		return err
	}
	for _, msg := range messages {
		sender := msg.Sender
		if msg.IsStaff {
			sender += " (staff)"
		}
		fmt.Printf("[%s] %s: %s\n", msg.CreatedAt.Format("15:04"), sender, msg.Body)
	}
	return nil
}

func runChatSend(cmd *cobra.Command, args []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	conversationID, err := parseID(args[0], "conversation")
	if err != nil {
		return err
	}
	message, err := studio.Chat.Send(cmd.Context(), conversationID, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Printf("Sent message #%d.\n", message.ID)
	return nil
}
