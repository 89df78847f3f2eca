package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/prakharai/internal/chat"
	"github.com/user/prakharai/internal/telegram"
	"github.com/user/prakharai/internal/types"
)

var chatSessionID string

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatSessionID, "session", "", "resume an existing session by ID")
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat with Prakhar AI",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Timer expiry rings the terminal bell and prints a line.
	a.deliver.Register("terminal", func(message string) error {
		fmt.Printf("\a\n[%s]\n> ", message)
		return nil
	})
	if err := a.timers.Start(); err != nil {
		return fmt.Errorf("start timers: %w", err)
	}
	defer a.timers.Stop()

	// Optional Telegram front end shares the orchestrator and timers.
	if a.cfg.Telegram.Token != "" {
		adapter, err := telegram.New(a.cfg.Telegram.Token, a.orch, a.sessions)
		if err != nil {
			slog.Error("telegram adapter disabled", "error", err)
		} else {
			a.deliver.Register("telegram", adapter.Broadcast)
			go adapter.Start(ctx)
			slog.Info("telegram adapter started")
		}
	}

	conv := chat.NewConversation()
	if chatSessionID != "" {
		sess, ok := a.sessions.Get(types.SessionID(chatSessionID))
		if !ok {
			return fmt.Errorf("session not found: %s", chatSessionID)
		}
		conv = chat.ResumeConversation(sess)
		a.sessions.SetActive(sess.ID)
		for _, msg := range sess.Messages {
			printMessage(msg)
		}
	} else {
		name := ""
		if u := a.users.Get(); u != nil {
			name = u.Name
		}
		fmt.Println(chat.Greeting(name))
	}

	fmt.Println(`Type a message, "/attach <path>" to include an image, "/timers" to list timers, "/new" to start over, "/quit" to exit.`)

	var pending *types.Attachment
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "/quit":
			return nil
		case line == "/new":
			conv = chat.NewConversation()
			a.sessions.SetActive("")
			pending = nil
			fmt.Println("Starting a new chat.")
			fmt.Print("> ")
			continue
		case line == "/timers":
			timers := a.timers.List()
			if len(timers) == 0 {
				fmt.Println("No timers.")
			}
			for _, t := range timers {
				state := fmt.Sprintf("%ds left", t.Remaining)
				if !t.IsActive {
					state = "done"
				}
				fmt.Printf("%s: %s\n", t.Label, state)
			}
			fmt.Print("> ")
			continue
		case strings.HasPrefix(line, "/attach "):
			att, err := loadAttachment(strings.TrimSpace(strings.TrimPrefix(line, "/attach ")))
			if err != nil {
				fmt.Println(err)
			} else {
				pending = att
				fmt.Println("Image attached to the next message.")
			}
			fmt.Print("> ")
			continue
		}

		image := pending
		pending = nil

		_, err := a.orch.SendTurn(ctx, conv, line, image,
			chat.WithOnDelta(func(fragment string) {
				fmt.Print(fragment)
			}),
		)
		switch {
		case err == chat.ErrEmptyTurn:
			fmt.Println("Type a message or attach an image first.")
		case err != nil:
			// The fallback reply is already committed; surface the
			// error inline and keep the session.
			fmt.Println(fallbackNotice(err))
		default:
			fmt.Println()
		}
		fmt.Print("> ")
	}
	return scanner.Err()
}

func fallbackNotice(err error) string {
	return fmt.Sprintf("Something went wrong (%v). Let's try that again.", err)
}

func printMessage(msg types.ChatMessage) {
	prefix := "You"
	if msg.Role == types.RoleModel {
		prefix = "Prakhar AI"
	}
	if msg.Image != nil {
		fmt.Printf("%s: [image] %s\n", prefix, msg.Text)
		return
	}
	fmt.Printf("%s: %s\n", prefix, msg.Text)
}
