package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seenimoa/nivesh/internal/agent"
)

// --- Chat Command ---

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask the assistant, or start an interactive session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		asst := a.assistant()

		if len(args) > 0 {
			res, err := asst.Chat(cmd.Context(), joinArgs(args))
			if err != nil {
				return err
			}
			fmt.Println(res.Content)
			return nil
		}
		return chatREPL(cmd, asst)
	},
}

func chatREPL(cmd *cobra.Command, asst *agent.Assistant) error {
	fmt.Println("nivesh assistant. Type /reset to clear the conversation, /quit to exit.")
	fmt.Printf("  %s\n\n", agent.AdvisorDisclaimer)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			asst.Reset()
			fmt.Println("Conversation cleared.")
			continue
		}

		res, err := asst.Chat(cmd.Context(), line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Printf("\nnivesh> %s\n\n", res.Content)
	}
}
