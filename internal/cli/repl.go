package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"carbon-chat-go/internal/interpreter"
	"carbon-chat-go/internal/model"
	"carbon-chat-go/internal/service"
)

// NewReplCmd creates the interactive chat loop. The transcript lives in memory only.
func NewReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Chat interactively",
		Long: `Starts an interactive chat. Type a message and press enter.

Commands:
  /history      print the transcript so far
  /suggestions  print example questions
  /quit         leave (exit also works)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRepl(cmd)
		},
	}
}

func runRepl(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	transcript := []model.ChatMessage{{Text: service.WelcomeMessage, Sender: model.SenderBot, Timestamp: time.Now()}}
	fmt.Fprintf(out, "bot> %s\n", service.WelcomeMessage)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "exit":
			return nil
		case "/history":
			for _, m := range transcript {
				fmt.Fprintf(out, "[%s] %s: %s\n", m.Timestamp.Format("15:04:05"), m.Sender, m.Text)
			}
			continue
		case "/suggestions":
			for _, s := range interpreter.Suggestions() {
				fmt.Fprintf(out, "  - %s\n", s)
			}
			continue
		}

		reply := interpreter.Interpret(line)
		transcript = append(transcript,
			model.ChatMessage{Text: line, Sender: model.SenderUser, Timestamp: time.Now()},
			model.ChatMessage{Text: reply.Text, Sender: model.SenderBot, Timestamp: time.Now()},
		)
		fmt.Fprintf(out, "bot> %s\n", reply.Text)
		for _, s := range reply.Suggestions {
			fmt.Fprintf(out, "  - %s\n", s)
		}
	}
}
