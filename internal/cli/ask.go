package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"carbon-chat-go/internal/interpreter"
)

// NewAskCmd creates the ask command, which answers a single message.
func NewAskCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ask <message...>",
		Short: "Answer one message and exit",
		Example: `  carbonchat ask car 50km and bike 20km
  carbonchat ask --json "electricity 100kwh"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reply := interpreter.Interpret(strings.Join(args, " "))
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(reply)
			}
			printReply(cmd, reply)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the reply as JSON")
	return cmd
}

func printReply(cmd *cobra.Command, reply interpreter.Reply) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, reply.Text)
	if len(reply.Suggestions) > 0 {
		fmt.Fprintln(out, "\nTry one of:")
		for _, s := range reply.Suggestions {
			fmt.Fprintf(out, "  - %s\n", s)
		}
	}
}
