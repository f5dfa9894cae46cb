package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/spf13/cobra"

	"github.com/iWorld-y/search_chat/app/search_chat/internal/service"
)

var chatMode string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat in the terminal",
	Long: `
Start an interactive chat session.

Examples:
  search_chat chat               # answers grounded in web search results
  search_chat chat --mode plain  # talk to the model directly, streamed
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cm, err := newChatModel(cmd.Context())
		if err != nil {
			return err
		}
		svc := newChatService(cm)
		return startChatLoop(cmd, svc, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatMode, "mode", "m", "rag", "chat mode: rag or plain")
}

func startChatLoop(cmd *cobra.Command, svc *service.ChatService, in io.Reader, out io.Writer) error {
	ctx := cmd.Context()
	sess, err := svc.StartSession(ctx, chatMode)
	if err != nil {
		return err
	}
	defer svc.EndSession(ctx, sess.ID)

	fmt.Fprintf(out, "=== Search Chat (%s) ===\n", sess.Mode)
	fmt.Fprintln(out, "Type 'exit' or 'quit' to end the session")
	fmt.Fprintln(out, "Type 'help' for available commands")
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(input) {
		case "exit", "quit":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		case "help":
			printChatHelp(out)
			continue
		case "":
			continue
		}

		fmt.Fprint(out, "Assistant: ")
		err := svc.StreamMessage(ctx, sess.ID, input, func(token string) error {
			_, err := fmt.Fprint(out, token)
			return err
		})
		if err != nil {
			fmt.Fprintf(out, "%s\n\n", kerrors.FromError(err).Message)
			continue
		}
		fmt.Fprint(out, "\n\n")
	}
	return scanner.Err()
}

func printChatHelp(out io.Writer) {
	fmt.Fprintln(out, "Available commands:")
	fmt.Fprintln(out, "  help        Show this help message")
	fmt.Fprintln(out, "  exit, quit  End the chat session")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Every message is answered on its own; earlier turns are not sent to the model.")
	fmt.Fprintln(out)
}
