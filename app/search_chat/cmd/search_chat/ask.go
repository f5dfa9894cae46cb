package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/search_chat/app/search_chat/pkg/engine"
)

var askCmd = &cobra.Command{
	Use:     "ask <question>",
	Short:   "Answer one question from live web search results",
	Example: `  search_chat ask "What is the capital of France?"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cm, err := newChatModel(cmd.Context())
		if err != nil {
			return err
		}
		eng, err := engine.NewEngine(cfg, cm)
		if err != nil {
			return err
		}

		answer, err := eng.Run(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer.Reply())
		return nil
	},
}
