package ui

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/lifecoach/internal/assistant"
)

func (a *App) askCmd() *cobra.Command {
	var (
		modelFlag   string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "ask [request]",
		Short: "Ask the assistant to manage your calendar",
		Long: `Ask the assistant to read or change your calendar in plain language.

The assistant can only create, update, delete and list calendar entries.
Flexible entries and plan items are moved the same way as with
'lifecoach calendar add'.`,
		Example: `  lifecoach ask "book the dentist tomorrow at 3pm for an hour"
  lifecoach ask "what does my Friday look like?"
  lifecoach ask -i`,
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 && !interactive {
				return fmt.Errorf("a request is required (or use -i)")
			}

			model := modelFlag
			if model == "" {
				model = a.config.LLM.Model
			}
			client, err := assistant.NewClient(a.config.LLM.Provider, model, a.config.LLM.BaseURL, a.config.LLM.APIKey)
			if err != nil {
				return fmt.Errorf("creating LLM client: %w", err)
			}

			session := assistant.NewSession(
				client,
				assistant.NewToolbox(a.agenda, a.owner()),
				assistant.SystemPrompt(a.agenda.Now(), a.config.Schedule.DayStart, a.config.Schedule.DayEnd),
				a.config.LLM.MaxSteps,
			)

			ctx := context.Background()
			if len(args) > 0 {
				if err := a.askOnce(ctx, session, strings.Join(args, " ")); err != nil {
					return err
				}
			}
			if !interactive {
				return nil
			}

			reader := bufio.NewReader(os.Stdin)
			for {
				fmt.Fprint(a.out, formatHeader("> "))
				line, err := reader.ReadString('\n')
				line = strings.TrimSpace(line)
				if line == "exit" || line == "quit" || (line == "" && err != nil) {
					return nil
				}
				if line == "" {
					continue
				}
				if err := a.askOnce(ctx, session, line); err != nil {
					fmt.Fprintln(a.out, formatError(err.Error()))
				}
			}
		},
	}

	cmd.Flags().StringVar(&modelFlag, "model", "", "LLM model (default from config)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Keep the conversation open")
	return cmd
}

func (a *App) askOnce(ctx context.Context, session *assistant.Session, request string) error {
	fmt.Fprintln(a.out, formatMuted("Thinking..."))
	answer, err := session.Ask(ctx, request)
	if err != nil {
		return fmt.Errorf("assistant: %w", err)
	}
	fmt.Fprintln(a.out, answer)
	return nil
}
