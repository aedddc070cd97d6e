package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/fenny-ai/fenny/pkg/fenny/assistant"
	"github.com/fenny-ai/fenny/pkg/fenny/config"
	"github.com/fenny-ai/fenny/pkg/fenny/llm"
	"github.com/fenny-ai/fenny/pkg/fenny/session"
	"github.com/fenny-ai/fenny/pkg/fenny/tools"
)

// newChatCmd creates the `fenny chat` command for talking to the assistant
// without the HTTP layer.
func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat with the assistant from the terminal",
		Long: `Talk to the assistant directly, in-process. With a message argument
a single reply is printed; without one an interactive session starts.

Examples:
  fenny chat "What is the AAPL stock price?"
  fenny chat`,
		Args: cobra.MaximumNArgs(1),
		RunE: runChat,
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger := buildLogger(cmd, cfg)
	config.ResolveSecrets(cfg, logger)

	store := session.NewStore(cfg.Session.SessionExpiry(), logger)
	registry := tools.NewRegistry(cfg.Tools, nil, logger)
	executor := tools.NewExecutor(registry, logger)
	llmClient := llm.NewClient(cfg.LLM, logger)
	asst := assistant.New(assistant.NewKeywordClassifier(), registry, executor, llmClient, logger)

	ctx := context.Background()
	sess := store.Create()

	ask := func(message string) {
		sess.AddMessage(session.RoleUser, message)
		reply := asst.Respond(ctx, sess, message)
		sess.AddMessage(session.RoleAssistant, reply)
		fmt.Println(reply)
	}

	if len(args) > 0 {
		ask(args[0])
		return nil
	}

	rl, err := readline.New("fenny> ")
	if err != nil {
		return fmt.Errorf("starting interactive mode: %w", err)
	}
	defer rl.Close()

	fmt.Println("Interactive chat. Type /quit to exit, /clear to start over.")
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		message := strings.TrimSpace(line)
		switch message {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			store.Delete(sess.ID)
			sess = store.Create()
			fmt.Println("Conversation cleared.")
			continue
		}
		ask(message)
	}
}
