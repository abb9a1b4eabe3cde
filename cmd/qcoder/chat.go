package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	lipgloss "github.com/charmbracelet/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/qcoder/qcoder/internal/conversation"
	"github.com/qcoder/qcoder/internal/core"
	"github.com/qcoder/qcoder/internal/providers"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Args:  cobra.NoArgs,
		RunE:  runChatCmd,
	}

	cmd.Flags().String("model", "", "override the configured model")
	cmd.Flags().String("system", "", "system prompt for a new conversation")
	cmd.Flags().String("resume", "", "checkpoint name to resume from")

	return cmd
}

func runChatCmd(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	modelOverride, _ := cmd.Flags().GetString("model")
	systemPrompt, _ := cmd.Flags().GetString("system")
	resumeName, _ := cmd.Flags().GetString("resume")

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	model := cfg.Model
	if modelOverride != "" {
		model = modelOverride
	}

	client := providers.NewOpenAIClient(providers.OpenAIConfig{
		Endpoint: cfg.Endpoint,
		APIKey:   cfg.APIKey,
		Model:    model,
	})
	svc := buildService(cfg, client)

	var state *conversation.State
	if resumeName != "" {
		state, err = svc.Resume(resumeName)
		if err != nil {
			if errors.Is(err, core.ErrCheckpointNotFound) {
				return fmt.Errorf("no checkpoint named %q; run `qcoder checkpoint list`", resumeName)
			}
			return err
		}
		lipgloss.Printf("%s %s (%d messages)\n",
			styleSuccess.Render("Resumed"), resumeName, state.Summary().TotalMessages)
	} else {
		state = svc.NewConversation(systemPrompt)
	}

	lipgloss.Println(styleDim.Render("Model: " + model))
	lipgloss.Println(styleDim.Render("Type a message, or /help for commands."))

	session := chatSession{
		svc:    svc,
		state:  state,
		client: client,
		sampling: providers.SamplingParams{
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		},
	}
	return session.loop()
}

type chatSession struct {
	svc      *conversation.Service
	state    *conversation.State
	client   *providers.OpenAIClient
	sampling providers.SamplingParams
}

func (cs *chatSession) loop() error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		lipgloss.Print(stylePrompt.Render("\n> "))

		if !scanner.Scan() {
			cs.finish()
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if done := cs.handleCommand(input); done {
				cs.finish()
				return nil
			}
			continue
		}

		cs.turn(input)
	}
}

// turn runs one user/assistant exchange: append the user message, trim to
// budget, call the completion endpoint, append the reply.
func (cs *chatSession) turn(input string) {
	if _, err := cs.state.AddMessage(core.RoleUser, input, nil); err != nil {
		lipgloss.Println(styleError.Render(err.Error()))
		return
	}

	messages := cs.svc.PrepareForAPI(cs.state)

	reply, err := cs.client.Complete(messages, cs.sampling)
	if err != nil {
		lipgloss.Println(styleError.Render(err.Error()))
		return
	}

	if _, err := cs.state.AddMessage(core.RoleAssistant, reply, nil); err != nil {
		lipgloss.Println(styleError.Render(err.Error()))
		return
	}

	lipgloss.Println(styleAssistant.Render(reply))
}

func (cs *chatSession) handleCommand(input string) (done bool) {
	fields := strings.Fields(input)

	switch fields[0] {
	case "/help":
		cs.printHelp()
	case "/clear":
		cs.state.Clear(true)
		lipgloss.Println(styleSuccess.Render("Conversation cleared (system prompt kept)."))
	case "/save":
		name := ""
		if len(fields) > 1 {
			name = fields[1]
		}
		cs.save(name)
	case "/summary":
		cs.printSummary()
	case "/exit", "/quit":
		return true
	default:
		lipgloss.Println(styleWarning.Render("Unknown command " + fields[0] + "; try /help."))
	}

	return false
}

func (cs *chatSession) printHelp() {
	lipgloss.Println(kvLine("/help", "show this help"))
	lipgloss.Println(kvLine("/clear", "clear history, keeping the system prompt"))
	lipgloss.Println(kvLine("/save [name]", "save a checkpoint (defaults to the conversation id)"))
	lipgloss.Println(kvLine("/summary", "show conversation summary"))
	lipgloss.Println(kvLine("/exit", "save and leave the session"))
}

func (cs *chatSession) printSummary() {
	summary := cs.state.Summary()

	lipgloss.Println(kvLine("Conversation", string(summary.ID)))
	lipgloss.Println(kvLine("Messages", fmt.Sprintf("%d", summary.TotalMessages)))
	for _, role := range []core.Role{core.RoleSystem, core.RoleUser, core.RoleAssistant} {
		if n := summary.CountsByRole[role]; n > 0 {
			lipgloss.Println(kvLine("  "+string(role), fmt.Sprintf("%d", n)))
		}
	}
	lipgloss.Println(kvLine("Cost", fmt.Sprintf("%d / %d", cs.state.TotalCost(), cs.state.BudgetLimit())))
	lipgloss.Println(kvLine("Updated", formatTime(cs.state.UpdatedAt())))
}

func (cs *chatSession) save(name string) {
	path, err := cs.svc.Save(cs.state, name)
	if err != nil {
		lipgloss.Println(styleError.Render("save failed: " + err.Error()))
		return
	}

	lipgloss.Printf("%s %s\n", styleSuccess.Render("Saved"), path)
}

// finish checkpoints the session on the way out so an accidental exit loses
// nothing.
func (cs *chatSession) finish() {
	if cs.state.Summary().TotalMessages == 0 {
		return
	}

	cs.save("")
}
