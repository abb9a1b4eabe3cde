package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	lipgloss "github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/qcoder/qcoder/internal/checkpoint"
	"github.com/qcoder/qcoder/internal/core"
)

func newCheckpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Conversation checkpoint commands",
	}

	cmd.AddCommand(newCheckpointListCmd())
	cmd.AddCommand(newCheckpointShowCmd())
	cmd.AddCommand(newCheckpointDeleteCmd())

	return cmd
}

func newCheckpointListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved conversations",
		Args:  cobra.NoArgs,
		RunE:  runCheckpointListCmd,
	}
}

func runCheckpointListCmd(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	svc := buildService(cfg, nil)

	list, skipped, err := svc.List()
	if err != nil {
		return err
	}

	if len(list) == 0 {
		lipgloss.Println(styleDim.Render("No checkpoints found."))
	} else {
		printCheckpointTable(list)
	}

	if skipped > 0 {
		lipgloss.Println(styleWarning.Render(fmt.Sprintf("Skipped %d unreadable checkpoint file(s).", skipped)))
	}

	return nil
}

func printCheckpointTable(list []checkpoint.Entry) {
	t := table.New().
		Headers("NAME", "CONVERSATION", "MESSAGES", "UPDATED").
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(true).
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	for _, entry := range list {
		t.Row(entry.Name,
			string(entry.ConversationID),
			fmt.Sprintf("%d", entry.MessageCount),
			formatTime(entry.UpdatedAt))
	}

	lipgloss.Println(t.Render())
}

func newCheckpointShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a saved conversation",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheckpointShowCmd,
	}
}

func runCheckpointShowCmd(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	svc := buildService(cfg, nil)

	state, err := svc.Resume(args[0])
	if err != nil {
		if errors.Is(err, core.ErrCheckpointNotFound) {
			return fmt.Errorf("no checkpoint named %q", args[0])
		}
		return err
	}

	summary := state.Summary()
	lipgloss.Println(kvLine("Checkpoint", args[0]))
	lipgloss.Println(kvLine("Conversation", string(summary.ID)))
	lipgloss.Println(kvLine("Messages", fmt.Sprintf("%d", summary.TotalMessages)))
	lipgloss.Println(kvLine("Created", summary.CreatedAt.Format(time.RFC3339)))
	lipgloss.Println(kvLine("Updated", summary.UpdatedAt.Format(time.RFC3339)))
	lipgloss.Println("")

	for _, msg := range state.Messages() {
		header := roleStyle(string(msg.Role)).Render(string(msg.Role)) +
			" " + styleDim.Render(msg.Timestamp.Format(time.RFC3339))
		lipgloss.Println(header)
		lipgloss.Println(msg.Content)
		lipgloss.Println("")
	}

	return nil
}

func newCheckpointDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved conversation",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheckpointDeleteCmd,
	}

	cmd.Flags().Bool("force", false, "delete without confirmation")

	return cmd
}

func runCheckpointDeleteCmd(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	name := args[0]
	force, _ := cmd.Flags().GetBool("force")

	if !force {
		if !isInteractive() {
			return fmt.Errorf("refusing to delete %q without --force in a non-interactive session", name)
		}

		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete checkpoint %q?", name)).
			Value(&confirmed).
			Run()
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
		if !confirmed {
			return nil
		}
	}

	svc := buildService(cfg, nil)

	if err := svc.Delete(name); err != nil {
		if errors.Is(err, core.ErrCheckpointNotFound) {
			return fmt.Errorf("no checkpoint named %q", name)
		}
		return err
	}

	lipgloss.Printf("%s checkpoint %s\n", styleSuccess.Render("Deleted"), name)
	return nil
}
