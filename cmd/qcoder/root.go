package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qcoder/qcoder/internal/checkpoint"
	"github.com/qcoder/qcoder/internal/config"
	"github.com/qcoder/qcoder/internal/conversation"
	"github.com/qcoder/qcoder/internal/providers"
)

func execute() {
	rootCmd := &cobra.Command{
		Use:   "qcoder",
		Short: "AI-assisted coding assistant",
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file")

	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newCheckpointCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	configPath := path

	if configPath == "" {
		configPath = config.DefaultPath()
	}

	return config.LoadOrCreate(configPath)
}

// buildService wires the checkpoint store, the tokenizer-backed cost model
// and the budget from config into a conversation service.
func buildService(cfg config.Config, client *providers.OpenAIClient) *conversation.Service {
	store := &checkpoint.FileStore{BaseDir: cfg.DataDir}

	var cost conversation.CostModel = conversation.CharCost{}
	if client != nil {
		cost = conversation.TokenizerCost{Counter: client}
	}

	return conversation.NewService(store, cost, cfg.MaxContextLength)
}
