package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/agentops-cli/internal/memory"
)

var memoryFormat string

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect or clear session memory",
}

var memoryShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored session memory",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := memoryStore()
		if err != nil {
			return err
		}
		rec, err := store.Load()
		if err != nil {
			if !errors.Is(err, memory.ErrCorrupt) {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %v\n", err)
		}
		return writeOutput(cmd.OutOrStdout(), rec, memoryFormat)
	},
}

var memoryClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the session memory file",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := memoryStore()
		if err != nil {
			return err
		}
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared %s\n", store.Path())
		return nil
	},
}

func memoryStore() (*memory.Store, error) {
	path := currentConfig().MemoryFile
	if path == "" {
		return nil, errors.New("memory_file is not configured")
	}
	return memory.NewStore(path), nil
}

func init() {
	rootCmd.AddCommand(memoryCmd)
	memoryCmd.AddCommand(memoryShowCmd)
	memoryCmd.AddCommand(memoryClearCmd)
	memoryShowCmd.Flags().StringVar(&memoryFormat, "format", "json", "output format: json or yaml")
}
