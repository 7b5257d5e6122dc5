package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/lifecoach/internal/config"
)

func (a *App) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.

Example:
  lifecoach config`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runConfigInteractive()
		},
	}
}

func (a *App) runConfigInteractive() error {
	configPath := config.DefaultConfigPath()
	fmt.Fprintf(a.out, "Config file: %s\n\n", configPath)

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	_, fileErr := os.Stat(configPath)
	if os.IsNotExist(fileErr) {
		fmt.Fprintln(a.out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(a.out, "Created %s\n\n", configPath)
	}

	printConfig(a.out, cfg)

	reader := bufio.NewReader(os.Stdin)
	if !promptYesNo(reader, "\nWould you like to edit the configuration?") {
		return nil
	}

	cfg.Schedule.DayStart = promptValue(reader, "Day start", cfg.Schedule.DayStart)
	cfg.Schedule.DayEnd = promptValue(reader, "Day end", cfg.Schedule.DayEnd)
	cfg.User.Owner = promptValue(reader, "Owner", cfg.User.Owner)
	cfg.LLM.Provider = promptValue(reader, "LLM provider ("+strings.Join(config.Providers, ", ")+")", cfg.LLM.Provider)
	cfg.LLM.Model = promptValue(reader, "LLM model", cfg.LLM.Model)
	cfg.LLM.BaseURL = promptValue(reader, "LLM base URL", cfg.LLM.BaseURL)
	cfg.LLM.MaxSteps = promptInt(reader, "Assistant max steps", cfg.LLM.MaxSteps)
	cfg.Storage.DBPath = promptValue(reader, "Database path", cfg.Storage.DBPath)
	cfg.Log.Level = promptValue(reader, "Log level", cfg.Log.Level)
	cfg.Log.File = promptValue(reader, "Log file", cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(a.out, "\nConfiguration saved!")
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintln(w, "──────────────────────")
	fmt.Fprintln(w, "[schedule]")
	fmt.Fprintf(w, "  day_start = %s\n", cfg.Schedule.DayStart)
	fmt.Fprintf(w, "  day_end   = %s\n", cfg.Schedule.DayEnd)
	fmt.Fprintln(w, "\n[user]")
	fmt.Fprintf(w, "  owner     = %s\n", cfg.User.Owner)
	fmt.Fprintln(w, "\n[llm]")
	fmt.Fprintf(w, "  provider  = %s\n", cfg.LLM.Provider)
	fmt.Fprintf(w, "  model     = %s\n", cfg.LLM.Model)
	fmt.Fprintf(w, "  base_url  = %s\n", cfg.LLM.BaseURL)
	fmt.Fprintf(w, "  max_steps = %d\n", cfg.LLM.MaxSteps)
	if cfg.LLM.APIKey != "" {
		fmt.Fprintln(w, "  api_key   = (set from environment)")
	}
	fmt.Fprintln(w, "\n[storage]")
	fmt.Fprintf(w, "  db_path   = %s\n", cfg.Storage.DBPath)
	fmt.Fprintln(w, "\n[log]")
	fmt.Fprintf(w, "  level     = %s\n", cfg.Log.Level)
	fmt.Fprintf(w, "  file      = %s\n", cfg.Log.File)
}

func promptYesNo(reader *bufio.Reader, question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func promptValue(reader *bufio.Reader, label, current string) string {
	if current == "" {
		fmt.Printf("  %s: ", label)
	} else {
		fmt.Printf("  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptInt(reader *bufio.Reader, label string, current int) int {
	for {
		value := promptValue(reader, label, strconv.Itoa(current))
		n, err := strconv.Atoi(value)
		if err == nil {
			return n
		}
		fmt.Printf("  Invalid number %q\n", value)
	}
}
