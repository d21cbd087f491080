package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/transcript/internal/config"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		scanner := bufio.NewScanner(os.Stdin)

		fmt.Println("Transcript Setup Wizard")
		fmt.Println("Press Enter to accept the default value shown in brackets.")
		fmt.Println()

		cfg.Fetch.BaseURL = prompt(scanner, "Events API base URL (optional)", cfg.Fetch.BaseURL)
		if cfg.Fetch.BaseURL != "" {
			cfg.Fetch.APIKey = prompt(scanner, "Events API key (optional)", cfg.Fetch.APIKey)
			convs := prompt(scanner, "Conversations to poll (comma separated)", strings.Join(cfg.Fetch.Conversations, ","))
			cfg.Fetch.Conversations = splitList(convs)
		}

		cfg.Telegram.Token = prompt(scanner, "Telegram bot token (optional)", cfg.Telegram.Token)

		enabled := prompt(scanner, "Enable HTTP ingest server (y/n)", yesNo(cfg.HTTP.Enabled))
		cfg.HTTP.Enabled = strings.HasPrefix(strings.ToLower(enabled), "y")
		if cfg.HTTP.Enabled {
			cfg.HTTP.Listen = prompt(scanner, "HTTP listen address", cfg.HTTP.Listen)
		}

		widthStr := prompt(scanner, "List width in points", strconv.FormatFloat(cfg.Render.Width, 'f', -1, 64))
		if w, err := strconv.ParseFloat(widthStr, 64); err == nil && w > 0 {
			cfg.Render.Width = w
		}

		cfg.Timeline.SectionThreshold = prompt(scanner, "Section threshold", cfg.Timeline.SectionThreshold)

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Println()
		fmt.Println("Configuration saved to", cfgPath)
		return nil
	},
}

// prompt displays a labeled prompt with a default value and reads user input.
// If the user enters nothing, the default is returned.
func prompt(scanner *bufio.Scanner, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("%s: ", label)
	}
	if scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input != "" {
			return input
		}
	}
	return defaultVal
}

func yesNo(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
