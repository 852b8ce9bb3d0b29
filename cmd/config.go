package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/chartloom/chartloom/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Chartloom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("agent_url: %s\n", cfg.AgentURL)
		fmt.Printf("agent_api_key: %s\n", mask(cfg.AgentAPIKey))
		if cfg.AgentID != "" {
			fmt.Printf("agent_id: %s\n", cfg.AgentID)
		}
		if cfg.AgentAliasID != "" {
			fmt.Printf("agent_alias_id: %s\n", cfg.AgentAliasID)
		}
		fmt.Printf("max_rows: %d\n", cfg.MaxRows)
		fmt.Printf("http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		fmt.Printf("retry_max_attempts: %d\n", cfg.RetryMaxAttempts)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "agent_url":
			cfg.AgentURL = val
		case "agent_api_key":
			cfg.AgentAPIKey = val
		case "agent_id":
			cfg.AgentID = val
		case "agent_alias_id":
			cfg.AgentAliasID = val
		case "max_rows":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for max_rows: %v", val)
			}
			cfg.MaxRows = i
		case "http_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for http_timeout_sec: %w", err)
			}
			cfg.HTTPTimeoutSec = i
		case "retry_max_attempts":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for retry_max_attempts: %w", err)
			}
			cfg.RetryMaxAttempts = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
