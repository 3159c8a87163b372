package ops

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// VoiceConfig mirrors the voice pipeline block of an agent.
type VoiceConfig struct {
	LLMProvider string  `json:"llm_provider"`
	LLMModel    string  `json:"llm_model"`
	STTProvider string  `json:"stt_provider"`
	STTModel    string  `json:"stt_model"`
	TTSProvider string  `json:"tts_provider"`
	TTSVoiceID  string  `json:"tts_voice_id"`
	Temperature float64 `json:"temperature"`
}

// AgentItem represents a single agent in API responses.
type AgentItem struct {
	ID           string      `json:"id"`
	ClientID     string      `json:"client_id"`
	Slug         string      `json:"slug"`
	Name         string      `json:"name"`
	SystemPrompt string      `json:"system_prompt"`
	Voice        VoiceConfig `json:"voice"`
	Enabled      bool        `json:"enabled"`
	CreatedAt    string      `json:"created_at"`
	UpdatedAt    string      `json:"updated_at"`
}

// AgentListResponse represents the agent list API response.
type AgentListResponse struct {
	Items   []AgentItem `json:"items"`
	Cursor  string      `json:"cursor,omitempty"`
	HasMore bool        `json:"has_more"`
}

// AgentCmd creates the agent parent command.
func AgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage agents",
		Long:  "List and inspect the agents configured for your client",
	}

	cmd.AddCommand(AgentListCmd())
	cmd.AddCommand(AgentGetCmd())

	return cmd
}

// AgentListCmd creates the agent list command.
func AgentListCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List agents",
		Long:  "Lists the agents configured for your client.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAgentList(limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runAgentList(limit int, cursor string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/agents?limit=%d", limit)
	if cursor != "" {
		path += "&cursor=" + cursor
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	var listResp AgentListResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(listResp.Items) == 0 {
		fmt.Println("No agents found.")
		return nil
	}

	fmt.Printf("Found %d agents:\n\n", len(listResp.Items))
	for i, agent := range listResp.Items {
		status := "enabled"
		if !agent.Enabled {
			status = "disabled"
		}
		fmt.Printf("%d. %s [%s]\n", i+1, agent.Name, status)
		fmt.Printf("   Slug: %s\n", agent.Slug)
		fmt.Printf("   LLM: %s/%s\n", agent.Voice.LLMProvider, agent.Voice.LLMModel)
		fmt.Printf("   STT: %s/%s, TTS: %s/%s\n",
			agent.Voice.STTProvider, agent.Voice.STTModel,
			agent.Voice.TTSProvider, agent.Voice.TTSVoiceID)
		fmt.Printf("   ID: %s\n", agent.ID)
		if i < len(listResp.Items)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	if listResp.HasMore && listResp.Cursor != "" {
		fmt.Printf("\n%s\n", strings.Repeat("-", 40))
		fmt.Printf("More results available. Use --cursor %s\n", listResp.Cursor)
	}

	return nil
}

// AgentGetCmd creates the agent get command.
func AgentGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <slug>",
		Short: "Show an agent",
		Long:  "Shows full configuration for a single agent.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAgentGet(args[0], outputJSON)
		},
	}

	return cmd
}

func runAgentGet(slug string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/agents/" + slug)
	if err != nil {
		return fmt.Errorf("get failed: %w", err)
	}

	var agent AgentItem
	if err := json.Unmarshal(resp.Data, &agent); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(agent, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	status := "enabled"
	if !agent.Enabled {
		status = "disabled"
	}
	fmt.Printf("Agent: %s [%s]\n", agent.Name, status)
	fmt.Printf("Slug: %s\n", agent.Slug)
	fmt.Printf("ID: %s\n", agent.ID)
	fmt.Printf("LLM: %s/%s (temperature %.2f)\n", agent.Voice.LLMProvider, agent.Voice.LLMModel, agent.Voice.Temperature)
	fmt.Printf("STT: %s/%s\n", agent.Voice.STTProvider, agent.Voice.STTModel)
	fmt.Printf("TTS: %s (voice %s)\n", agent.Voice.TTSProvider, agent.Voice.TTSVoiceID)
	if agent.SystemPrompt != "" {
		prompt := agent.SystemPrompt
		if len(prompt) > 200 {
			prompt = prompt[:197] + "..."
		}
		fmt.Printf("System prompt: %s\n", prompt)
	}
	fmt.Printf("Created: %s\n", agent.CreatedAt)

	return nil
}
