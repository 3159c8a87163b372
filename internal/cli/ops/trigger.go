package ops

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// TriggerRequest represents the trigger API request.
type TriggerRequest struct {
	UserIdentity string `json:"user_identity"`
	UserName     string `json:"user_name,omitempty"`
}

// TriggerResponse represents the trigger API response.
type TriggerResponse struct {
	SessionID  string `json:"session_id"`
	RoomName   string `json:"room_name"`
	LiveKitURL string `json:"livekit_url"`
	UserToken  string `json:"user_token"`
	AgentID    string `json:"agent_id"`
	AgentName  string `json:"agent_name"`
	StartedAt  string `json:"started_at"`
}

// PreviewRequest represents the preview API request.
type PreviewRequest struct {
	Message string `json:"message"`
}

// PreviewResponse represents the preview API response.
type PreviewResponse struct {
	Reply     string `json:"reply"`
	AgentID   string `json:"agent_id"`
	AgentName string `json:"agent_name"`
}

// SessionItem represents a running session in API responses.
type SessionItem struct {
	SessionID string `json:"session_id"`
	AgentID   string `json:"agent_id"`
	RoomName  string `json:"room_name"`
	StartedAt string `json:"started_at"`
}

// TriggerCmd creates the trigger command.
func TriggerCmd() *cobra.Command {
	var (
		identity string
		userName string
	)

	cmd := &cobra.Command{
		Use:   "trigger <agent-slug>",
		Short: "Start a voice session",
		Long:  "Provisions a LiveKit room, dispatches the agent worker and prints join credentials.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runTrigger(args[0], identity, userName, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&identity, "identity", "i", "", "User identity to join the room as (required)")
	cmd.Flags().StringVar(&userName, "name", "", "Display name for the user")
	cmd.MarkFlagRequired("identity")

	return cmd
}

func runTrigger(slug, identity, userName string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	req := TriggerRequest{
		UserIdentity: identity,
		UserName:     userName,
	}

	resp, err := api.Post("/agents/"+slug+"/trigger", req)
	if err != nil {
		return fmt.Errorf("trigger failed: %w", err)
	}

	var trigResp TriggerResponse
	if err := json.Unmarshal(resp.Data, &trigResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(trigResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Session started for agent %s\n", trigResp.AgentName)
	fmt.Printf("Session ID: %s\n", trigResp.SessionID)
	fmt.Printf("Room: %s\n", trigResp.RoomName)
	fmt.Printf("LiveKit URL: %s\n", trigResp.LiveKitURL)
	fmt.Printf("User token: %s\n", trigResp.UserToken)

	return nil
}

// PreviewCmd creates the preview command.
func PreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <agent-slug> <message>",
		Short: "Send a text message to an agent",
		Long:  "Runs a single text turn against the agent's LLM without starting a voice session.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runPreview(args[0], args[1], outputJSON)
		},
	}

	return cmd
}

func runPreview(slug, message string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Post("/agents/"+slug+"/preview", PreviewRequest{Message: message})
	if err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}

	var prevResp PreviewResponse
	if err := json.Unmarshal(resp.Data, &prevResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(prevResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("%s: %s\n", prevResp.AgentName, prevResp.Reply)
	return nil
}

// SessionCmd creates the session parent command.
func SessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage running sessions",
		Long:  "List and stop running voice sessions",
	}

	cmd.AddCommand(SessionListCmd())
	cmd.AddCommand(SessionStopCmd())

	return cmd
}

// SessionListCmd creates the session list command.
func SessionListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List running sessions",
		Long:  "Lists the currently running voice sessions for your client.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSessionList(outputJSON)
		},
	}

	return cmd
}

func runSessionList(outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/sessions")
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	var sessions []SessionItem
	if err := json.Unmarshal(resp.Data, &sessions); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(sessions, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(sessions) == 0 {
		fmt.Println("No running sessions.")
		return nil
	}

	fmt.Printf("Found %d running sessions:\n\n", len(sessions))
	for i, s := range sessions {
		fmt.Printf("%d. %s\n", i+1, s.SessionID)
		fmt.Printf("   Room: %s\n", s.RoomName)
		fmt.Printf("   Agent: %s\n", s.AgentID)
		fmt.Printf("   Started: %s\n", s.StartedAt)
		if i < len(sessions)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}

// SessionStopCmd creates the session stop command.
func SessionStopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop <session-id>",
		Short: "Stop a running session",
		Long:  "Stops the agent worker and deletes the LiveKit room for a session.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionStop(args[0])
		},
	}

	return cmd
}

func runSessionStop(sessionID string) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	if _, err := api.Delete("/sessions/" + sessionID); err != nil {
		return fmt.Errorf("stop failed: %w", err)
	}

	fmt.Printf("Session %s stopped\n", sessionID)
	return nil
}
