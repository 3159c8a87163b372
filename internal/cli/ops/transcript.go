package ops

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

// TranscriptItem represents a transcript turn in API responses.
type TranscriptItem struct {
	ID        string `json:"id"`
	AgentID   string `json:"agent_id"`
	SessionID string `json:"session_id"`
	RoomName  string `json:"room_name"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// TranscriptCmd creates the transcript parent command.
func TranscriptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcript",
		Short: "Inspect conversation transcripts",
		Long:  "List the transcript turns recorded for a session or room",
	}

	cmd.AddCommand(TranscriptListCmd())

	return cmd
}

// TranscriptListCmd creates the transcript list command.
func TranscriptListCmd() *cobra.Command {
	var (
		sessionID string
		roomName  string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transcript turns",
		Long:  "Lists transcript turns filtered by session ID or room name.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runTranscriptList(sessionID, roomName, limit, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Filter by session ID")
	cmd.Flags().StringVarP(&roomName, "room", "r", "", "Filter by room name")
	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "Maximum number of results")

	return cmd
}

func runTranscriptList(sessionID, roomName string, limit int, outputJSON bool) error {
	if sessionID == "" && roomName == "" {
		return fmt.Errorf("either --session or --room is required")
	}

	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	q := url.Values{}
	if sessionID != "" {
		q.Set("session", sessionID)
	}
	if roomName != "" {
		q.Set("room", roomName)
	}
	q.Set("limit", fmt.Sprintf("%d", limit))

	resp, err := api.Get("/transcripts?" + q.Encode())
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	var turns []TranscriptItem
	if err := json.Unmarshal(resp.Data, &turns); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(turns, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(turns) == 0 {
		fmt.Println("No transcript turns found.")
		return nil
	}

	for _, turn := range turns {
		fmt.Printf("[%s] %s: %s\n", turn.CreatedAt, turn.Role, turn.Content)
	}

	return nil
}
