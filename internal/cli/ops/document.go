package ops

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// InitUploadRequest represents the document upload init API request.
type InitUploadRequest struct {
	Title       string `json:"title"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	AgentID     string `json:"agent_id,omitempty"`
}

// InitUploadResponse represents the document upload init API response.
type InitUploadResponse struct {
	DocumentID string `json:"document_id"`
	StorageKey string `json:"storage_key"`
	UploadURL  string `json:"upload_url"`
}

// CompleteUploadRequest represents the document upload completion API request.
type CompleteUploadRequest struct {
	DocumentID string `json:"document_id"`
	SHA256     string `json:"sha256"`
}

// CreateTextRequest represents the inline text document API request.
type CreateTextRequest struct {
	Title   string `json:"title"`
	Text    string `json:"text"`
	AgentID string `json:"agent_id,omitempty"`
}

// DocumentItem represents a document in API responses.
type DocumentItem struct {
	ID          string `json:"id"`
	ClientID    string `json:"client_id"`
	AgentID     string `json:"agent_id,omitempty"`
	Title       string `json:"title"`
	ContentType string `json:"content_type"`
	SHA256      string `json:"sha256,omitempty"`
	SizeBytes   int64  `json:"size_bytes,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// DocumentListResponse represents the document list API response.
type DocumentListResponse struct {
	Items   []DocumentItem `json:"items"`
	Cursor  string         `json:"cursor,omitempty"`
	HasMore bool           `json:"has_more"`
}

// DownloadURLResponse represents the download URL API response.
type DownloadURLResponse struct {
	DownloadURL string `json:"download_url"`
}

// DocumentCmd creates the document parent command.
func DocumentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "document",
		Short: "Manage knowledge documents",
		Long:  "Upload, list, download and delete the documents that feed agent knowledge",
	}

	cmd.AddCommand(DocumentAddCmd())
	cmd.AddCommand(DocumentAddTextCmd())
	cmd.AddCommand(DocumentListCmd())
	cmd.AddCommand(DocumentGetCmd())
	cmd.AddCommand(DocumentPullCmd())
	cmd.AddCommand(DocumentDeleteCmd())

	return cmd
}

// DocumentAddCmd creates the document add command.
func DocumentAddCmd() *cobra.Command {
	var (
		title   string
		agentID string
	)

	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Upload a document",
		Long:  "Uploads a file through a presigned URL and queues it for embedding.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDocumentAdd(args[0], title, agentID, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Document title (defaults to the filename)")
	cmd.Flags().StringVar(&agentID, "agent", "", "Scope the document to a single agent")

	return cmd
}

func runDocumentAdd(filePath, title, agentID string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	filename := filepath.Base(filePath)
	if title == "" {
		title = filename
	}

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	initResp, err := api.Post("/documents/init", InitUploadRequest{
		Title:       title,
		Filename:    filename,
		ContentType: contentType,
		AgentID:     agentID,
	})
	if err != nil {
		return fmt.Errorf("upload init failed: %w", err)
	}

	var init InitUploadResponse
	if err := json.Unmarshal(initResp.Data, &init); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	checksum, err := fileSHA256(filePath)
	if err != nil {
		return err
	}

	if err := api.UploadFile(init.UploadURL, filePath, contentType); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	if _, err := api.Post("/documents/complete", CompleteUploadRequest{
		DocumentID: init.DocumentID,
		SHA256:     checksum,
	}); err != nil {
		return fmt.Errorf("upload completion failed: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(map[string]string{
			"document_id": init.DocumentID,
			"sha256":      checksum,
		}, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Document uploaded: %s\n", init.DocumentID)
	fmt.Println("Embedding queued; content becomes searchable once processing completes.")
	return nil
}

func fileSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DocumentAddTextCmd creates the document add-text command.
func DocumentAddTextCmd() *cobra.Command {
	var agentID string

	cmd := &cobra.Command{
		Use:   "add-text <title> <text>",
		Short: "Add an inline text document",
		Long:  "Creates a document from inline text, skipping object storage.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDocumentAddText(args[0], args[1], agentID, outputJSON)
		},
	}

	cmd.Flags().StringVar(&agentID, "agent", "", "Scope the document to a single agent")

	return cmd
}

func runDocumentAddText(title, text, agentID string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Post("/documents", CreateTextRequest{
		Title:   title,
		Text:    text,
		AgentID: agentID,
	})
	if err != nil {
		return fmt.Errorf("create failed: %w", err)
	}

	var doc DocumentItem
	if err := json.Unmarshal(resp.Data, &doc); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(doc, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Document created: %s\n", doc.ID)
	return nil
}

// DocumentListCmd creates the document list command.
func DocumentListCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents",
		Long:  "Lists the documents uploaded for your client.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDocumentList(limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runDocumentList(limit int, cursor string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/documents?limit=%d", limit)
	if cursor != "" {
		path += "&cursor=" + cursor
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	var listResp DocumentListResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(listResp.Items) == 0 {
		fmt.Println("No documents found.")
		return nil
	}

	fmt.Printf("Found %d documents:\n\n", len(listResp.Items))
	for i, doc := range listResp.Items {
		fmt.Printf("%d. %s [%s]\n", i+1, doc.Title, doc.Status)
		fmt.Printf("   Type: %s\n", doc.ContentType)
		if doc.SizeBytes > 0 {
			fmt.Printf("   Size: %d bytes\n", doc.SizeBytes)
		}
		fmt.Printf("   ID: %s\n", doc.ID)
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

// DocumentGetCmd creates the document get command.
func DocumentGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a document",
		Long:  "Shows metadata for a single document.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDocumentGet(args[0], outputJSON)
		},
	}

	return cmd
}

func runDocumentGet(id string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/documents/" + id)
	if err != nil {
		return fmt.Errorf("get failed: %w", err)
	}

	var doc DocumentItem
	if err := json.Unmarshal(resp.Data, &doc); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(doc, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Document: %s\n", doc.Title)
	fmt.Printf("ID: %s\n", doc.ID)
	fmt.Printf("Status: %s\n", doc.Status)
	fmt.Printf("Type: %s\n", doc.ContentType)
	if doc.SizeBytes > 0 {
		fmt.Printf("Size: %d bytes\n", doc.SizeBytes)
	}
	if doc.SHA256 != "" {
		fmt.Printf("SHA256: %s\n", doc.SHA256)
	}
	if doc.AgentID != "" {
		fmt.Printf("Agent: %s\n", doc.AgentID)
	}
	fmt.Printf("Created: %s\n", doc.CreatedAt)

	return nil
}

// DocumentPullCmd creates the document pull command.
func DocumentPullCmd() *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "pull <id>",
		Short: "Download a document",
		Long:  "Downloads the original document file through a presigned URL.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocumentPull(args[0], filePath)
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Output file path (defaults to the document ID)")

	return cmd
}

func runDocumentPull(id, outputPath string) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/documents/" + id + "/download")
	if err != nil {
		return fmt.Errorf("failed to get download URL: %w", err)
	}

	var dl DownloadURLResponse
	if err := json.Unmarshal(resp.Data, &dl); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputPath == "" {
		outputPath = id
	}

	if err := api.DownloadFile(dl.DownloadURL, outputPath); err != nil {
		return err
	}

	fmt.Printf("Downloaded to %s\n", outputPath)
	return nil
}

// DocumentDeleteCmd creates the document delete command.
func DocumentDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document",
		Long:  "Deletes a document, its chunks and the stored object.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocumentDelete(args[0])
		},
	}

	return cmd
}

func runDocumentDelete(id string) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	if _, err := api.Delete("/documents/" + id); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	fmt.Printf("Document %s deleted\n", id)
	return nil
}
