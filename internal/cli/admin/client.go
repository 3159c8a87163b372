package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/lhyphendixon/sidekick-forge/internal/config"
	"github.com/lhyphendixon/sidekick-forge/internal/domain"
	"github.com/lhyphendixon/sidekick-forge/internal/repository"
	"github.com/lhyphendixon/sidekick-forge/internal/service"
)

func ClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage clients",
		Long:  "Create, list and deactivate tenant clients",
	}

	cmd.AddCommand(ClientCreateCmd())
	cmd.AddCommand(ClientListCmd())
	cmd.AddCommand(ClientDeactivateCmd())

	return cmd
}

func ClientCreateCmd() *cobra.Command {
	var (
		name        string
		tier        string
		databaseURL string
	)

	cmd := &cobra.Command{
		Use:   "create <slug>",
		Short: "Create a new client",
		Long:  "Create a new tenant client with the specified slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runClientCreate(args[0], name, tier, databaseURL, outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.Flags().StringVar(&name, "name", "", "Display name (defaults to the slug)")
	cmd.Flags().StringVar(&tier, "tier", "shared", "Hosting tier (shared or dedicated)")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Dedicated database URL (required for dedicated tier)")

	return cmd
}

func runClientCreate(slug, name, tier, databaseURL, outputFormat string) error {
	ctx := context.Background()

	if name == "" {
		name = slug
	}

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	clientRepo := repository.NewClientRepository(pool)
	uuidGen := &service.DefaultUUIDGenerator{}
	authSvc := service.NewAuthService(clientRepo, nil, uuidGen)

	client, err := authSvc.CreateClient(ctx, slug, name, domain.HostingTier(tier), databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"id":         client.ID,
			"slug":       client.Slug,
			"name":       client.Name,
			"tier":       client.Tier,
			"created_at": client.CreatedAt,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Client created: %s (%s, tier: %s)\n", client.Slug, client.ID, client.Tier)
	}

	return nil
}

func ClientListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all clients",
		Long:  "List all tenant clients in the system",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runClientList(outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runClientList(outputFormat string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	clientRepo := repository.NewClientRepository(pool)

	clients, err := clientRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list clients: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(clients))
		for i, client := range clients {
			data[i] = map[string]interface{}{
				"id":         client.ID,
				"slug":       client.Slug,
				"name":       client.Name,
				"tier":       client.Tier,
				"active":     client.Active,
				"created_at": client.CreatedAt,
			}
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		if len(clients) == 0 {
			fmt.Println("No clients found")
			return nil
		}
		fmt.Println("Clients:")
		for _, client := range clients {
			status := "active"
			if !client.Active {
				status = "inactive"
			}
			fmt.Printf("  %s: %s [%s, %s] (created: %s)\n", client.ID, client.Slug, client.Tier, status,
				client.CreatedAt.Format("2006-01-02 15:04:05"))
		}
	}

	return nil
}

func ClientDeactivateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deactivate <client-id>",
		Short: "Deactivate a client",
		Long:  "Deactivate a client; its API keys stop validating but data is kept",
		Args:  cobra.ExactArgs(1),
		RunE:  runClientDeactivate,
	}

	return cmd
}

func runClientDeactivate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	clientID := args[0]

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	clientRepo := repository.NewClientRepository(pool)
	uuidGen := &service.DefaultUUIDGenerator{}
	authSvc := service.NewAuthService(clientRepo, nil, uuidGen)

	if err := authSvc.DeactivateClient(ctx, clientID); err != nil {
		return fmt.Errorf("failed to deactivate client: %w", err)
	}

	fmt.Printf("Client %s deactivated\n", clientID)
	return nil
}

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
