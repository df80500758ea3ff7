package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Annany2002/sql-sketcher-backend/api/models"
	"github.com/Annany2002/sql-sketcher-backend/config"
	"github.com/Annany2002/sql-sketcher-backend/internal/auth"
	"github.com/Annany2002/sql-sketcher-backend/internal/logger"
	"github.com/Annany2002/sql-sketcher-backend/internal/sqlgen"
)

type configLoader func() (*config.Config, error)

func loadConfig() (*config.Config, error) {
	return config.LoadConfig()
}

func newRootCmd(load configLoader) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sqlsketch",
		Short: "Offline tools for the SQL Sketcher backend",
		Long: `sqlsketch renders the deterministic SQL script for a schema file without
calling the model service, and mints bearer tokens for local testing.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		// stdout carries only command output so it can be captured by scripts
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.NewLogger().SetOutput(cmd.ErrOrStderr())
		},
	}

	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newTokenCmd(load))
	return rootCmd
}

func newRenderCmd() *cobra.Command {
	var (
		file        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render SQL for a JSON schema file",
		Long: `Reads {"tables": [...], "description": "..."} from --file ("-" for stdin)
and prints the script the service produces in test mode. Without tables the default
usuarios table is emitted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := readSchema(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("description") {
				req.Description = description
			}

			script, err := sqlgen.Render(models.ToDomain(req.Tables), req.Description, time.Now())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), script)
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", `schema file, "-" reads stdin`)
	cmd.Flags().StringVarP(&description, "description", "d", "", "description written into the header")
	return cmd
}

func newTokenCmd(load configLoader) *cobra.Command {
	var (
		userID string
		email  string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(email) == "" {
				return fmt.Errorf("--email is required")
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			if userID == "" {
				userID = uuid.NewString()
			}
			if ttl <= 0 {
				ttl = cfg.JWTExpiration
			}

			token, err := auth.GenerateJWT(userID, strings.ToLower(strings.TrimSpace(email)), cfg.JWTSecret, ttl)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "user id claim (random uuid when empty)")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to JWT_EXPIRATION_HOURS)")
	return cmd
}

// readSchema decodes and validates a schema file with the same rules the API applies.
func readSchema(stdin io.Reader, file string) (models.GenerateRequest, error) {
	var req models.GenerateRequest
	if file == "" {
		return req, nil
	}

	var reader io.Reader = stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return req, fmt.Errorf("failed to open schema file: %w", err)
		}
		defer f.Close()
		reader = f
	}

	if err := json.NewDecoder(reader).Decode(&req); err != nil {
		return req, fmt.Errorf("invalid schema JSON: %w", err)
	}

	validate := validator.New()
	validate.SetTagName("binding")
	if err := validate.Struct(req); err != nil {
		return req, fmt.Errorf("invalid schema: %w", err)
	}
	return req, nil
}
