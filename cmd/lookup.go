package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"resolver/internal/config"
	"resolver/internal/resolver"
	"resolver/pkg/archive"
	"resolver/pkg/domain"
	"resolver/pkg/logger"
	"resolver/pkg/registry/handelsregister"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// documentTypes converts the configured document type codes, dropping codes
// the portal does not know.
func documentTypes(cfg *config.Config) []domain.DocumentType {
	var types []domain.DocumentType
	for _, s := range cfg.Resolver.DocumentTypes {
		dt, ok := domain.ParseDocumentType(strings.ToUpper(strings.TrimSpace(s)))
		if !ok {
			logger.Warn(context.Background(), "ignoring unknown document type", zap.String("type", s))

			continue
		}
		types = append(types, dt)
	}

	return types
}

// lookupCommand constructs the 'lookup' subcommand that resolves a single
// company directly against the portal, without database or queue, and prints
// the result as JSON.
func lookupCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Resolves a single company against the register and prints the result",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			name, _ := cmd.Flags().GetString("name")
			number, _ := cmd.Flags().GetString("number")

			registryClient := handelsregister.New(&http.Client{
				Timeout: cfg.Registry.RequestTimeout,
			}, handelsregister.Options{
				BaseURL:        cfg.Registry.BaseURL,
				SearchAttempts: cfg.Registry.SearchAttempts,
				RetryDelay:     cfg.Registry.RetryDelay,
			})

			var arc *archive.Archive
			if cfg.Archive.Dir != "" {
				arc = archive.New(cfg.Archive.Dir)
			}

			// no storage: the one-shot path never touches the database
			svc := resolver.New(nil, registryClient, arc, resolver.Options{
				ViabilityFloor: cfg.Resolver.ViabilityFloor,
				DocumentTypes:  documentTypes(cfg),
			})

			result, err := svc.Lookup(ctx, name, number)
			if err != nil {
				logger.Fatal(ctx, "could not resolve company", zap.Error(err))
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				logger.Fatal(ctx, "could not marshal result", zap.Error(err))
			}

			fmt.Fprintln(os.Stdout, string(out))
		},
	}

	cmd.Flags().String("name", "", "Company name to resolve")
	cmd.Flags().String("number", "", "Optional registration number, e.g. 'HRB 259502'")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
