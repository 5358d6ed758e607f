package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"passgate/internal/passes/models"
	"passgate/internal/passes/provider"
	"passgate/internal/platform/config"
	"passgate/internal/platform/logger"
)

type app struct {
	out        io.Writer
	errOut     io.Writer
	loadConfig func() config.Server
	// httpClient overrides the provider transport; nil builds one from config.
	httpClient provider.HTTPDoer
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "passctl",
		Short:        "Issue and inspect passes against the configured provider",
		SilenceUsage: true,
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.AddCommand(newIssueCmd(a))
	root.AddCommand(newConfigCmd(a))
	return root
}

func newIssueCmd(a *app) *cobra.Command {
	var (
		externalID string
		email      string
		timeout    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Create the pass for an external ID, or return the existing one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.loadConfig()
			doer := a.httpClient
			if doer == nil {
				doer = &http.Client{Timeout: cfg.ProviderTimeout}
			}
			client := provider.New(cfg.PassEntry.Provider(),
				provider.WithHTTPClient(doer),
				provider.WithLogger(logger.NewWithWriter(a.errOut, cfg.LogLevel)),
			)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			record, err := client.CreateOrGetPass(ctx, models.PassRequest{
				ExternalID: externalID,
				Email:      email,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(record)
		},
	}
	cmd.Flags().StringVar(&externalID, "external-id", "", "stable identifier for the pass holder")
	cmd.Flags().StringVar(&email, "email", "", "optional contact email sent with a new pass")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall deadline for lookup and create")
	_ = cmd.MarkFlagRequired("external-id")
	return cmd
}

var errConfigIncomplete = errors.New("provider configuration incomplete")

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect provider configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Report whether the provider settings are complete",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.loadConfig()
			pc := cfg.PassEntry.Provider()
			out := cmd.OutOrStdout()

			_, _ = fmt.Fprintf(out, "api url:      %s\n", valueOrMissing(pc.APIURL))
			_, _ = fmt.Fprintf(out, "template id:  %s\n", valueOrMissing(pc.TemplateID))
			_, _ = fmt.Fprintf(out, "api key:      %s\n", redact(pc.APIKey))
			_, _ = fmt.Fprintf(out, "timeout:      %s\n", cfg.ProviderTimeout)

			if err := pc.Validate(); err != nil {
				return fmt.Errorf("%w: %v", errConfigIncomplete, err)
			}
			_, _ = fmt.Fprintln(out, "ok")
			return nil
		},
	})
	return cmd
}

func valueOrMissing(v string) string {
	if v == "" {
		return "(missing)"
	}
	return v
}

func redact(secret string) string {
	if secret == "" {
		return "(missing)"
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
