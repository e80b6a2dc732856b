package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"donorcrm/internal/adapter/repo"
	"donorcrm/internal/campaign"
	"donorcrm/internal/domain"
	"donorcrm/internal/infra/credentials"
	"donorcrm/internal/middleware"
)

func newCredentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage integration tokens",
	}

	var provider, token, username string
	set := &cobra.Command{
		Use:   "set",
		Short: "Store the token of an integration provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			var props map[string]any
			if username != "" {
				props = map[string]any{"username": username}
			}
			if err := credentials.NewStore(e.runner).Set(cmd.Context(), provider, token, props); err != nil {
				return err
			}
			cmd.Printf("%s token stored\n", strings.ToLower(provider))
			return nil
		},
	}
	set.Flags().StringVar(&provider, "provider", "", "smtp or exchange")
	set.Flags().StringVar(&token, "token", "", "token or password")
	set.Flags().StringVar(&username, "username", "", "account the token belongs to")
	_ = set.MarkFlagRequired("provider")
	_ = set.MarkFlagRequired("token")

	var delProvider string
	del := &cobra.Command{
		Use:   "delete",
		Short: "Remove the token of an integration provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()
			return credentials.NewStore(e.runner).Delete(cmd.Context(), strings.ToLower(delProvider))
		},
	}
	del.Flags().StringVar(&delProvider, "provider", "", "smtp or exchange")
	_ = del.MarkFlagRequired("provider")

	cmd.AddCommand(set, del)
	return cmd
}

func newCampaignsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaigns",
		Short: "Email campaign tasks",
	}

	var force bool
	var id string
	send := &cobra.Command{
		Use:   "send",
		Short: "Queue the emails of due campaign schedules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			d := campaign.NewDispatcher(e.runner, repo.NewEmailJobRepository(e.runner), e.logger)
			res, err := d.Send(cmd.Context(), force, id)
			if err != nil {
				return err
			}
			cmd.Printf("campaigns=%d recipients=%d enqueued=%d\n", res.Campaigns, res.Recipients, res.Enqueued)
			return nil
		},
	}
	send.Flags().BoolVar(&force, "force", false, "send regardless of schedule dates")
	send.Flags().StringVar(&id, "id", "", "only this email campaign")

	cmd.AddCommand(send)
	return cmd
}

func newTokenCmd() *cobra.Command {
	var user, secret string
	var roles []string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local use",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			if secret == "" {
				return fmt.Errorf("JWT_SECRET or --secret is required")
			}
			for _, r := range roles {
				if !knownRole(r) {
					return fmt.Errorf("unknown role %q", r)
				}
			}
			tok, err := middleware.IssueToken(secret, user, roles, ttl)
			if err != nil {
				return err
			}
			cmd.Println(tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id (email)")
	cmd.Flags().StringSliceVar(&roles, "roles", []string{domain.RoleSalesUser}, "comma separated roles")
	cmd.Flags().StringVar(&secret, "secret", "", "signing secret, defaults to JWT_SECRET")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func knownRole(r string) bool {
	switch r {
	case domain.RoleSystemManager, domain.RoleSalesManager, domain.RoleSalesUser:
		return true
	}
	return false
}
