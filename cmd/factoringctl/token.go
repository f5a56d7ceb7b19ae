package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ban68/LePret-sub001/internal/infrastructure/config"
	"github.com/Ban68/LePret-sub001/pkg/auth"
)

type tokenOptions struct {
	userID         string
	email          string
	companyID      string
	role           string
	status         string
	staff          bool
	expiration     time.Duration
	privateKeyFile string
}

func tokenCmd() *cobra.Command {
	var opts tokenOptions

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a caller token for local testing",
		Long: `Issue a signed JWT carrying the caller's identity and membership.

The token is signed with JWT_SECRET, or with the RSA key given by
--private-key-file.

Examples:
  factoringctl token --user u-1 --company c-1 --role owner
  factoringctl token --user ops-1 --staff --expiration 8h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			jwtCfg := auth.JWTConfig{
				Secret:     cfg.JWT.Secret,
				Issuer:     cfg.JWT.Issuer,
				Expiration: cfg.JWT.Expiration,
			}
			if opts.privateKeyFile != "" {
				key, err := auth.LoadKeyFromFile(opts.privateKeyFile)
				if err != nil {
					return err
				}
				jwtCfg.PrivateKeyPEM = string(key)
			}
			return runToken(cmd, jwtCfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.userID, "user", "", "user id (required)")
	cmd.Flags().StringVar(&opts.email, "email", "", "user email")
	cmd.Flags().StringVar(&opts.companyID, "company", "", "company the user is a member of")
	cmd.Flags().StringVar(&opts.role, "role", "owner", "membership role")
	cmd.Flags().StringVar(&opts.status, "status", auth.MembershipActive, "membership status")
	cmd.Flags().BoolVar(&opts.staff, "staff", false, "issue a staff token")
	cmd.Flags().DurationVar(&opts.expiration, "expiration", 0, "token lifetime; defaults to JWT_EXPIRATION")
	cmd.Flags().StringVar(&opts.privateKeyFile, "private-key-file", "", "PEM RSA private key to sign with")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runToken(cmd *cobra.Command, jwtCfg auth.JWTConfig, opts tokenOptions) error {
	if !opts.staff && opts.companyID == "" {
		return fmt.Errorf("--company is required for non-staff tokens")
	}
	if opts.expiration > 0 {
		jwtCfg.Expiration = opts.expiration
	}

	svc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		return err
	}

	id := auth.Identity{
		UserID:  opts.userID,
		Email:   opts.email,
		IsStaff: opts.staff,
	}
	if opts.companyID != "" {
		id.Membership = auth.Membership{
			CompanyID: opts.companyID,
			Role:      opts.role,
			Status:    opts.status,
		}
	}

	token, err := svc.GenerateToken(id)
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
