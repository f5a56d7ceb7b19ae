package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ban68/LePret-sub001/pkg/tlsutil"
)

func certCmd() *cobra.Command {
	var (
		hosts    []string
		outDir   string
		validFor time.Duration
	)

	cmd := &cobra.Command{
		Use:   "cert",
		Short: "Write a self-signed gRPC server certificate for local use",
		Long: `Write a self-signed certificate and key for the gRPC server.

Point GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE at the printed paths.

Examples:
  factoringctl cert --out ./certs
  factoringctl cert --host localhost --host 127.0.0.1 --valid-for 720h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			certPath, keyPath, err := tlsutil.GenerateDevCertificate(hosts, outDir, validFor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "GRPC_TLS_CERT_FILE=%s\nGRPC_TLS_KEY_FILE=%s\n", certPath, keyPath)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&hosts, "host", []string{"localhost", "127.0.0.1"}, "DNS names or IPs the certificate covers")
	cmd.Flags().StringVar(&outDir, "out", "certs", "output directory")
	cmd.Flags().DurationVar(&validFor, "valid-for", 365*24*time.Hour, "certificate lifetime")

	return cmd
}
