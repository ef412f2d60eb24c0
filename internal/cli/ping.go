package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tpodg/domainctl/internal/server"
)

const pingTimeout = 15 * time.Second

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Verify the machine running asadmin is reachable",
	Long:  `Execute a simple command where asadmin runs (locally or over SSH) to verify accessibility.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		domainApp := getApp(cmd)
		domainApp.Logger.Info("Starting connection verification", "domain", domainApp.Config.Domain.Name)
		return pingTarget(cmd.Context(), domainApp.Logger, domainApp.Target())
	},
}

var errUnreachable = errors.New("target is unreachable")

func pingTarget(ctx context.Context, logger *slog.Logger, srv server.Server) error {
	if !verifyTarget(ctx, logger, srv) {
		return fmt.Errorf("%w: %s", errUnreachable, srv.ID())
	}
	return nil
}

func verifyTarget(ctx context.Context, logger *slog.Logger, srv server.Server) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	logger.Info("Checking target", "target", srv.ID(), "address", srv.Address())
	output, err := srv.Execute(ctx, "echo 'pong'")
	if err != nil {
		logger.Error("Verification failed", "target", srv.ID(), "error", err)
		return false
	}

	if strings.TrimSpace(output) == "pong" {
		logger.Info("Verification successful", "target", srv.ID())
	} else {
		logger.Warn("Verification partially successful (unexpected output)", "target", srv.ID(), "output", strings.TrimSpace(output))
	}
	return true
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
