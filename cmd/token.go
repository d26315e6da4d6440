package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/sierra/sierra"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:               "token",
	Short:             "Show the cached access token",
	Long:              `Show the access token in use, requesting a new one if the cached token is missing or expired.`,
	PersistentPreRunE: initializeApp,
	RunE:              runTokenShow,
}

var tokenRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Request a new access token and cache it",
	RunE:  runTokenRefresh,
}

var tokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the cached access token",
	RunE:  runTokenClear,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenRefreshCmd)
	tokenCmd.AddCommand(tokenClearCmd)
}

func runTokenShow(cmd *cobra.Command, args []string) error {
	tok, err := sierraClient.EnsureToken(commandContext(cmd))
	if err != nil {
		return err
	}
	printToken(cmd.OutOrStdout(), tok, time.Now())
	return nil
}

func runTokenRefresh(cmd *cobra.Command, args []string) error {
	tok, err := sierraClient.RefreshToken(commandContext(cmd))
	if err != nil {
		return err
	}
	logger.Info().Time("expires_at", tok.Expiry()).Msg("Token refreshed")
	printToken(cmd.OutOrStdout(), tok, time.Now())
	return nil
}

func runTokenClear(cmd *cobra.Command, args []string) error {
	if err := sierraClient.ClearToken(commandContext(cmd)); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Cached token cleared")
	return nil
}

func printToken(w io.Writer, tok *sierra.Token, now time.Time) {
	fmt.Fprintf(w, "Token:      %s\n", maskToken(tok.AccessToken))
	fmt.Fprintf(w, "Type:       %s\n", tok.TokenType)
	fmt.Fprintf(w, "Expires at: %s\n", tok.Expiry().Format(time.RFC3339))
	if tok.Expired(now) {
		fmt.Fprintln(w, "Status:     expired")
		return
	}
	remaining := tok.Expiry().Sub(now).Truncate(time.Second)
	fmt.Fprintf(w, "Status:     valid for %s\n", remaining)
}

// maskToken keeps the first few characters of a secret
func maskToken(s string) string {
	const visible = 6
	if len(s) <= visible {
		return strings.Repeat("*", len(s))
	}
	return s[:visible] + strings.Repeat("*", 8)
}
