package cmd

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	tokenIssueRoles []string
	tokenIssueTTL   time.Duration
	tokenIssueSub   string
)

// tokenIssueCmd mints an operator session token. It runs where the
// operator signing key lives, i.e. on the server host.
var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Mint an operator session token",
	Example: `  astrogate token issue --operator-key $KEY --sub alice --roles operator
  astrogate token issue --operator-key $KEY --sub ci-bot --roles operator,admin --ttl 1h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		signingKey, err := operatorSigningKey(cmd)
		if err != nil {
			return err
		}
		if len(tokenIssueRoles) == 0 {
			return fmt.Errorf("at least one role is required")
		}

		roles := make([]any, len(tokenIssueRoles))
		for i, r := range tokenIssueRoles {
			roles[i] = r
		}

		now := time.Now()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":   tokenIssueSub,
			"roles": roles,
			"iat":   now.Unix(),
			"exp":   now.Add(tokenIssueTTL).Unix(),
		})

		signed, err := token.SignedString(signingKey)
		if err != nil {
			return fmt.Errorf("signing token: %w", err)
		}

		log.Info().
			Str("sub", tokenIssueSub).
			Strs("roles", tokenIssueRoles).
			Dur("ttl", tokenIssueTTL).
			Msg("operator token minted")
		fmt.Println(signed)
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenIssueCmd)

	tokenIssueCmd.Flags().String("operator-key", "", "HMAC key for operator session tokens")
	tokenIssueCmd.Flags().StringVar(&tokenIssueSub, "sub", "", "Subject of the token")
	tokenIssueCmd.Flags().StringSliceVar(&tokenIssueRoles, "roles", nil, "Roles to embed in the token")
	tokenIssueCmd.Flags().DurationVar(&tokenIssueTTL, "ttl", 8*time.Hour, "Token lifetime")

	_ = tokenIssueCmd.MarkFlagRequired("sub")
}
