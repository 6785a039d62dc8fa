package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kashishkhatter/interviewer-cw/internal/token"
)

// NewTokenCmd creates the token inspection command.
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect share-link tokens",
	}
	cmd.AddCommand(newTokenVerifyCmd())
	return cmd
}

func newTokenVerifyCmd() *cobra.Command {
	var tokenString string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a share-link token against JWT_SECRET",
		Long:  "Verifies signature, algorithm and expiry the same way the server does, and prints the extracted claims.",
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenString = strings.TrimSpace(tokenString)
			if tokenString == "" {
				return fmt.Errorf("--token is required")
			}
			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}

			verifier := token.NewVerifier([]byte(secret), nil)
			claims, err := verifier.Verify(tokenString)
			if err != nil {
				fmt.Printf("Token is INVALID: %s\n", token.FailureReason(err))
				return nil
			}

			fmt.Println("Token is valid.")
			fmt.Printf("  Subject:  %s\n", claims.Sub)
			fmt.Printf("  Email:    %s\n", claims.Email)
			if claims.Username != "" {
				fmt.Printf("  Username: %s\n", claims.Username)
			}
			if claims.Tenant != "" {
				fmt.Printf("  Tenant:   %s\n", claims.Tenant)
			}
			if len(claims.Roles) > 0 {
				fmt.Printf("  Roles:    %s\n", strings.Join(claims.Roles, ", "))
			}
			if claims.Exp > 0 {
				fmt.Printf("  Expires:  %s\n", time.Unix(claims.Exp, 0).UTC().Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tokenString, "token", "", "Token string to verify (required)")
	return cmd
}
