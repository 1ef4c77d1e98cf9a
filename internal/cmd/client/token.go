package client

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/waitline/waitline/internal/auth"
)

// NewTokenCommand constructs the `token` command group. Tokens are minted
// offline with the same keys the server is configured with.
func NewTokenCommand() *cobra.Command {
	tokenCmd := &cobra.Command{Use: "token", Short: "Token operations"}
	tokenCmd.AddCommand(newTokenMintCommand())
	return tokenCmd
}

func newTokenMintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint a bearer token for an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			hashHex, _ := cmd.Flags().GetString("hash-key")
			blockHex, _ := cmd.Flags().GetString("block-key")
			account, _ := cmd.Flags().GetString("account")
			role, _ := cmd.Flags().GetString("role")
			ttlMin, _ := cmd.Flags().GetInt("ttl-minutes")

			hashKey, blockKey, err := auth.ParseKeys(hashHex, blockHex)
			if err != nil {
				return err
			}
			codec, err := auth.NewCodec(hashKey, blockKey, time.Duration(ttlMin)*time.Minute)
			if err != nil {
				return err
			}
			token, err := codec.Issue(auth.Identity{Account: account, Role: role})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("hash-key", "", "Hex-encoded hash key (32 or 64 bytes)")
	cmd.Flags().String("block-key", "", "Hex-encoded block key (16, 24 or 32 bytes)")
	cmd.Flags().String("account", "", "Account identifier")
	cmd.Flags().String("role", "customer", "Role: customer|owner|admin")
	cmd.Flags().Int("ttl-minutes", 1440, "Token lifetime in minutes")
	_ = cmd.MarkFlagRequired("hash-key")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}
