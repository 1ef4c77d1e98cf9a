package client

import (
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

// NewAccountCommand constructs the `account` command group and subcommands.
func NewAccountCommand(baseURL BaseURLFunc) *cobra.Command {
	accountCmd := &cobra.Command{Use: "account", Short: "Account operations"}

	accountCmd.AddCommand(
		newAccountEnsureCommand(baseURL),
		newAccountGetCommand(baseURL),
	)

	return accountCmd
}

func newAccountEnsureCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ensure",
		Short: "Create an account record if absent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			account, _ := cmd.Flags().GetString("account")
			role, _ := cmd.Flags().GetString("role")
			name, _ := cmd.Flags().GetString("display-name")
			out, err := doJSON(http.MethodPost, baseURL()+"/v1/accounts/ensure",
				map[string]string{"account": account, "role": role, "display_name": name})
			if err != nil {
				return err
			}
			printJSON(out)
			return nil
		},
	}
	cmd.Flags().String("account", "", "Account identifier")
	cmd.Flags().String("role", "", "Role: customer|owner|admin (elevation needs owner/admin token)")
	cmd.Flags().String("display-name", "", "Display name")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

func newAccountGetCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show an account record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			account, _ := cmd.Flags().GetString("account")
			out, err := doJSON(http.MethodGet,
				baseURL()+"/v1/accounts/get?account="+url.QueryEscape(account), nil)
			if err != nil {
				return err
			}
			printJSON(out)
			return nil
		},
	}
	cmd.Flags().String("account", "", "Account identifier")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}
