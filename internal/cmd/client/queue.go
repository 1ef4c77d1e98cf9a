// Package client contains Cobra CLI commands for waitline.
package client

import (
	"bufio"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewQueueCommand constructs the `queue` command group and subcommands.
func NewQueueCommand(baseURL BaseURLFunc) *cobra.Command {
	queueCmd := &cobra.Command{Use: "queue", Short: "Queue operations"}

	queueCmd.AddCommand(
		newQueueJoinCommand(baseURL),
		newQueueLeaveCommand(baseURL),
		newQueueStateCommand(baseURL),
		newQueueWatchCommand(baseURL),
		newQueueNoShowCommand(baseURL),
		newQueueCompleteCommand(baseURL),
		newQueueHistoryCommand(baseURL),
	)

	return queueCmd
}

func addQueueFlags(cmd *cobra.Command) {
	cmd.Flags().String("venue", "", "Venue identifier")
	cmd.Flags().String("account", "", "Account identifier")
	_ = cmd.MarkFlagRequired("venue")
	_ = cmd.MarkFlagRequired("account")
}

func queueMutation(baseURL BaseURLFunc, use, short, path string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			venue, _ := cmd.Flags().GetString("venue")
			account, _ := cmd.Flags().GetString("account")
			out, err := doJSON(http.MethodPost, baseURL()+path,
				map[string]string{"venue": venue, "account": account})
			if err != nil {
				return err
			}
			printJSON(out)
			return nil
		},
	}
	addQueueFlags(cmd)
	return cmd
}

func newQueueJoinCommand(baseURL BaseURLFunc) *cobra.Command {
	return queueMutation(baseURL, "join", "Join a venue's queue", "/v1/queue/join")
}

func newQueueLeaveCommand(baseURL BaseURLFunc) *cobra.Command {
	return queueMutation(baseURL, "leave", "Leave a venue's queue", "/v1/queue/leave")
}

func newQueueNoShowCommand(baseURL BaseURLFunc) *cobra.Command {
	return queueMutation(baseURL, "noshow", "Record a no-show strike (owner/admin)", "/v1/queue/noshow")
}

func newQueueCompleteCommand(baseURL BaseURLFunc) *cobra.Command {
	return queueMutation(baseURL, "complete", "Complete a service (owner/admin)", "/v1/queue/complete")
}

func newQueueStateCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show a venue's current queue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			venue, _ := cmd.Flags().GetString("venue")
			out, err := doJSON(http.MethodGet,
				baseURL()+"/v1/queue/state?venue="+url.QueryEscape(venue), nil)
			if err != nil {
				return err
			}
			printJSON(out)
			return nil
		},
	}
	cmd.Flags().String("venue", "", "Venue identifier")
	_ = cmd.MarkFlagRequired("venue")
	return cmd
}

func newQueueHistoryCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show a venue's recent queue mutations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			venue, _ := cmd.Flags().GetString("venue")
			limit, _ := cmd.Flags().GetInt("limit")
			u := baseURL() + "/v1/queue/history?venue=" + url.QueryEscape(venue)
			if limit > 0 {
				u += "&limit=" + strconv.Itoa(limit)
			}
			out, err := doJSON(http.MethodGet, u, nil)
			if err != nil {
				return err
			}
			printJSON(out)
			return nil
		},
	}
	cmd.Flags().String("venue", "", "Venue identifier")
	cmd.Flags().Int("limit", 20, "Maximum events to return")
	_ = cmd.MarkFlagRequired("venue")
	return cmd
}

// newQueueWatchCommand streams SSE snapshots until interrupted.
func newQueueWatchCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream a venue's queue snapshots over SSE",
		RunE: func(cmd *cobra.Command, _ []string) error {
			venue, _ := cmd.Flags().GetString("venue")
			u := baseURL() + "/v1/queue/subscribe?venue=" + url.QueryEscape(venue)
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, u, nil)
			if err != nil {
				return err
			}
			if tok := tokenFromEnv(); tok != "" {
				req.Header.Set("Authorization", "Bearer "+tok)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("watch: %s", resp.Status)
			}
			sc := bufio.NewScanner(resp.Body)
			for sc.Scan() {
				line := sc.Text()
				if strings.HasPrefix(line, "data: ") {
					fmt.Println(strings.TrimPrefix(line, "data: "))
				}
			}
			return sc.Err()
		},
	}
	cmd.Flags().String("venue", "", "Venue identifier")
	_ = cmd.MarkFlagRequired("venue")
	return cmd
}
