package client

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// NewWaitTimeCommand constructs the `waittime` command.
func NewWaitTimeCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "waittime",
		Short: "Estimate the wait for joining a venue's queue now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			venue, _ := cmd.Flags().GetString("venue")
			avg, _ := cmd.Flags().GetFloat64("avg-service-time")
			u := baseURL() + "/v1/waittime?venue=" + url.QueryEscape(venue)
			if avg > 0 {
				u += "&avg_service_time=" + strconv.FormatFloat(avg, 'f', -1, 64)
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
	cmd.Flags().Float64("avg-service-time", 0, "Average service minutes (overrides server default)")
	_ = cmd.MarkFlagRequired("venue")
	return cmd
}
