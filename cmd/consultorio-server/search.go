package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/consultorio/consultorio/internal/config"
	"github.com/consultorio/consultorio/internal/listview"
)

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Search patients on a running server and print one page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			page, _ := cmd.Flags().GetInt("page")
			server, _ := cmd.Flags().GetString("server")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			if server == "" {
				server = cfg.APIBaseURL
			}

			term := ""
			if len(args) == 1 {
				term = strings.TrimSpace(args[0])
			}

			client := listview.NewHTTPClient(server, timeout)
			snap := runSearch(client, listview.URLState{Page: page, Search: term})
			if err := listview.Render(cmd.OutOrStdout(), snap, listview.DefaultSkeletonRows); err != nil {
				return err
			}
			if snap.Err != "" {
				return fmt.Errorf("search failed: %s", snap.Err)
			}
			return nil
		},
	}
	cmd.Flags().Int("page", 1, "page to fetch")
	cmd.Flags().String("server", "", "server base URL (default API_BASE_URL)")
	cmd.Flags().Duration("timeout", defaultClientTimeout, "request timeout")
	return cmd
}

const defaultClientTimeout = 10 * time.Second

// runSearch drives a list controller through one page fetch and returns its
// final state.
func runSearch(client listview.Client, state listview.URLState) listview.Snapshot {
	if state.Page < 1 {
		state.Page = 1
	}
	c := listview.NewController(client, nil, state)
	defer c.Close()

	c.GoToPage(state.Page)
	c.Wait()
	return c.Snapshot()
}
