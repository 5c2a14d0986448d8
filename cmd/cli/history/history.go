package history

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crucial707/mailprobe/cmd/cli/config"
	"github.com/crucial707/mailprobe/cmd/cli/output"
	"github.com/crucial707/mailprobe/internal/models"
)

// InitHistory registers the history command on the root command.
func InitHistory(rootCmd *cobra.Command) {
	rootCmd.AddCommand(historyCmd())
}

func historyCmd() *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sends",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.LoadToken()
			if err != nil {
				return fmt.Errorf("please login first")
			}

			url := config.APIURL() + "/history"
			if limit > 0 {
				url += "?limit=" + strconv.Itoa(limit)
			}
			req, err := http.NewRequest("GET", url, nil)
			if err != nil {
				return err
			}
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
			}

			var entries []models.HistoryEntry
			if err := json.Unmarshal(body, &entries); err != nil {
				return err
			}

			if jsonOutput {
				output.RenderJSON(entries)
				return nil
			}

			rows := make([][]interface{}, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []interface{}{
					e.SentAt.Format("2006-01-02 15:04:05"), e.EmailType,
					e.Subject, strings.Join(e.Recipients, ","), e.Status,
				})
			}
			output.RenderTable(
				[]string{"Sent At (UTC)", "Type", "Subject", "Recipients", "Status"},
				rows,
			)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum entries to show")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output raw JSON instead of a table")
	return cmd
}
