package schedules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crucial707/mailprobe/cmd/cli/config"
	"github.com/crucial707/mailprobe/cmd/cli/output"
	"github.com/crucial707/mailprobe/internal/models"
)

// ==========================
// Init Schedules
// ==========================
func InitSchedules(rootCmd *cobra.Command) {

	schedulesCmd := &cobra.Command{
		Use:   "schedules",
		Short: "Manage email schedules",
	}

	schedulesCmd.AddCommand(
		listSchedulesCmd(),
		getScheduleCmd(),
		createScheduleCmd(),
		deleteScheduleCmd(),
		setEnabledCmd("enable", true),
		setEnabledCmd("disable", false),
	)

	rootCmd.AddCommand(schedulesCmd)
}

// ==========================
// LIST
// ==========================
func listSchedulesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			var list []models.Schedule
			if err := doJSON("GET", "/schedules", nil, &list); err != nil {
				return err
			}

			if jsonOutput {
				output.RenderJSON(list)
				return nil
			}

			rows := make([][]interface{}, 0, len(list))
			for _, s := range list {
				nextRun := "-"
				if s.NextRunUTC != nil {
					nextRun = s.NextRunUTC.Format("2006-01-02 15:04")
				}
				rows = append(rows, []interface{}{
					s.ID, s.EmailType, s.ScheduleType, strings.Join(s.Recipients, ","),
					s.Enabled, nextRun, s.LastStatus, s.FailureCount,
				})
			}
			output.RenderTable(
				[]string{"ID", "Type", "Schedule", "Recipients", "Enabled", "Next Run (UTC)", "Last Status", "Failures"},
				rows,
			)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output raw JSON instead of a table")
	return cmd
}

// ==========================
// GET
// ==========================
func getScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show one schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var s models.Schedule
			if err := doJSON("GET", "/schedules/"+args[0], nil, &s); err != nil {
				return err
			}
			output.RenderJSON(s)
			return nil
		},
	}
}

// ==========================
// CREATE
// ==========================
func createScheduleCmd() *cobra.Command {
	var (
		emailType    string
		recipients   []string
		count        int
		scheduleType string
		intervalHrs  float64
		weeklyDays   []string
		timeOfDay    string
		configName   string
		subject      string
		body         string
		displayName  string
		attachment   string
		template     string
		dueTime      string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{
				"email_type":    emailType,
				"recipients":    recipients,
				"count":         count,
				"schedule_type": scheduleType,
			}
			if intervalHrs > 0 {
				payload["interval_hours"] = intervalHrs
			}
			if len(weeklyDays) > 0 {
				payload["weekly_days"] = weeklyDays
			}
			if timeOfDay != "" {
				payload["time_of_day_local"] = timeOfDay
			}
			if configName != "" {
				payload["config_name"] = configName
			}
			if subject != "" {
				payload["subject"] = subject
			}
			if body != "" {
				payload["body"] = body
			}
			if displayName != "" {
				payload["display_name"] = displayName
			}
			if attachment != "" {
				payload["attachment_type"] = attachment
			}
			if template != "" {
				payload["template_type"] = template
			}
			if dueTime != "" {
				payload["next_run_utc"] = dueTime
			}

			var created models.Schedule
			if err := doJSON("POST", "/schedules", payload, &created); err != nil {
				return err
			}
			fmt.Println("Schedule created:", created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&emailType, "type", "", "Email type (phishing, eicar, cynic, gtube, custom)")
	cmd.Flags().StringSliceVar(&recipients, "to", nil, "Recipient addresses (repeatable)")
	cmd.Flags().IntVar(&count, "count", 1, "Number of emails per run")
	cmd.Flags().StringVar(&scheduleType, "schedule", "interval", "Schedule type (one_off, interval, weekly)")
	cmd.Flags().Float64Var(&intervalHrs, "interval-hours", 0, "Hours between runs (interval schedules)")
	cmd.Flags().StringSliceVar(&weeklyDays, "days", nil, "Weekdays to run on (weekly schedules)")
	cmd.Flags().StringVar(&timeOfDay, "time", "", "Local time of day, e.g. 09:00 (weekly schedules)")
	cmd.Flags().StringVar(&configName, "account", "", "Account to send with (default: active account)")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject (custom emails)")
	cmd.Flags().StringVar(&body, "body", "", "Body (custom emails)")
	cmd.Flags().StringVar(&displayName, "display-name", "", "From display name (custom emails)")
	cmd.Flags().StringVar(&attachment, "attach", "", "Dummy attachment extension (custom emails)")
	cmd.Flags().StringVar(&template, "template", "", "Phishing template (warning, urgent, notification)")
	cmd.Flags().StringVar(&dueTime, "at", "", "First run time, RFC 3339 UTC")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("to")

	return cmd
}

// ==========================
// DELETE
// ==========================
func deleteScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := doJSON("DELETE", "/schedules/"+args[0], nil, nil); err != nil {
				return err
			}
			fmt.Println("Schedule deleted")
			return nil
		},
	}
}

// ==========================
// ENABLE / DISABLE
// ==========================
func setEnabledCmd(use string, enabled bool) *cobra.Command {
	short := "Enable a schedule"
	if !enabled {
		short = "Disable a schedule"
	}
	return &cobra.Command{
		Use:   use + " [id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The update endpoint replaces the whole schedule, so fetch
			// the current state and flip the flag.
			var s models.Schedule
			if err := doJSON("GET", "/schedules/"+args[0], nil, &s); err != nil {
				return err
			}
			s.Enabled = enabled
			if err := doJSON("PUT", "/schedules/"+args[0], s, nil); err != nil {
				return err
			}
			fmt.Printf("Schedule %s %sd\n", args[0], use)
			return nil
		},
	}
}

func doJSON(method, path string, payload interface{}, out interface{}) error {
	token, err := config.LoadToken()
	if err != nil {
		return fmt.Errorf("please login first")
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, config.APIURL()+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	if out != nil && len(body) > 0 {
		return json.Unmarshal(body, out)
	}
	return nil
}
