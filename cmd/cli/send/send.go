package send

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/crucial707/mailprobe/cmd/cli/config"
	"github.com/crucial707/mailprobe/internal/models"
)

// ==========================
// Init Send
// ==========================
func InitSend(rootCmd *cobra.Command) {
	rootCmd.AddCommand(sendCmd(), testEmailCmd())
}

// ==========================
// SEND
// ==========================
func sendCmd() *cobra.Command {
	var (
		recipients  []string
		count       int
		template    string
		subject     string
		body        string
		displayName string
		attachment  string
	)

	cmd := &cobra.Command{
		Use:   "send [type]",
		Short: "Send test emails now",
		Long: `Generate and send test emails of the given type right away, using the
active account. Types: phishing, eicar, cynic, gtube, custom.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{
				"recipients": recipients,
				"count":      count,
			}
			if template != "" {
				payload["template_type"] = template
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

			var res models.SendResult
			err := doJSON("POST", "/send/"+args[0], payload, &res)
			// A partial failure comes back as 502 with a result body;
			// show the breakdown either way.
			if res.Total > 0 {
				fmt.Printf("Sent %d/%d\n", res.Sent, res.Total)
				for _, e := range res.Errors {
					fmt.Println("  error:", e)
				}
			}
			if err != nil && res.Total == 0 {
				return err
			}
			if !res.Success {
				return fmt.Errorf("send finished with failures")
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&recipients, "to", nil, "Recipient addresses (repeatable)")
	cmd.Flags().IntVar(&count, "count", 1, "Number of emails to send")
	cmd.Flags().StringVar(&template, "template", "", "Phishing template (warning, urgent, notification)")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject (custom emails)")
	cmd.Flags().StringVar(&body, "body", "", "Body (custom emails)")
	cmd.Flags().StringVar(&displayName, "display-name", "", "From display name (custom emails)")
	cmd.Flags().StringVar(&attachment, "attach", "", "Dummy attachment extension (custom emails)")
	cmd.MarkFlagRequired("to")

	return cmd
}

// ==========================
// TEST EMAIL
// ==========================
func testEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-email [recipient]",
		Short: "Send a probe email to verify the SMTP configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var res models.SendResult
			if err := doJSON("POST", "/test-email", map[string]string{"recipient": args[0]}, &res); err != nil {
				return err
			}
			fmt.Println("Test email sent to", args[0])
			return nil
		},
	}
}

func doJSON(method, path string, payload interface{}, out interface{}) error {
	token, err := config.LoadToken()
	if err != nil {
		return fmt.Errorf("please login first")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(method, config.APIURL()+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if out != nil && len(body) > 0 {
		// Best effort: error responses may carry a result body too.
		json.Unmarshal(body, out)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
