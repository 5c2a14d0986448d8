package accounts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/crucial707/mailprobe/cmd/cli/config"
	"github.com/crucial707/mailprobe/cmd/cli/output"
	"github.com/crucial707/mailprobe/internal/models"
)

// ==========================
// Init Accounts
// ==========================
func InitAccounts(rootCmd *cobra.Command) {

	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage email accounts",
	}

	accountsCmd.AddCommand(
		listAccountsCmd(),
		setAccountCmd(),
		activateAccountCmd(),
		deleteAccountCmd(),
	)

	rootCmd.AddCommand(accountsCmd)
}

// ==========================
// LIST
// ==========================
func listAccountsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Accounts []models.Account `json:"accounts"`
				Current  string           `json:"current"`
			}
			if err := doJSON("GET", "/accounts", nil, &resp); err != nil {
				return err
			}

			if jsonOutput {
				output.RenderJSON(resp)
				return nil
			}

			rows := make([][]interface{}, 0, len(resp.Accounts))
			for _, a := range resp.Accounts {
				active := ""
				if a.Name == resp.Current {
					active = "*"
				}
				rows = append(rows, []interface{}{
					active, a.Name, a.Username, a.SMTPServer, a.SMTPPort, a.UseTLS, a.UseSSL,
				})
			}
			output.RenderTable(
				[]string{"", "Name", "Username", "SMTP Server", "Port", "TLS", "SSL"},
				rows,
			)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output raw JSON instead of a table")
	return cmd
}

// ==========================
// SET (create or update)
// ==========================
func setAccountCmd() *cobra.Command {
	var (
		username   string
		password   string
		smtpServer string
		smtpPort   int
		imapServer string
		imapPort   int
		useSSL     bool
		noTLS      bool
	)

	cmd := &cobra.Command{
		Use:   "set [name]",
		Short: "Create or update an account",
		Long: `Create or update a named email account configuration.
When only an IMAP server is given, the SMTP settings are inferred from
the provider (gmail, outlook, yahoo, and others).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{
				"username": username,
				"use_tls":  !noTLS,
				"use_ssl":  useSSL,
			}
			if password != "" {
				payload["password"] = password
			}
			if smtpServer != "" {
				payload["smtp_server"] = smtpServer
			}
			if smtpPort > 0 {
				payload["smtp_port"] = smtpPort
			}
			if imapServer != "" {
				payload["imap_server"] = imapServer
			}
			if imapPort > 0 {
				payload["imap_port"] = imapPort
			}

			if err := doJSON("POST", "/accounts/"+args[0], payload, nil); err != nil {
				return err
			}
			fmt.Println("Account saved:", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "SMTP username (usually the email address)")
	cmd.Flags().StringVar(&password, "password", "", "SMTP password (stored encrypted)")
	cmd.Flags().StringVar(&smtpServer, "smtp-server", "", "SMTP server hostname")
	cmd.Flags().IntVar(&smtpPort, "smtp-port", 0, "SMTP port (default 587)")
	cmd.Flags().StringVar(&imapServer, "imap-server", "", "IMAP server hostname (used to infer SMTP)")
	cmd.Flags().IntVar(&imapPort, "imap-port", 0, "IMAP port (default 993)")
	cmd.Flags().BoolVar(&useSSL, "ssl", false, "Use implicit SSL instead of STARTTLS")
	cmd.Flags().BoolVar(&noTLS, "no-tls", false, "Disable STARTTLS")
	cmd.MarkFlagRequired("username")

	return cmd
}

// ==========================
// ACTIVATE
// ==========================
func activateAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate [name]",
		Short: "Make an account the active sending account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := doJSON("POST", "/accounts/"+args[0]+"/activate", nil, nil); err != nil {
				return err
			}
			fmt.Println("Active account:", args[0])
			return nil
		},
	}
}

// ==========================
// DELETE
// ==========================
func deleteAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := doJSON("DELETE", "/accounts/"+args[0], nil, nil); err != nil {
				return err
			}
			fmt.Println("Account deleted")
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
