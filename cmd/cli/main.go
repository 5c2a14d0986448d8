package main

import (
	"fmt"
	"os"

	"github.com/crucial707/mailprobe/cmd/cli/accounts"
	"github.com/crucial707/mailprobe/cmd/cli/auth"
	"github.com/crucial707/mailprobe/cmd/cli/history"
	"github.com/crucial707/mailprobe/cmd/cli/root"
	"github.com/crucial707/mailprobe/cmd/cli/schedules"
	"github.com/crucial707/mailprobe/cmd/cli/send"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	schedules.InitSchedules(rootCmd)
	send.InitSend(rootCmd)
	accounts.InitAccounts(rootCmd)
	history.InitHistory(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
