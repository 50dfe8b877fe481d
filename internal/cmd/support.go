package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jobtrackapp/go-jobtrack-client/support"
)

var supportCmd = &cobra.Command{
	Use:   "support",
	Short: "Send a support request",
	RunE:  runSupport,
}

var supportFlags struct {
	name    string
	email   string
	subject string
	message string
}

func init() {
	supportCmd.Flags().StringVar(&supportFlags.name, "name", "", "your name")
	supportCmd.Flags().StringVar(&supportFlags.email, "email", "", "reply-to email")
	supportCmd.Flags().StringVar(&supportFlags.subject, "subject", "", "subject line")
	supportCmd.Flags().StringVar(&supportFlags.message, "message", "", "message body")
	_ = supportCmd.MarkFlagRequired("email")
	_ = supportCmd.MarkFlagRequired("message")

	rootCmd.AddCommand(supportCmd)
}

func runSupport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	err = a.support.Submit(cmd.Context(), support.Request{
		Name:    supportFlags.name,
		Email:   supportFlags.email,
		Subject: supportFlags.subject,
		Message: supportFlags.message,
	})
	if err != nil {
		return err
	}
	fmt.Println("Support request sent.")
	return nil
}
