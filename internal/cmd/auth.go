package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jobtrackapp/go-jobtrack-client/internal/utils"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session tokens",
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored tokens",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runWhoami,
}

var (
	loginUsername string
	loginPassword string

	registerUsername  string
	registerEmail     string
	registerPassword  string
	registerFirstName string
	registerLastName  string
)

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "account username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password")
	_ = loginCmd.MarkFlagRequired("username")
	_ = loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().StringVarP(&registerUsername, "username", "u", "", "account username")
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "account email")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "account password")
	registerCmd.Flags().StringVar(&registerFirstName, "first-name", "", "first name (optional)")
	registerCmd.Flags().StringVar(&registerLastName, "last-name", "", "last name (optional)")
	_ = registerCmd.MarkFlagRequired("username")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	result := a.manager.Login(cmd.Context(), loginUsername, loginPassword)
	if !result.Success {
		return errors.New(result.Error)
	}

	user := a.manager.CurrentUser()
	fmt.Printf("Signed in as %s.\n", user.DisplayName())
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	result := a.manager.Register(cmd.Context(), registerUsername, registerEmail, registerPassword, registerFirstName, registerLastName)
	if !result.Success {
		return errors.New(result.Error)
	}

	user := a.manager.CurrentUser()
	fmt.Printf("Account created. Signed in as %s.\n", user.DisplayName())
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	a.manager.Initialize(cmd.Context())
	a.manager.Logout(cmd.Context())
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireAuth(cmd.Context()); err != nil {
		return err
	}

	user := a.manager.CurrentUser()
	fmt.Printf("%s (%s)\n", user.DisplayName(), user.Username)
	fmt.Printf("Email: %s\n", user.Email)
	if joined := utils.Value(user.DateJoined); joined != "" {
		fmt.Printf("Joined: %s\n", joined)
	}
	return nil
}
