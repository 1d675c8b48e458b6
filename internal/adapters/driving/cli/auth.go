package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/sercha-drive/internal/adapters/driving/oauth"
	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/logger"
)

// loginTimeout bounds how long login waits for the browser redirect.
const loginTimeout = 5 * time.Minute

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Google OAuth credentials",
	Long: `Configure the OAuth client and authorise users.

The OAuth client (a Google Cloud "Desktop app" client) is shared by all
users. Each user then runs 'auth login' once; the refresh token is stored
in the credentials file.`,
}

var authClientCmd = &cobra.Command{
	Use:   "client <client-id> <client-secret>",
	Short: "Set the OAuth client",
	Args:  cobra.ExactArgs(2),
	RunE:  runAuthClient,
}

var authLoginCmd = &cobra.Command{
	Use:   "login <user-id>",
	Short: "Authorise a user through the browser",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthLogin,
}

var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List authorised users",
	RunE:  runAuthList,
}

var authRemoveCmd = &cobra.Command{
	Use:   "remove <user-id>",
	Short: "Forget a user's token",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthRemove,
}

func init() {
	authLoginCmd.Flags().Int("port", 0, "callback port (0 = any free port)")
	authLoginCmd.Flags().Bool("no-browser", false, "print the URL instead of opening a browser")
	authCmd.AddCommand(authClientCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authListCmd)
	authCmd.AddCommand(authRemoveCmd)
	rootCmd.AddCommand(authCmd)
}

func requireTokenStore() error {
	if tokenStore == nil || tokensPath == "" {
		return errors.New("credentials file not configured: set drive.credentials_file")
	}
	return nil
}

func runAuthClient(cmd *cobra.Command, args []string) error {
	if err := requireTokenStore(); err != nil {
		return err
	}
	tokenStore.SetClient(args[0], args[1])
	if err := tokenStore.Save(tokensPath); err != nil {
		return err
	}
	cmd.Println("OAuth client saved.")
	return nil
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	if err := requireTokenStore(); err != nil {
		return err
	}
	userID := args[0]
	port, _ := cmd.Flags().GetInt("port")
	noBrowser, _ := cmd.Flags().GetBool("no-browser")

	state := oauth2.GenerateVerifier()
	verifier := oauth2.GenerateVerifier()

	server := oauth.NewCallbackServer(port, state)
	if err := server.Start(); err != nil {
		return err
	}
	defer func() { _ = server.Stop() }()

	conf := tokenStore.OAuthConfig(server.RedirectURI())
	if conf.ClientID == "" {
		return fmt.Errorf("%w: no OAuth client, run 'auth client' first", domain.ErrNotAuthenticated)
	}

	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)
	cmd.Printf("Open this URL to authorise %s:\n\n  %s\n\n", userID, authURL)
	if !noBrowser {
		if err := oauth.OpenBrowser(authURL); err != nil {
			logger.Warn("could not open browser: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
	defer cancel()

	code, err := server.WaitForCode(ctx)
	if err != nil {
		return err
	}
	token, err := conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return fmt.Errorf("%w: exchange code: %w", domain.ErrNotAuthenticated, err)
	}
	if token.RefreshToken == "" {
		logger.Warn("no refresh token issued for %s; access ends when the token expires", userID)
	}

	tokenStore.SetToken(userID, token)
	if err := tokenStore.Save(tokensPath); err != nil {
		return err
	}
	cmd.Printf("User %s authorised.\n", userID)
	return nil
}

func runAuthList(cmd *cobra.Command, _ []string) error {
	if err := requireTokenStore(); err != nil {
		return err
	}
	users := tokenStore.UserIDs()
	if len(users) == 0 {
		cmd.Println("No users authorised.")
		return nil
	}
	for _, u := range users {
		cmd.Println(u)
	}
	return nil
}

func runAuthRemove(cmd *cobra.Command, args []string) error {
	if err := requireTokenStore(); err != nil {
		return err
	}
	tokenStore.RemoveToken(args[0])
	if err := tokenStore.Save(tokensPath); err != nil {
		return err
	}
	cmd.Printf("User %s removed.\n", args[0])
	return nil
}
