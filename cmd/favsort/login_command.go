package main

import (
	"fmt"
	"time"

	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/cobra"

	"favsort/internal/services/bilibili"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in by scanning a QR code with the Bilibili app",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			auth := bilibili.NewAuth(logger,
				bilibili.WithAuthBaseURL(cfg.Bilibili.PassportBaseURL),
				bilibili.WithStatusNotifier(func(_ int, message string) {
					fmt.Fprintln(out, message)
				}),
			)

			qr, err := auth.GenerateQRCode(cmd.Context())
			if err != nil {
				return err
			}

			qrterminal.GenerateHalfBlock(qr.URL, qrterminal.L, out)
			fmt.Fprintf(out, "\nScan the QR code with the Bilibili app, or open:\n  %s\n\n", qr.URL)

			result, err := auth.WaitForLogin(cmd.Context(), qr.Key, timeout)
			if err != nil {
				return err
			}

			switch result.Status {
			case bilibili.LoginSucceeded:
			case bilibili.LoginExpired:
				return fmt.Errorf("QR code expired before it was confirmed; run 'favsort login' again")
			case bilibili.LoginTimedOut:
				return fmt.Errorf("login not confirmed within %s: %s", timeout, result.Reason)
			default:
				return fmt.Errorf("login failed: %s", result.Reason)
			}

			cred, err := bilibili.ParseCookie(result.Cookie)
			if err != nil {
				return fmt.Errorf("login succeeded but the session cookie is incomplete: %w", err)
			}

			store := bilibili.NewCredentialStore(cfg.CredentialStatePath())
			if err := store.Save(result.Cookie); err != nil {
				return err
			}

			fmt.Fprintf(out, "Logged in as user %s; credential saved to %s\n", cred.UserID, cfg.CredentialStatePath())
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 180*time.Second, "How long to wait for the QR code to be confirmed")
	return cmd
}
