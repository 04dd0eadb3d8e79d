package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func (c *Cli) newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register [username] [email]",
		Short: "Create an account and log in",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, d *Deps) error {
				username, err := c.argOrPrompt(args, 0, "Username: ")
				if err != nil {
					return err
				}
				email, err := c.argOrPrompt(args, 1, "Email: ")
				if err != nil {
					return err
				}
				password, err := c.readPassword("Password: ", true)
				if err != nil {
					return err
				}

				session, err := d.Auth.Register(ctx, username, email, password)
				if err != nil {
					return err
				}
				c.io.Printf("Registered and logged in as %s (%s)\n", session.Username, session.Email)
				return nil
			})
		},
	}
}

func (c *Cli) newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [email]",
		Short: "Log in and store the session locally",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, d *Deps) error {
				email, err := c.argOrPrompt(args, 0, "Email: ")
				if err != nil {
					return err
				}
				password, err := c.readPassword("Password: ", false)
				if err != nil {
					return err
				}

				session, err := d.Auth.Login(ctx, email, password)
				if err != nil {
					return err
				}
				c.io.Printf("Logged in as %s\n", session.Username)
				return nil
			})
		},
	}
}

func (c *Cli) newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Verify the session with the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(ctx context.Context, d *Deps) error {
				user, err := d.Auth.Whoami(ctx)
				if err != nil {
					return err
				}
				c.io.Printf("%s <%s> id=%s\n", user.Username, user.Email, user.ID)
				return nil
			})
		},
	}
}

func (c *Cli) newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Renew the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(ctx context.Context, d *Deps) error {
				if _, err := d.Auth.Refresh(ctx); err != nil {
					return err
				}
				c.io.Println("Access token renewed")
				return nil
			})
		},
	}
}

func (c *Cli) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and forget it locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(ctx context.Context, d *Deps) error {
				if err := d.Auth.Logout(ctx); err != nil {
					return err
				}
				c.io.Println("Logged out")
				return nil
			})
		},
	}
}

func (c *Cli) newForgotPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password [email]",
		Short: "Request a password reset token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, d *Deps) error {
				email, err := c.argOrPrompt(args, 0, "Email: ")
				if err != nil {
					return err
				}

				resp, err := d.Auth.ForgotPassword(ctx, email)
				if err != nil {
					return err
				}
				c.io.Println(resp.Message)
				// Сервер отдает токен только вне production
				if resp.ResetToken != "" {
					c.io.Printf("Reset token: %s\n", resp.ResetToken)
				}
				return nil
			})
		},
	}
}

func (c *Cli) newResetPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password [token]",
		Short: "Set a new password using a reset token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, d *Deps) error {
				token, err := c.argOrPrompt(args, 0, "Reset token: ")
				if err != nil {
					return err
				}
				password, err := c.readPassword("New password: ", true)
				if err != nil {
					return err
				}

				if err := d.Auth.ResetPassword(ctx, token, password); err != nil {
					return err
				}
				c.io.Println("Password changed, please login again")
				return nil
			})
		},
	}
}
