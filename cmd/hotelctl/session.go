package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/app"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session"
)

func (c *cli) loginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if username == "" {
				if username, err = c.prompt("username: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = c.prompt("password: "); err != nil {
					return err
				}
			}
			if err := c.app.Login(cmd.Context(), username, password); err != nil {
				return err
			}
			c.printStatus(c.app.Store.Status())
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username (prompted when empty)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c.app.Store.Logout(cmd.Context())
			fmt.Fprintln(c.out, "logged out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if refresh {
				if _, err := session.RefreshProfile(cmd.Context(), c.app.Auth, c.app.Store); err != nil {
					return err
				}
			}
			c.printStatus(c.app.Store.Status())
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "reload the profile from the backend")
	return cmd
}

func (c *cli) printStatus(st session.Status) {
	c.print(st, func(w io.Writer) {
		if !st.LoggedIn {
			fmt.Fprintln(w, "not logged in")
			return
		}
		fmt.Fprintf(w, "%s (%s, id %d)\n", st.Identity.Username, st.Identity.Role, st.Identity.ID)
		if st.ActiveScope == 0 {
			fmt.Fprintln(w, "scope: all hotels")
		} else {
			fmt.Fprintf(w, "scope: hotel %d\n", st.ActiveScope)
		}
		if st.ExpiresAt != nil {
			state := "valid"
			if st.Expired {
				state = "expired"
			}
			fmt.Fprintf(w, "credential %s until %s\n", state, st.ExpiresAt.Format("2006-01-02 15:04"))
		}
	})
}

func (c *cli) scopeCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "scope", Short: "Show or change the active hotel"}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the active hotel",
		RunE: func(cmd *cobra.Command, args []string) error {
			c.printStatus(c.app.Store.Status())
			return nil
		},
	}
	set := &cobra.Command{
		Use:   "set <hotel-id>",
		Short: "Switch to one of your hotels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Store.ValidateScope(cmd.Context(), id); err != nil {
				return err
			}
			if err := c.app.Store.ChangeScope(cmd.Context(), id); err != nil {
				return err
			}
			c.printStatus(c.app.Store.Status())
			return nil
		},
	}
	unset := &cobra.Command{
		Use:   "clear",
		Short: "Use the unscoped view (global roles only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			id := c.app.Store.Identity()
			if id == nil {
				return session.ErrNotLoggedIn
			}
			if !id.Role.IsGlobal() {
				return fmt.Errorf("%s must work inside one hotel: %w", id.Role, session.ErrInvalidScope)
			}
			if err := c.app.Store.ChangeScope(cmd.Context(), 0); err != nil {
				return err
			}
			c.printStatus(c.app.Store.Status())
			return nil
		},
	}
	cmd.AddCommand(show, set, unset)
	return cmd
}

// hotelsCmd lists the hotels the session may switch to; its subcommands
// administer the hotel collection itself.
func (c *cli) hotelsCmd() *cobra.Command {
	cmd := resourceCmd(c, "hotels", "Hotels you can work in; subcommands manage them",
		func(a *app.App) resource { return wrap(a.Hotels.Resource()) })
	var refresh bool
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		store := c.app.Store
		if refresh {
			if _, err := store.RefreshTenants(cmd.Context()); err != nil {
				return err
			}
		}
		choices, err := store.ScopeChoices(cmd.Context())
		if err != nil {
			return err
		}
		active := store.ActiveScope()
		c.print(choices, func(w io.Writer) {
			if choices.AllowUnscoped {
				mark := " "
				if active == 0 {
					mark = "*"
				}
				fmt.Fprintf(w, "%s %4s  %s\n", mark, "-", "all hotels")
			}
			for _, t := range choices.Tenants {
				mark := " "
				if t.ID == active {
					mark = "*"
				}
				fmt.Fprintf(w, "%s %4d  %s (%s)\n", mark, t.ID, t.Name, t.Code)
			}
		})
		return nil
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "reload the list from the backend")
	return cmd
}
