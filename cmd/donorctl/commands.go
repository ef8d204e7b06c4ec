package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/go-donor-portal/backend"
	apperrors "github.com/jrsteele09/go-donor-portal/internal/errors"
	"github.com/jrsteele09/go-donor-portal/routepolicy"
	"github.com/spf13/cobra"
)

var errNotSignedIn = errors.New("not signed in, run 'donorctl login' first")

func newLoginCmd(c *cli) *cobra.Command {
	var email, password string
	var remember bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), c.timeout)
			defer cancel()

			result := c.session.Login(ctx, email, password, remember)
			if !result.Success {
				return errors.New(result.Message)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Signed in as %s", result.User.Email)
			if result.Role != "" {
				fmt.Fprintf(out, " (%s)", result.Role)
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Dashboard: %s\n", routepolicy.DefaultDashboardPath(string(result.Role)))
			fmt.Fprintf(out, "Session expires in %s\n", formatDuration(c.tokens.GetRemainingTime()))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().BoolVar(&remember, "remember", false, "Keep the session for 30 days instead of 7")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.session.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			state := c.session.State()
			if !state.IsAuthenticated {
				fmt.Fprintln(out, "Not signed in")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "State:\tsigned in")
			if info, ok := c.tokens.GetTokenInfo(); ok {
				fmt.Fprintf(w, "Expires:\t%s (in %s)\n", info.Expiry().Format(time.RFC1123), formatDuration(c.tokens.GetRemainingTime()))
				fmt.Fprintf(w, "Remember me:\t%t\n", info.RememberMe)
			}
			if user := c.session.CurrentUser(); user != nil {
				fmt.Fprintf(w, "User:\t%s (%s)\n", user.Email, displayRole(string(user.Role)))
			}
			if claims, err := backend.PeekClaims(state.Token); err == nil {
				fmt.Fprintf(w, "Token subject:\t%s\n", claims.Subject)
				if !claims.ExpiresAt.IsZero() {
					fmt.Fprintf(w, "Token exp:\t%s\n", claims.ExpiresAt.Format(time.RFC1123))
				}
			} else {
				fmt.Fprintln(w, "Token:\topaque")
			}
			return w.Flush()
		},
	}
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the signed in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user := c.session.CurrentUser()
			if user == nil {
				return errNotSignedIn
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintf(w, "ID:\t%s\n", user.ID)
			fmt.Fprintf(w, "Email:\t%s\n", user.Email)
			fmt.Fprintf(w, "Name:\t%s\n", user.Name)
			fmt.Fprintf(w, "Role:\t%s\n", displayRole(string(user.Role)))
			return w.Flush()
		},
	}
}

func newCanCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "can <path>",
		Short: "Check whether the signed in user may open a portal page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}

			state := c.session.State()
			visitor := routepolicy.Visitor{Loading: state.Loading, IsAuthenticated: state.IsAuthenticated}
			if user := c.session.CurrentUser(); user != nil {
				visitor.Role = string(user.Role)
			}

			decision := routepolicy.Guard(visitor, path)
			out := cmd.OutOrStdout()
			switch decision.Outcome {
			case routepolicy.Allow:
				fmt.Fprintf(out, "allow: %s\n", path)
			default:
				fmt.Fprintf(out, "%s: %s -> %s\n", decision.Outcome, path, decision.Location)
			}
			return nil
		},
	}
}

func newProfileCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the donor profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.session.State().IsAuthenticated {
				return errNotSignedIn
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), c.timeout)
			defer cancel()

			profile, err := c.api.Profile(ctx)
			if err != nil {
				return c.backendError(err)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintf(w, "Name:\t%s\n", profile.Name)
			fmt.Fprintf(w, "Email:\t%s\n", profile.Email)
			fmt.Fprintf(w, "Phone:\t%s\n", profile.Phone)
			fmt.Fprintf(w, "Blood type:\t%s\n", profile.BloodType)
			fmt.Fprintf(w, "City:\t%s\n", profile.City)
			fmt.Fprintf(w, "Last donation:\t%s\n", profile.LastDonationDate)
			return w.Flush()
		},
	}
}

func newHistoryCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List the donations of the signed in donor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user := c.session.CurrentUser()
			if user == nil || user.ID == "" {
				return errNotSignedIn
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), c.timeout)
			defer cancel()

			donations, err := c.api.History(ctx, user.ID)
			if err != nil {
				return c.backendError(err)
			}
			if len(donations) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No donations recorded")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tLOCATION\tUNITS\tSTATUS")
			for _, d := range donations {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", d.Date, d.Location, d.Units, d.Status)
			}
			return w.Flush()
		},
	}
}

// backendError signs out when the backend no longer accepts the token
func (c *cli) backendError(err error) error {
	if backend.IsUnauthorized(err) {
		c.session.HandleUnauthorized()
		return fmt.Errorf("%w, run 'donorctl login' again", apperrors.ErrSessionExpired)
	}
	if msg := backend.MessageOf(err); msg != "" {
		return errors.New(msg)
	}
	return err
}

func displayRole(role string) string {
	if role == "" {
		return "no role"
	}
	return role
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	if d <= 0 {
		return "0s"
	}
	days := d / (24 * time.Hour)
	rest := d % (24 * time.Hour)
	if days > 0 {
		return fmt.Sprintf("%dd%s", days, strings.TrimSuffix(rest.String(), "0s"))
	}
	return strings.TrimSuffix(rest.String(), "0s")
}
