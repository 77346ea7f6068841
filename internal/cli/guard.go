package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/audictl/internal/guard"
	"github.com/me/audictl/pkg/model"
)

// Annotation keys carrying a command's guard. Subcommands inherit the
// nearest ancestor's guard.
const (
	annotationGuard          = "audictl.guard"
	annotationRedirectAdmins = "audictl.redirect-admins"
)

// landingCommands name the command that plays each landing page.
var landingCommands = map[guard.Destination]string{
	guard.Login:     "audictl login",
	guard.UserHome:  "audictl auditoriums list",
	guard.AdminHome: "audictl admin stats",
}

// LandingCommand returns the command line for a destination.
func LandingCommand(d guard.Destination) string {
	if c, ok := landingCommands[d]; ok {
		return c
	}
	return "audictl"
}

// NavigationError is a guard refusal rendered for the terminal.
type NavigationError struct {
	*guard.RedirectError
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("%s: %s; run `%s`", e.Location, e.Decision.Reason, LandingCommand(e.Decision.Redirect))
}

func (e *NavigationError) Unwrap() error {
	return e.RedirectError
}

func withGuard(cmd *cobra.Command, g guard.Guard) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = make(map[string]string)
	}
	cmd.Annotations[annotationGuard] = string(g.Kind)
	if g.RedirectAdmins {
		cmd.Annotations[annotationRedirectAdmins] = "true"
	}
	return cmd
}

// anonymousOnly marks commands that make sense only without a session.
func anonymousOnly(cmd *cobra.Command) *cobra.Command {
	return withGuard(cmd, guard.Guard{Kind: guard.Anonymous})
}

// userArea marks commands of the user area; administrators are sent to
// their own landing.
func userArea(cmd *cobra.Command) *cobra.Command {
	return withGuard(cmd, guard.Guard{Kind: guard.Authenticated, RedirectAdmins: true})
}

func adminOnly(cmd *cobra.Command) *cobra.Command {
	return withGuard(cmd, guard.Guard{Kind: guard.Admin})
}

// guardFor returns the guard of cmd or its nearest annotated ancestor.
func guardFor(cmd *cobra.Command) (guard.Guard, error) {
	for c := cmd; c != nil; c = c.Parent() {
		raw, ok := c.Annotations[annotationGuard]
		if !ok {
			continue
		}
		kind, err := guard.ParseKind(raw)
		if err != nil {
			return guard.Guard{}, err
		}
		return guard.Guard{Kind: kind, RedirectAdmins: c.Annotations[annotationRedirectAdmins] == "true"}, nil
	}
	return guard.Guard{Kind: guard.Public}, nil
}

// checkGuard evaluates the command's guard against the stored session.
func checkGuard(cmd *cobra.Command) error {
	g, err := guardFor(cmd)
	if err != nil {
		return err
	}
	location := strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" ")
	err = gate.Check(cmd.Context(), location, g)
	var re *guard.RedirectError
	if errors.As(err, &re) {
		return &NavigationError{RedirectError: re}
	}
	return err
}

// apiError decorates an API failure. A rejected credential points the user
// at login.
func apiError(action string, err error) error {
	if model.IsUnauthorized(err) {
		return fmt.Errorf("%s: %w; run `%s`", action, err, LandingCommand(guard.Login))
	}
	return fmt.Errorf("%s: %w", action, err)
}
