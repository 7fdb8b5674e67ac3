package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/ytparty/internal/shared"
	"github.com/urfave/cli/v3"
)

func credentialFlag(usage string) cli.Flag {
	return &cli.StringFlag{
		Name:     "password",
		Aliases:  []string{"p"},
		Usage:    usage,
		Required: true,
	}
}

func registerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "register",
		Usage:     "Create a participant account",
		Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
		Flags:     []cli.Flag{credentialFlag("Credential for the new account")},
		Action:    r.Register,
	}
}

func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "Start a session",
		Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
		Flags:     []cli.Flag{credentialFlag("Account credential")},
		Action:    r.Login,
	}
}

func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "End the current session",
		Action: r.Logout,
	}
}

func whoamiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "whoami",
		Aliases: []string{"me"},
		Usage:   "Show the current session",
		Flags:   jsonFlags(),
		Action:  r.WhoAmI,
	}
}

// Register creates an account. It does not start a session.
func (r *Runner) Register(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: account id", shared.ErrMissingArgument)
	}

	engine, err := r.open()
	if err != nil {
		return err
	}

	account, err := engine.RegisterNewAccount(id, cmd.String("password"))
	if err != nil {
		return err
	}

	r.writePlain("%s\n", r.palette.OK("✓ Account created: "+account.ID))
	return r.writePlain("%s\n", r.palette.Help("Run `ytparty login "+account.ID+"` to start a session"))
}

// Login authenticates and commits the resulting session.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: account id", shared.ErrMissingArgument)
	}

	engine, err := r.open()
	if err != nil {
		return err
	}

	s, err := engine.Authenticate(shared.NormalizeAccountID(id), cmd.String("password"))
	if err != nil {
		return err
	}
	if err := engine.CommitUser(s); err != nil {
		return err
	}

	r.writePlain("%s\n", r.palette.OK("✓ Welcome, "+s.DisplayName()))
	return r.writePlain("%s\n", r.palette.Card(s))
}

// Logout clears the session slot. Logging out without a session succeeds.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.open()
	if err != nil {
		return err
	}

	if err := engine.ClearSession(); err != nil {
		return err
	}
	return r.writePlain("%s\n", r.palette.OK("✓ Logged out"))
}

// WhoAmI prints the reconciled current user.
func (r *Runner) WhoAmI(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.open()
	if err != nil {
		return err
	}

	s := engine.LoadCurrentUser()
	if cmd.Bool("json") {
		return r.writeJSON(s, cmd.Bool("pretty"))
	}
	return r.writePlain("%s\n", r.palette.Card(s))
}
