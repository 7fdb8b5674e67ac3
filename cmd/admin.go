package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/ytparty/internal/formatter"
	"github.com/desertthunder/ytparty/internal/models"
	"github.com/desertthunder/ytparty/internal/session"
	"github.com/desertthunder/ytparty/internal/shared"
	"github.com/desertthunder/ytparty/internal/store"
	"github.com/urfave/cli/v3"
)

func adminCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Account administration (admin role required)",
		Commands: []*cli.Command{
			{
				Name:   "users",
				Usage:  "List all accounts",
				Flags:  jsonFlags(),
				Action: r.AdminUsers,
			},
			{
				Name:      "edit",
				Usage:     "Edit an account's alias, role or stats",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "alias", Usage: "New alias"},
					&cli.StringFlag{Name: "role", Usage: "New role (participant or admin)"},
					&cli.IntFlag{Name: "sessions", Usage: "Total sessions"},
					&cli.Int64Flag{Name: "connected", Usage: "Total time connected, in seconds"},
					&cli.FloatFlag{Name: "rating", Usage: "Average rating"},
				},
				Action: r.AdminEdit,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete an account and its event registrations",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.AdminDelete,
			},
			{
				Name:      "history",
				Usage:     "Show the write history of a storage key (sqlite only)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "key", Value: store.RegistryKey}},
				Action:    r.AdminHistory,
			},
			{
				Name:  "export",
				Usage: "Export the account list as csv, md or txt",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (csv, md, txt)",
						Value:   formatter.Text,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (defaults to accounts.<format>)",
					},
				},
				Action: r.AdminExport,
			},
		},
	}
}

// AdminUsers lists every account, the distinguished identity first.
func (r *Runner) AdminUsers(ctx context.Context, cmd *cli.Command) error {
	engine, accounts, err := r.accounts()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(accounts, cmd.Bool("pretty"))
	}

	currentID := ""
	if s := engine.LoadCurrentUser(); s != nil {
		currentID = s.ID
	}
	return r.writePlain("%s\n", r.palette.Accounts(accounts, currentID))
}

// AdminEdit applies the flags that were set. Stats flags start from the account's current stats.
func (r *Runner) AdminEdit(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: account id", shared.ErrMissingArgument)
	}

	engine, accounts, err := r.accounts()
	if err != nil {
		return err
	}

	var edit session.AccountEdit
	if cmd.IsSet("alias") {
		alias := cmd.String("alias")
		edit.Alias = &alias
	}
	if cmd.IsSet("role") {
		role := models.Role(strings.ToLower(cmd.String("role")))
		edit.Role = &role
	}
	if cmd.IsSet("sessions") || cmd.IsSet("connected") || cmd.IsSet("rating") {
		var stats models.Stats
		for _, a := range accounts {
			if a.ID == shared.NormalizeAccountID(id) {
				stats = a.Stats
			}
		}
		if cmd.IsSet("sessions") {
			stats.TotalSessions = cmd.Int("sessions")
		}
		if cmd.IsSet("connected") {
			stats.TotalTimeConnected = cmd.Int64("connected")
		}
		if cmd.IsSet("rating") {
			stats.AverageRating = cmd.Float("rating")
		}
		edit.Stats = &stats
	}

	if edit.Alias == nil && edit.Role == nil && edit.Stats == nil {
		return fmt.Errorf("%w: nothing to edit", shared.ErrMissingArgument)
	}

	if err := engine.AdminUpdateAccount(id, edit); err != nil {
		return err
	}
	return r.writePlain("%s\n", r.palette.OK("✓ Account updated: "+shared.NormalizeAccountID(id)))
}

func (r *Runner) AdminDelete(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: account id", shared.ErrMissingArgument)
	}

	engine, err := r.open()
	if err != nil {
		return err
	}

	if err := engine.DeleteAccount(id); err != nil {
		return err
	}
	return r.writePlain("%s\n", r.palette.OK("✓ Account deleted: "+shared.NormalizeAccountID(id)))
}

// AdminExport writes the account list to a file.
func (r *Runner) AdminExport(ctx context.Context, cmd *cli.Command) error {
	_, accounts, err := r.accounts()
	if err != nil {
		return err
	}

	roster := &formatter.Roster{Accounts: accounts, GeneratedAt: time.Now().UTC()}
	path, err := formatter.WriteExport(roster, cmd.String("format"), cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("accounts exported", "path", path, "count", len(accounts))
	return r.writePlain("%s\n", r.palette.OK("✓ Exported "+fmt.Sprint(len(accounts))+" accounts to "+path))
}

// AdminHistory prints the audit trail the SQLite store keeps for a key.
func (r *Runner) AdminHistory(ctx context.Context, cmd *cli.Command) error {
	if _, _, err := r.accounts(); err != nil {
		return err
	}

	h, ok := r.store.(interface {
		History(key string) ([]string, error)
	})
	if !ok {
		return fmt.Errorf("%w: history requires the sqlite storage driver", shared.ErrNotImplemented)
	}

	key := cmd.StringArg("key")
	actions, err := h.History(key)
	if err != nil {
		return err
	}

	r.writePlain("%s\n", r.palette.Title(fmt.Sprintf("%s (%d writes)", key, len(actions))))
	for i, action := range actions {
		r.writePlain("%d. %s\n", i+1, action)
	}
	return nil
}

// accounts lists accounts on behalf of a privileged session.
func (r *Runner) accounts() (*session.Engine, []models.Account, error) {
	engine, err := r.open()
	if err != nil {
		return nil, nil, err
	}

	s := engine.LoadCurrentUser()
	if s == nil {
		return nil, nil, shared.ErrNotAuthenticated
	}
	if !s.Role.Privileged() {
		return nil, nil, fmt.Errorf("%w: administrator role required", shared.ErrForbidden)
	}

	accounts, err := engine.ListAccounts()
	if err != nil {
		return nil, nil, err
	}
	return engine, accounts, nil
}
