package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/ytparty/internal/models"
	"github.com/desertthunder/ytparty/internal/session"
	"github.com/desertthunder/ytparty/internal/shared"
	"github.com/urfave/cli/v3"
)

func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Edit the current user's profile",
		Commands: []*cli.Command{
			{
				Name:      "alias",
				Usage:     "Set the display alias",
				Arguments: []cli.Argument{&cli.StringArg{Name: "alias"}},
				Action:    r.ProfileAlias,
			},
			{
				Name:   "reset-alias",
				Usage:  "Reset the alias to the account id",
				Action: r.ProfileResetAlias,
			},
			{
				Name:      "avatar",
				Usage:     "Set the avatar from a URL or an image file",
				Arguments: []cli.Argument{&cli.StringArg{Name: "url"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Path to an image of at most 2MB",
					},
				},
				Action: r.ProfileAvatar,
			},
			{
				Name:   "clear-avatar",
				Usage:  "Remove the avatar",
				Action: r.ProfileClearAvatar,
			},
			{
				Name:  "password",
				Usage: "Change the account credential",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "current", Usage: "Current credential", Required: true},
					&cli.StringFlag{Name: "new", Usage: "New credential", Required: true},
					&cli.StringFlag{Name: "confirm", Usage: "New credential again", Required: true},
				},
				Action: r.ProfilePassword,
			},
		},
	}
}

// ProfileAlias sets the current user's alias.
func (r *Runner) ProfileAlias(ctx context.Context, cmd *cli.Command) error {
	return r.updateProfile(func(engine *session.Engine) (*models.Session, error) {
		return engine.UpdateAlias(cmd.StringArg("alias"))
	})
}

func (r *Runner) ProfileResetAlias(ctx context.Context, cmd *cli.Command) error {
	return r.updateProfile(func(engine *session.Engine) (*models.Session, error) {
		return engine.ResetAlias()
	})
}

// ProfileAvatar sets the avatar from --file when given, otherwise from the url argument.
func (r *Runner) ProfileAvatar(ctx context.Context, cmd *cli.Command) error {
	file, url := cmd.String("file"), strings.TrimSpace(cmd.StringArg("url"))
	switch {
	case file != "" && url != "":
		return fmt.Errorf("%w: cannot specify both a url and --file", shared.ErrInvalidArgument)
	case file == "" && url == "":
		return fmt.Errorf("%w: either a url or --file must be provided", shared.ErrMissingArgument)
	}

	return r.updateProfile(func(engine *session.Engine) (*models.Session, error) {
		if file != "" {
			return engine.UpdateAvatarFromFile(file)
		}
		return engine.UpdateAvatar(url)
	})
}

func (r *Runner) ProfileClearAvatar(ctx context.Context, cmd *cli.Command) error {
	return r.updateProfile(func(engine *session.Engine) (*models.Session, error) {
		return engine.ClearAvatar()
	})
}

// ProfilePassword changes the current user's credential.
func (r *Runner) ProfilePassword(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.open()
	if err != nil {
		return err
	}

	if err := engine.ChangeCredential(cmd.String("current"), cmd.String("new"), cmd.String("confirm")); err != nil {
		return err
	}
	return r.writePlain("%s\n", r.palette.OK("✓ Credential changed"))
}

func (r *Runner) updateProfile(fn func(*session.Engine) (*models.Session, error)) error {
	engine, err := r.open()
	if err != nil {
		return err
	}

	s, err := fn(engine)
	if err != nil {
		return err
	}
	r.writePlain("%s\n", r.palette.OK("✓ Profile updated"))
	return r.writePlain("%s\n", r.palette.Card(s))
}
