package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/ytparty/internal/formatter"
	"github.com/desertthunder/ytparty/internal/models"
	"github.com/desertthunder/ytparty/internal/shared"
	"github.com/urfave/cli/v3"
)

func eventsCommand(r *Runner) *cli.Command {
	args := []cli.Argument{&cli.StringArg{Name: "event"}}
	return &cli.Command{
		Name:  "events",
		Usage: "Watch party events and registrations",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List the event catalogue",
				Flags:  jsonFlags(),
				Action: r.EventsList,
			},
			{
				Name:   "create",
				Usage:  "Schedule a new event (administrators only)",
				Flags:  draftFlags(true),
				Action: r.EventsCreate,
			},
			{
				Name:      "edit",
				Usage:     "Edit an event's details (administrators only)",
				Arguments: args,
				Flags:     draftFlags(false),
				Action:    r.EventsEdit,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete an event and its registrations (administrators only)",
				Arguments: args,
				Action:    r.EventsDelete,
			},
			{
				Name:      "start",
				Usage:     "Start an event; only one can be live (administrators only)",
				Arguments: args,
				Action:    r.EventsStart,
			},
			{
				Name:   "cancel",
				Usage:  "Stop the live event (administrators only)",
				Action: r.EventsCancel,
			},
			{
				Name:      "join",
				Usage:     "Register the current user for an event",
				Arguments: args,
				Action:    r.EventsJoin,
			},
			{
				Name:      "leave",
				Usage:     "Remove the current user from an event",
				Arguments: args,
				Action:    r.EventsLeave,
			},
			{
				Name:      "attendees",
				Usage:     "List users registered for an event",
				Arguments: args,
				Flags:     jsonFlags(),
				Action:    r.EventsAttendees,
			},
		},
	}
}

// draftFlags describes an event's editable fields. Creation requires title, date and time.
func draftFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: required},
		&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "YYYY-MM-DD (UTC)", Required: required},
		&cli.StringFlag{Name: "time", Usage: "HH:MM (UTC)", Required: required},
		&cli.StringFlag{Name: "description"},
		&cli.StringFlag{Name: "banner", Usage: "image URL"},
	}
}

// applyDraftFlags overrides the fields of d that were set on the command line.
func applyDraftFlags(cmd *cli.Command, d models.EventDraft) models.EventDraft {
	for name, field := range map[string]*string{
		"title": &d.Title, "date": &d.Date, "time": &d.Time, "description": &d.Description, "banner": &d.Banner,
	} {
		if cmd.IsSet(name) {
			*field = cmd.String(name)
		}
	}
	return d
}

// EventsList prints the catalogue. No session is required.
func (r *Runner) EventsList(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.open()
	if err != nil {
		return err
	}

	events, err := engine.Events().List()
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		if events == nil {
			events = []models.Event{}
		}
		return r.writeJSON(events, cmd.Bool("pretty"))
	}

	registered := make(map[string]int, len(events))
	for _, e := range events {
		attendees, err := engine.Registrations().Attendees(e.ID)
		if err != nil {
			return err
		}
		registered[e.ID] = len(attendees)
	}
	return r.writePlain("%s\n", r.palette.Events(events, registered, time.Now().UTC()))
}

func (r *Runner) EventsCreate(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.open()
	if err != nil {
		return err
	}

	event, err := engine.CreateEvent(applyDraftFlags(cmd, models.EventDraft{}))
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", r.palette.OK("✓ Event created: "+event.ID))
}

// EventsEdit starts from the stored event and applies the flags that were set.
func (r *Runner) EventsEdit(ctx context.Context, cmd *cli.Command) error {
	eventID, err := eventArg(cmd)
	if err != nil {
		return err
	}

	engine, err := r.open()
	if err != nil {
		return err
	}

	event, err := engine.Events().Get(eventID)
	if err != nil {
		return err
	}
	if _, err := engine.UpdateEvent(event.ID, applyDraftFlags(cmd, event.EventDraft)); err != nil {
		return err
	}
	return r.writePlain("%s\n", r.palette.OK("✓ Event updated: "+event.ID))
}

func (r *Runner) EventsDelete(ctx context.Context, cmd *cli.Command) error {
	eventID, err := eventArg(cmd)
	if err != nil {
		return err
	}

	engine, err := r.open()
	if err != nil {
		return err
	}
	if err := engine.DeleteEvent(eventID); err != nil {
		return err
	}
	return r.writePlain("%s\n", r.palette.OK("✓ Event deleted: "+eventID))
}

func (r *Runner) EventsStart(ctx context.Context, cmd *cli.Command) error {
	eventID, err := eventArg(cmd)
	if err != nil {
		return err
	}

	engine, err := r.open()
	if err != nil {
		return err
	}
	event, err := engine.StartEvent(eventID)
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", r.palette.OK("✓ Live: "+event.Title))
}

func (r *Runner) EventsCancel(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.open()
	if err != nil {
		return err
	}
	event, err := engine.CancelEvent()
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", r.palette.OK("✓ Cancelled: "+event.Title))
}

func (r *Runner) EventsJoin(ctx context.Context, cmd *cli.Command) error {
	eventID, err := eventArg(cmd)
	if err != nil {
		return err
	}

	engine, err := r.open()
	if err != nil {
		return err
	}
	if err := engine.JoinEvent(eventID); err != nil {
		return err
	}
	return r.writePlain("%s\n", r.palette.OK("✓ Joined "+eventID))
}

func (r *Runner) EventsLeave(ctx context.Context, cmd *cli.Command) error {
	eventID, err := eventArg(cmd)
	if err != nil {
		return err
	}

	engine, err := r.open()
	if err != nil {
		return err
	}
	if err := engine.LeaveEvent(eventID); err != nil {
		return err
	}
	return r.writePlain("%s\n", r.palette.OK("✓ Left "+eventID))
}

// EventsAttendees lists the users registered for an event. No session is required.
func (r *Runner) EventsAttendees(ctx context.Context, cmd *cli.Command) error {
	eventID, err := eventArg(cmd)
	if err != nil {
		return err
	}

	engine, err := r.open()
	if err != nil {
		return err
	}

	attendees, err := engine.Registrations().Attendees(eventID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if attendees == nil {
			attendees = []string{}
		}
		return r.writeJSON(attendees, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", formatter.AttendeesToText(eventID, attendees))
}

func eventArg(cmd *cli.Command) (string, error) {
	eventID := strings.TrimSpace(cmd.StringArg("event"))
	if eventID == "" {
		return "", fmt.Errorf("%w: event id", shared.ErrMissingArgument)
	}
	return eventID, nil
}
