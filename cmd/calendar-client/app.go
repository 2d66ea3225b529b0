package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/calendarapp/calendar/internal/config"
	"github.com/calendarapp/calendar/internal/utils"
	"github.com/calendarapp/calendar/pkg/authstore"
	"github.com/calendarapp/calendar/pkg/calendarapi"
	"github.com/calendarapp/calendar/pkg/eventform"
	"github.com/calendarapp/calendar/pkg/storage"
	"github.com/calendarapp/calendar/pkg/uistore"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// session is everything a command needs, built once per invocation in Before.
type session struct {
	cfg     config.Client
	storage *storage.SQLiteStorage
	api     *calendarapi.Client
	auth    *authstore.Auth
}

type sessionKey struct{}

func newApp() *cli.App {
	return &cli.App{
		Name:  "calendar-client",
		Usage: "sign in to the calendar service and manage events",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "./config/application.yaml",
				Usage:   "configuration file",
			},
			&cli.StringFlag{
				Name:  "api",
				Usage: "backend base URL, overrides client.baseurl",
			},
		},
		Before: openSession,
		After:  closeSession,
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "sign in and store the session token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"CALENDAR_PASSWORD"}},
				},
				Action: func(c *cli.Context) error {
					s := current(c)
					err := s.auth.StartLogin(c.Context, authstore.Credentials{
						Email:    c.String("email"),
						Password: c.String("password"),
					})
					return report(c.App.Writer, s.auth, err)
				},
			},
			{
				Name:  "register",
				Usage: "create an account and sign in",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"CALENDAR_PASSWORD"}},
				},
				Action: func(c *cli.Context) error {
					s := current(c)
					err := s.auth.StartRegister(c.Context, authstore.NewUser{
						Name:     c.String("name"),
						Email:    c.String("email"),
						Password: c.String("password"),
					})
					return report(c.App.Writer, s.auth, err)
				},
			},
			{
				Name:  "check",
				Usage: "renew the stored session token",
				Action: func(c *cli.Context) error {
					s := current(c)
					return report(c.App.Writer, s.auth, s.auth.CheckAuthToken(c.Context))
				},
			},
			{
				Name:  "logout",
				Usage: "forget the stored session",
				Action: func(c *cli.Context) error {
					s := current(c)
					return report(c.App.Writer, s.auth, s.auth.StartLogout(""))
				},
			},
			eventsCommand(),
		},
	}
}

func openSession(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	clientCfg := cfg.Client
	if api := c.String("api"); api != "" {
		clientCfg.BaseUrl = api
	}

	st, err := storage.OpenSQLite(clientCfg.StoragePath)
	if err != nil {
		return err
	}
	api := calendarapi.NewClient(clientCfg.BaseUrl, func() string { return storage.Token(st) }, clientCfg.RequestTimeout)
	store := authstore.NewStore(authstore.InitialState(), nil)
	store.Subscribe(func(s authstore.State) {
		log.WithFields(log.Fields{
			"status": s.Status,
			"user":   s.User.Uid,
			"error":  s.ErrorMessage,
		}).Debug("auth state changed")
	})

	s := &session{
		cfg:     clientCfg,
		storage: st,
		api:     api,
		auth:    authstore.NewAuth(store, api, st, utils.SystemClock{}, clientCfg.ErrorClearDelay),
	}
	c.Context = context.WithValue(c.Context, sessionKey{}, s)
	return nil
}

func closeSession(c *cli.Context) error {
	if s, ok := c.Context.Value(sessionKey{}).(*session); ok {
		return s.storage.Close()
	}
	return nil
}

func current(c *cli.Context) *session {
	return c.Context.Value(sessionKey{}).(*session)
}

func report(w io.Writer, auth *authstore.Auth, err error) error {
	state := auth.State()
	switch state.Status {
	case authstore.StatusAuthenticated:
		fmt.Fprintf(w, "signed in as %s (%s)\n", state.User.Name, state.User.Uid)
	default:
		fmt.Fprintln(w, "not signed in")
	}
	switch {
	case state.ErrorMessage != "":
		return cli.Exit(state.ErrorMessage, 1)
	case err != nil:
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

// requireSession renews the stored token before a command that talks to the calendar.
func requireSession(c *cli.Context) error {
	s := current(c)
	if err := s.auth.CheckAuthToken(c.Context); err != nil || s.auth.Status() != authstore.StatusAuthenticated {
		return cli.Exit("not signed in, run login first", 1)
	}
	return nil
}

type stderrAlerter struct {
	w io.Writer
}

func (a stderrAlerter) Alert(ctx context.Context, alert eventform.Alert) {
	fmt.Fprintf(a.w, "%s: %s: %s\n", alert.Icon, alert.Title, alert.Text)
}

func eventsCommand() *cli.Command {
	periodFlags := []cli.Flag{
		&cli.TimestampFlag{Name: "from", Layout: time.RFC3339, Usage: "start of the period (RFC3339), defaults to now"},
		&cli.TimestampFlag{Name: "to", Layout: time.RFC3339, Usage: "end of the period (RFC3339), defaults to a week after from"},
	}
	period := func(c *cli.Context) (time.Time, time.Time) {
		from := time.Now()
		if ts := c.Timestamp("from"); ts != nil {
			from = *ts
		}
		to := from.AddDate(0, 0, 7)
		if ts := c.Timestamp("to"); ts != nil {
			to = *ts
		}
		return from, to
	}

	return &cli.Command{
		Name:   "events",
		Usage:  "list, add and export calendar events",
		Before: requireSession,
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Flags: periodFlags,
				Action: func(c *cli.Context) error {
					from, to := period(c)
					events, err := current(c).api.ListEvents(c.Context, from, to)
					if err != nil {
						return err
					}
					for _, e := range events {
						owner := ""
						if e.Owner != nil {
							owner = e.Owner.Name
						}
						fmt.Fprintf(c.App.Writer, "%s  %s - %s  %s (%s)\n", e.UID,
							e.StartTime.Local().Format("2006-01-02 15:04"), e.EndTime.Local().Format("2006-01-02 15:04"), e.Title, owner)
					}
					return nil
				},
			},
			{
				Name: "add",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title"},
					&cli.StringFlag{Name: "notes"},
					&cli.TimestampFlag{Name: "start", Layout: time.RFC3339, Usage: "defaults to now"},
					&cli.TimestampFlag{Name: "end", Layout: time.RFC3339, Usage: "defaults to two hours after now"},
				},
				Action: func(c *cli.Context) error {
					s := current(c)
					ui := uistore.New()
					ui.OpenDateModal()
					form := eventform.New(eventform.NewValues(utils.SystemClock{}), stderrAlerter{c.App.ErrWriter},
						calendarapi.EventSaver{Events: s.api}, ui)
					form.SetTitle(c.String("title"))
					form.SetNotes(c.String("notes"))
					if ts := c.Timestamp("start"); ts != nil {
						form.SetStart(*ts)
					}
					if ts := c.Timestamp("end"); ts != nil {
						form.SetEnd(*ts)
					}
					if err := form.Submit(c.Context); err != nil {
						return cli.Exit(err.Error(), 1)
					}
					fmt.Fprintln(c.App.Writer, "event saved")
					return nil
				},
			},
			{
				Name:  "export",
				Flags: append(periodFlags, &cli.PathFlag{Name: "out", Aliases: []string{"o"}, Usage: "write to file instead of stdout"}),
				Action: func(c *cli.Context) error {
					from, to := period(c)
					ics, err := current(c).api.ExportICS(c.Context, from, to)
					if err != nil {
						return err
					}
					if out := c.Path("out"); out != "" {
						return os.WriteFile(out, []byte(ics), 0o644)
					}
					_, err = io.WriteString(c.App.Writer, ics)
					return err
				},
			},
		},
	}
}
