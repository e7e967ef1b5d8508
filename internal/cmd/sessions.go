package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Alia5/egodrive/internal/recorder"
)

// Sessions lists the sessions stored in a recording database.
type Sessions struct {
	Path   string `arg:"" name:"path" help:"Recording database written by drive --recorder.path" type:"existingfile"`
	Events uint   `help:"Print the events of this session instead of the session list" default:"0"`
	JSON   bool   `help:"Print JSON instead of a table" default:"false"`

	out io.Writer
}

// Run is called by Kong when the sessions command is executed.
func (c *Sessions) Run(logger *slog.Logger) error {
	out := c.out
	if out == nil {
		out = os.Stdout
	}
	db, err := recorder.Open(c.Path)
	if err != nil {
		return err
	}
	defer func() { _ = recorder.Close(db) }()

	if c.Events != 0 {
		events, err := recorder.Events(db, c.Events)
		if err != nil {
			return err
		}
		if c.JSON {
			return json.NewEncoder(out).Encode(events)
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		defer tw.Flush()
		fmt.Fprintln(tw, "TICK\tTIME\tKIND\tDETAIL")
		for _, e := range events {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.Tick, e.Time.Format(time.TimeOnly), e.Kind, e.Detail)
		}
		return nil
	}

	sessions, err := recorder.ListSessions(db)
	if err != nil {
		return err
	}
	logger.Debug("listed sessions", "path", c.Path, "count", len(sessions))
	if c.JSON {
		return json.NewEncoder(out).Encode(sessions)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintln(tw, "ID\tSTARTED\tDURATION\tDRIVER\tTICKS\tDROPPED")
	for _, s := range sessions {
		dur := "running"
		if s.EndedAt != nil {
			dur = s.EndedAt.Sub(s.StartedAt).Round(time.Second).String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\n", s.ID, s.StartedAt.Format(time.DateTime), dur, s.Driver, s.Ticks, s.Dropped)
	}
	return nil
}
