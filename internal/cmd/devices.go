package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/Alia5/egodrive/wheel"
)

// Devices lists the wheel drivers linked into the binary and, with --probe,
// the wheels each available driver can see.
type Devices struct {
	Probe     bool `help:"Open every available driver and list its wheels" default:"false"`
	MaxDevice int  `help:"Highest device index probed per driver" default:"7"`
	Exclusive bool `help:"Only list wheels, skipping gamepads" default:"false"`

	out io.Writer
}

// Run is called by Kong when the devices command is executed.
func (c *Devices) Run(logger *slog.Logger) error {
	out := c.out
	if out == nil {
		out = os.Stdout
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "DRIVER\tAVAILABLE\tINDEX\tNAME\tFORCE FEEDBACK")
	for _, name := range wheel.ListDrivers() {
		reg := wheel.GetDriver(name)
		available := reg.Available()
		if !c.Probe || !available {
			fmt.Fprintf(tw, "%s\t%t\t-\t-\t-\n", name, available)
			continue
		}
		if err := c.probe(tw, name, reg.CreateDriver(logger)); err != nil {
			logger.Warn("probing wheel driver failed", "driver", name, "error", err)
			fmt.Fprintf(tw, "%s\t%t\t-\t%v\t-\n", name, available, err)
		}
	}
	return nil
}

func (c *Devices) probe(w io.Writer, name string, d wheel.Driver) error {
	defer d.Shutdown()
	if err := d.Initialize(c.Exclusive); err != nil {
		return err
	}
	d.Update()
	found := false
	for idx := 0; idx <= c.MaxDevice; idx++ {
		if !d.IsConnected(idx) {
			continue
		}
		found = true
		friendly, err := d.FriendlyName(idx)
		if err != nil {
			friendly = "Unknown"
		}
		fmt.Fprintf(w, "%s\ttrue\t%d\t%s\t%t\n", name, idx, friendly, d.HasForceFeedback(idx))
	}
	if !found {
		fmt.Fprintf(w, "%s\ttrue\t-\tno wheel connected\t-\n", name)
	}
	return nil
}
