package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"go.bug.st/serial/enumerator"
)

// Ports lists the serial ports the joystick board may be attached to.
type Ports struct {
	out  io.Writer                                 `kong:"-"`
	list func() ([]*enumerator.PortDetails, error) `kong:"-"`
}

// Run is called by Kong when the ports command is executed.
func (p *Ports) Run() error {
	out, list := p.out, p.list
	if out == nil {
		out = os.Stdout
	}
	if list == nil {
		list = enumerator.GetDetailedPortsList
	}

	ports, err := list()
	if err != nil {
		return fmt.Errorf("list serial ports: %w", err)
	}
	if len(ports) == 0 {
		_, err := fmt.Fprintln(out, "No serial ports found")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PORT\tVID:PID\tSERIAL")
	for _, port := range ports {
		id, serialNo := "-", "-"
		if port.IsUSB {
			id = port.VID + ":" + port.PID
			if port.SerialNumber != "" {
				serialNo = port.SerialNumber
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", port.Name, id, serialNo)
	}
	return w.Flush()
}
