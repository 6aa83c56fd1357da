package notify

import (
	"github.com/fatih/color"
	"github.com/gen2brain/beeep"

	"theme-sync/internal/config"
	"theme-sync/internal/util"
)

// Notifier fans one message out to the configured sinks. Sink failures are
// swallowed: reporting must never abort the operation being reported on.
type Notifier struct {
	console bool
	desktop bool
	printer *util.SafePrinter
}

func New(cfg config.Notifications) *Notifier {
	return &Notifier{
		console: cfg.ConsoleEnabled(),
		desktop: cfg.DesktopEnabled(),
		printer: util.Default,
	}
}

func (n *Notifier) Notify(msg string, isErr bool) {
	if n.console {
		if isErr {
			n.printer.Printf("%s %s\n", color.RedString(">>"), msg)
		} else {
			n.printer.Printf("%s %s\n", color.GreenString(">>"), msg)
		}
	}
	if n.desktop {
		if isErr {
			_ = beeep.Alert("theme-sync", msg, "")
		} else {
			_ = beeep.Notify("theme-sync", msg, "")
		}
	}
}

// OK reports a success message.
func (n *Notifier) OK(msg string) {
	n.Notify(msg, false)
}

// Err reports a failure message.
func (n *Notifier) Err(msg string) {
	n.Notify(msg, true)
}
