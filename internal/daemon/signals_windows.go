//go:build windows

package daemon

import (
	"os"

	"github.com/manav03panchal/worklog/internal/errors"
)

func controlSignals() []os.Signal { return nil }

func controlFor(os.Signal) (Control, bool) { return 0, false }

// SendControl is not available on Windows, which has no user signals.
func SendControl(int, Control) error {
	return errors.ErrControlNotSupport
}
