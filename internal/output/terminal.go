package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ClearScreen clears the terminal screen and moves cursor to top-left
func ClearScreen(w io.Writer) {
	_, _ = fmt.Fprint(w, "\033[2J\033[H")
}

// HideCursor hides the terminal cursor
func HideCursor(w io.Writer) {
	_, _ = fmt.Fprint(w, "\033[?25l")
}

// ShowCursor shows the terminal cursor
func ShowCursor(w io.Writer) {
	_, _ = fmt.Fprint(w, "\033[?25h")
}

// SignalContext returns a context cancelled on interrupt or SIGTERM
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// WatchHeader prints the status line shown above every refresh
func WatchHeader(w io.Writer, now time.Time, every time.Duration) {
	_, _ = fmt.Fprintf(w, "Last update: %s | Next refresh in %s | Press Ctrl+C to exit\n\n",
		now.Format("15:04:05"), every)
}

// Watch clears w and calls render every interval until ctx is done.
// Render errors are written to errw and do not stop the loop.
func Watch(ctx context.Context, w, errw io.Writer, every time.Duration, render func(ctx context.Context) error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	HideCursor(w)
	defer ShowCursor(w)

	for {
		ClearScreen(w)
		WatchHeader(w, time.Now(), every)

		if err := render(ctx); err != nil && ctx.Err() == nil {
			_, _ = fmt.Fprintf(errw, "Error: %v\n", err)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			ClearScreen(w)
			_, _ = fmt.Fprintln(w, "Watch mode ended.")
			return
		}
	}
}
