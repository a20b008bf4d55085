package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/k1LoW/errors"
	slogmulti "github.com/samber/slog-multi"
)

// New returns a logger writing text records at level or above to w.
// If logFile is not empty, every record (debug and above) is also appended to it as JSON.
// The returned function closes the log file and must be called when done.
func New(w io.Writer, level slog.Level, logFile string) (_ *slog.Logger, _ func() error, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	handlers := []slog.Handler{
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}),
	}
	closer := func() error { return nil }
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, err
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
		closer = f.Close
	}
	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}
