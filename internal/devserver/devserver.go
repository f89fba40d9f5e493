// SPDX-License-Identifier: MPL-2.0

package devserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/protrack/modkit/internal/fsops"
	"github.com/protrack/modkit/internal/issue"
	"github.com/protrack/modkit/internal/watch"

	"github.com/charmbracelet/log"
)

// DefaultPort is the HTTP port the dev server listens on.
const DefaultPort = 8000

const shutdownTimeout = 5 * time.Second

// ErrWatcherStopped is returned by Run when the file watcher ends before
// ctx is done, for example after inotify resources run out.
var ErrWatcherStopped = errors.New("file watcher stopped")

// Config configures Run.
type Config struct {
	SourceDir string
	TargetDir string
	// Port is used when Listener is nil. Zero picks a free port.
	Port     int
	Debounce time.Duration
	Settle   time.Duration
	// Ignore patterns for the default fsnotify watcher.
	Ignore []string

	// Source replaces the fsnotify watcher on SourceDir.
	Source watch.Source
	// Listener replaces listening on Port.
	Listener net.Listener
	Logger   *log.Logger
	// OnReady is called with the server URL once it accepts connections.
	OnReady func(url string)
}

// NewLogger returns the component logger used by the dev server.
func NewLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{Prefix: "serve"})
}

// Run performs the initial sync, then serves TargetDir and mirrors changes
// from SourceDir until ctx is done or the watcher fails. The watcher is
// stopped and drained before the HTTP server shuts down.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = NewLogger(os.Stderr)
	}

	if !fsops.IsDir(cfg.SourceDir) {
		return issue.NewErrorContext().
			WithOperation("start dev server").
			WithResource(cfg.SourceDir).
			WithSuggestion("Run 'modkit serve' from the folder containing UIGameface, or pass --source").
			WithIssue(issue.DevSourceNotFoundId).
			Wrap(fmt.Errorf("source directory not found: %w", os.ErrNotExist)).
			BuildError()
	}

	flag := &ReloadFlag{}
	mirror, err := NewMirror(MirrorConfig{
		Source:   cfg.SourceDir,
		Target:   cfg.TargetDir,
		Debounce: cfg.Debounce,
		Settle:   cfg.Settle,
		Flag:     flag,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	if _, err := mirror.InitialSync(); err != nil {
		return issue.NewErrorContext().
			WithOperation("sync UI test folder").
			WithResource(mirror.Target()).
			Wrap(err).
			BuildError()
	}

	listener := cfg.Listener
	if listener == nil {
		listener, err = net.Listen("tcp", ":"+strconv.Itoa(cfg.Port))
		if err != nil {
			return issue.NewErrorContext().
				WithOperation("start dev server").
				WithResource("port " + strconv.Itoa(cfg.Port)).
				WithSuggestion("Stop the other process using the port, or pass --port").
				WithIssue(issue.DevPortInUseId).
				Wrap(err).
				BuildError()
		}
	}

	source := cfg.Source
	if source == nil {
		w, err := watch.New(watch.Config{
			BaseDir: mirror.Source(),
			Ignore:  cfg.Ignore,
			Logger:  logger.WithPrefix("watch"),
		})
		if err != nil {
			_ = listener.Close()
			return err
		}
		source = w
	}

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()

	events, err := source.Events(watchCtx)
	if err != nil {
		_ = listener.Close()
		return fmt.Errorf("start watcher: %w", err)
	}

	var wg sync.WaitGroup
	mirrorDone := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(mirrorDone)
		mirror.Run(watchCtx, events)
	}()

	srv := &http.Server{
		Handler:           NewServer(mirror.Target(), flag, logger),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	url := serverURL(listener.Addr())
	logger.Info("Starting HTTP server at " + url)
	logger.Info("Watching for changes in " + mirror.Source())
	logger.Info("Press Ctrl+C to stop")
	if cfg.OnReady != nil {
		cfg.OnReady(url)
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Stopping...")
	case err := <-serveErr:
		runErr = fmt.Errorf("http server: %w", err)
	case <-mirrorDone:
		if ctx.Err() == nil {
			runErr = watcherStopped(source)
			logger.Error("Stopping: changes are no longer mirrored", "err", runErr)
		}
	}

	stopWatch()
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Stopped.")
	return runErr
}

// watcherStopped describes a change feed that ended before Run was
// canceled, including the watcher's fatal error when it reports one.
func watcherStopped(source watch.Source) error {
	if s, ok := source.(interface{ Err() error }); ok {
		if err := s.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrWatcherStopped, err)
		}
	}
	return ErrWatcherStopped
}

func serverURL(addr net.Addr) string {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return "http://" + addr.String()
	}
	return "http://localhost:" + strconv.Itoa(tcp.Port)
}
