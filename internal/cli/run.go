package cli

import (
	"fmt"
	"io"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kyleseneker/fanomon/internal/fanotify"
	"github.com/kyleseneker/fanomon/internal/mask"
	"github.com/kyleseneker/fanomon/internal/monitor"
	"github.com/kyleseneker/fanomon/internal/sigfd"
)

// options is everything the argument scan produces.
type options struct {
	configPath string
	quiet      bool
	// emptyStart empties the starting mask; set when the very first
	// argument is +e.
	emptyStart bool
	directives []mask.Directive
	dirs       []string
}

// parseArgs scans args in order. The grammar is positional: option flags
// and +e/-e directives come first; the first token that is neither starts
// the directory list, and everything after it is a directory.
func parseArgs(args []string) (options, error) {
	var o options
	o.emptyStart = len(args) > 0 && args[0] == "+e"

	i := 0
scan:
	for i < len(args) {
		switch args[i] {
		case "+e", "-e":
			add := args[i][0] == '+'
			i++
			if i >= len(args) {
				return o, fmt.Errorf("%ce needs an event name", args[i-1][0])
			}
			o.directives = append(o.directives, mask.Directive{Add: add, Name: args[i]})
			i++
		case "-config", "--config":
			i++
			if i >= len(args) {
				return o, fmt.Errorf("-config needs a file path")
			}
			o.configPath = args[i]
			i++
		case "-quiet", "--quiet", "-q":
			o.quiet = true
			i++
		default:
			break scan
		}
	}
	o.dirs = args[i:]
	return o, nil
}

// runMonitor is the default action: build the mask, set up the signal
// bridge and the notification session, and hand control to the dispatch
// loop until a termination signal arrives.
func runMonitor(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args)
	if err != nil {
		return usageErrorf(stderr, "%v", err)
	}

	log, err := newLogger(opts.quiet)
	if err != nil {
		return cliErrorf(stderr, "creating logger: %v", err)
	}
	defer log.Sync()

	eventMask := mask.Default()
	if opts.emptyStart {
		eventMask = 0
	}

	dirs := opts.dirs
	if opts.configPath != "" {
		cfg, err := LoadConfig(opts.configPath)
		if err != nil {
			return cliErrorf(stderr, "%v", err)
		}
		if len(cfg.Events) > 0 && !opts.emptyStart {
			eventMask = 0
		}
		for _, name := range cfg.Events {
			eventMask |= mask.Lookup(name)
		}
		dirs = append(cfg.Directories, dirs...)
	}

	var unknown []string
	eventMask, unknown = mask.Apply(eventMask, opts.directives)
	for _, name := range unknown {
		log.Warn("unknown event name ignored", zap.String("name", name))
	}

	if len(dirs) == 0 {
		return usageErrorf(stderr, "at least one directory is required")
	}

	sigs, err := sigfd.New(syscall.SIGINT, syscall.SIGTERM)
	if err != nil {
		return cliErrorf(stderr, "initializing signals: %v", err)
	}

	sess, err := fanotify.Open(dirs, eventMask)
	if err != nil {
		sigs.Close()
		return cliErrorf(stderr, "initializing fanotify: %v", err)
	}
	for _, p := range sess.Paths() {
		log.Info("watching", zap.String("path", p))
	}
	log.Debug("event mask built", zap.Uint64("mask", eventMask))

	if err := monitor.Run(monitor.Config{
		Session: sess,
		Signals: sigs,
		Out:     stdout,
		Log:     log,
	}); err != nil {
		return cliErrorf(stderr, "%v", err)
	}
	return 0
}

// newLogger builds the diagnostic logger: human-readable on stderr, no
// caller annotation. quiet raises the floor to warnings. The rendered
// event stream goes to stdout and never through this logger.
func newLogger(quiet bool) (*zap.Logger, error) {
	opts := []zap.Option{zap.WithCaller(false)}
	if quiet {
		opts = append(opts, zap.IncreaseLevel(zapcore.WarnLevel))
	}
	return zap.NewDevelopment(opts...)
}
