// Package logging builds the two loggers of a load run: a developer-facing
// debug log and a curator-facing curation log.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	Verbose bool
	// DebugPath is a file path, "stderr" or "stdout". Empty means stderr.
	DebugPath string
	// CurationPath is the curation log file. Empty discards curation output.
	CurationPath string
	// RunID correlates both logs; a random UUID is used when empty.
	RunID string
}

// Loggers holds the loggers of one run.
type Loggers struct {
	Debug    *zap.Logger
	Curation *zap.Logger
	RunID    string
}

// Sync flushes both loggers.
func (l *Loggers) Sync() {
	_ = l.Debug.Sync()
	_ = l.Curation.Sync()
}

// Nop returns loggers that discard everything.
func Nop() *Loggers {
	return &Loggers{Debug: zap.NewNop(), Curation: zap.NewNop()}
}

// New creates the debug and curation loggers.
func New(opts Options) (*Loggers, error) {
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	debugPath := opts.DebugPath
	if debugPath == "" {
		debugPath = "stderr"
	}
	level := zap.InfoLevel
	if opts.Verbose {
		level = zap.DebugLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Sampling = nil
	cfg.OutputPaths = []string{debugPath}
	cfg.ErrorOutputPaths = []string{"stderr"}
	debug, err := cfg.Build(zap.Fields(zap.String("runID", runID)))
	if err != nil {
		return nil, fmt.Errorf("build debug logger: %w", err)
	}

	curation := zap.NewNop()
	if opts.CurationPath != "" {
		if curation, err = newCurationLogger(opts.CurationPath, runID); err != nil {
			return nil, err
		}
	}
	return &Loggers{Debug: debug, Curation: curation, RunID: runID}, nil
}

func newCurationLogger(path, runID string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create curation log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open curation log: %w", err)
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.CallerKey = zapcore.OmitKey
	enc.StacktraceKey = zapcore.OmitKey
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(f), zap.InfoLevel)
	return zap.New(core).With(zap.String("runID", runID)), nil
}
