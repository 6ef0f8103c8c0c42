package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const logFlags = log.Ldate | log.Ltime | log.Lshortfile

// The loggers discard output until Initialize is called so packages can log
// freely from tests.
var (
	WarningLog = log.New(io.Discard, "WARNING: ", logFlags)
	InfoLog    = log.New(io.Discard, "INFO: ", logFlags)
	ErrorLog   = log.New(io.Discard, "ERROR: ", logFlags)

	FileOnlyInfoLog    = log.New(io.Discard, "INFO: ", logFlags)
	FileOnlyWarningLog = log.New(io.Discard, "WARNING: ", logFlags)
	FileOnlyErrorLog   = log.New(io.Discard, "ERROR: ", logFlags)
)

// DefaultLogFile is used when no log file is configured.
var DefaultLogFile = filepath.Join(os.TempDir(), "devserve.log")

var globalLogFile *os.File

// Initialize should be called once at the beginning of the program to set up logging.
// defer Close() after calling this function. Warnings and errors always reach stderr
// as well as the log file; info lines only reach stdout when verbose is set.
func Initialize(logFile string, verbose bool) {
	if logFile == "" {
		logFile = DefaultLogFile
	}

	var fileOut io.Writer
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not open log file: %s (using stderr instead)\n", err)
		fileOut = os.Stderr
	} else {
		globalLogFile = f
		fileOut = f
	}

	FileOnlyInfoLog = log.New(fileOut, "INFO: ", logFlags)
	FileOnlyWarningLog = log.New(fileOut, "WARNING: ", logFlags)
	FileOnlyErrorLog = log.New(fileOut, "ERROR: ", logFlags)

	infoOut := fileOut
	errOut := fileOut
	if globalLogFile != nil {
		errOut = io.MultiWriter(os.Stderr, globalLogFile)
		if verbose {
			infoOut = io.MultiWriter(os.Stdout, globalLogFile)
		}
	} else {
		// Without a file, request lines only show up when asked for.
		infoOut = io.Discard
		if verbose {
			infoOut = os.Stdout
		}
	}

	InfoLog = log.New(infoOut, "INFO: ", logFlags)
	WarningLog = log.New(errOut, "WARNING: ", logFlags)
	ErrorLog = log.New(errOut, "ERROR: ", logFlags)
}

// Close flushes and closes the log file opened by Initialize.
func Close() {
	if globalLogFile == nil {
		return
	}
	_ = globalLogFile.Close()
	globalLogFile = nil
}

// Every is used to log at most once every timeout duration.
type Every struct {
	timeout time.Duration

	mu   sync.Mutex
	last time.Time
}

func NewEvery(timeout time.Duration) *Every {
	return &Every{timeout: timeout}
}

// ShouldLog returns true if the timeout has passed since the last log.
func (e *Every) ShouldLog() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	if e.last.IsZero() || now.Sub(e.last) >= e.timeout {
		e.last = now
		return true
	}
	return false
}
