package engine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Runner runs an external program to completion
type Runner interface {
	// Run starts name with args and waits for it. Standard output goes to stdout
	// when it is not nil. A failure carries what the program printed on standard error.
	Run(ctx context.Context, name string, args []string, stdout io.Writer) error
}

// ExecRunner runs programs with os/exec and logs their standard error at debug level
type ExecRunner struct {
	Logger logrus.FieldLogger
}

// writerLeveler is implemented by both *logrus.Logger and *logrus.Entry
type writerLeveler interface {
	WriterLevel(level logrus.Level) *io.PipeWriter
}

// Run implements Runner
func (r ExecRunner) Run(ctx context.Context, name string, args []string, stdout io.Writer) error {
	log := r.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithField("cmd", name).Debugf("running %s %s", name, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	errorBuffer := &bytes.Buffer{}
	cmd.Stderr = errorBuffer
	if wl, ok := log.(writerLeveler); ok {
		w := wl.WriterLevel(logrus.DebugLevel)
		defer w.Close()
		cmd.Stderr = io.MultiWriter(errorBuffer, w)
	}

	err := cmd.Run()
	if err != nil {
		if stderr := strings.TrimSpace(errorBuffer.String()); stderr != "" {
			return errors.Join(err, errors.New(stderr))
		}
		return err
	}
	return nil
}
