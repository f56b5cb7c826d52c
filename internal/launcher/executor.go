package launcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Executor starts programs without waiting for them and runs the host's
// force-kill command to stop them. Neither call blocks on the child process.
type Executor struct {
	terminateCmd []string
	timeout      time.Duration
	logger       *slog.Logger

	wg sync.WaitGroup
}

// NewExecutor creates an Executor. terminateCmd is the kill command prefix;
// the process name is appended as the last argument.
func NewExecutor(terminateCmd []string, timeout time.Duration) *Executor {
	return &Executor{
		terminateCmd: terminateCmd,
		timeout:      timeout,
		logger:       slog.Default(),
	}
}

// SetLogger sets where background terminate failures are reported.
func (e *Executor) SetLogger(logger *slog.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// Launch starts the first candidate path of p that exists. Missing
// executables fall through to the next candidate; any other start failure is
// returned as is. The started process is reaped in the background.
func (e *Executor) Launch(p *Program) error {
	if p == nil || len(p.Paths) == 0 {
		return ErrNoExecutable
	}

	for _, path := range p.Paths {
		cmd := exec.Command(path, p.Args...)

		err := cmd.Start()
		if err == nil {
			go cmd.Wait()
			return nil
		}

		if isMissing(err) {
			continue
		}
		return fmt.Errorf("start %s: %w", path, err)
	}

	return fmt.Errorf("%w for %s (tried %s)", ErrNoExecutable, p.Name, strings.Join(p.Paths, ", "))
}

// Terminate starts the force-kill command for every process named
// processName and returns once it is running. Only configuration and start
// errors are returned; a kill command that fails or times out is logged.
func (e *Executor) Terminate(processName string) error {
	if len(e.terminateCmd) == 0 {
		return errors.New("no terminate command configured")
	}
	if processName == "" {
		return errors.New("process name is empty")
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)

	args := append(append([]string{}, e.terminateCmd[1:]...), processName)
	cmd := exec.CommandContext(ctx, e.terminateCmd[0], args...)

	cmd.WaitDelay = time.Second

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("terminate %s: %w", processName, err)
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer cancel()

		if err := e.waitTerminate(ctx, cmd, processName, &stderr); err != nil {
			e.logger.Warn("terminate failed", "process", processName, "err", err)
		}
	}()

	return nil
}

// Wait blocks until every started kill command has finished.
func (e *Executor) Wait() {
	e.wg.Wait()
}

func (e *Executor) waitTerminate(ctx context.Context, cmd *exec.Cmd, processName string, stderr *bytes.Buffer) error {
	err := cmd.Wait()

	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("terminate %s: timeout after %s", processName, e.timeout)
	}

	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("terminate %s: %w, stderr: %s", processName, err, msg)
		}
		return fmt.Errorf("terminate %s: %w", processName, err)
	}

	return nil
}

func isMissing(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}
