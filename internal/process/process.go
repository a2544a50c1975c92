// Package process implements the orchestrator's component A and B: a
// subprocess runner that captures stdout/stderr line-by-line into an
// append-only buffer (Process), and a lazy, per-consumer cursor over that
// buffer that blocks until more output arrives or the process exits
// (Stream).
//
// It generalizes a single buffered run-to-completion subprocess call into
// concurrent line-at-a-time streaming: two reader goroutines plus one
// waiter, all mutations behind a single mutex, readers never holding the
// lock across a blocking read.
package process

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kestrelrun/kestrel/internal/taskmodel"
)

// StreamKind tags which pipe a Line was read from.
type StreamKind int

const (
	Stdout StreamKind = iota
	Stderr
)

// Line is one line of process output with its trailing newline stripped.
// Non-UTF-8 byte sequences are lossily replaced, never rejected: a line with
// invalid encoding must not fail the task.
type Line struct {
	Stream StreamKind
	Text   string
}

// MarshalJSON encodes a Line as the wire frame {"Stdout": "..."} or
// {"Stderr": "..."}: an untagged two-variant wire frame.
func (l Line) MarshalJSON() ([]byte, error) {
	if l.Stream == Stderr {
		return json.Marshal(map[string]string{"Stderr": l.Text})
	}
	return json.Marshal(map[string]string{"Stdout": l.Text})
}

// Process owns one child command's lifecycle: its output buffer and its
// terminal exit status. Safe for concurrent use; every consumer of the
// output (see Stream) gets its own cursor over the same append-only slice.
type Process struct {
	mu     sync.Mutex
	output []Line
	status *int // non-nil once the process has exited cleanly
	spawnErr error // set if spawn/wait failed at the OS level

	outputAdded *broadcast
	exited      *broadcast
}

// New creates a Process with no output yet and no recorded exit.
func New() *Process {
	return &Process{
		outputAdded: newBroadcast(),
		exited:      newBroadcast(),
	}
}

// Run spawns args[0] with args[1:] as argv, piping stdout/stderr, and blocks
// until the child exits. It returns nil on a clean spawn+wait regardless of
// the child's exit code: exit-code policy belongs to the caller (the
// scheduler), not to the process runner. A spawn or wait failure at the OS
// level is reported as a taskmodel CommandFailed error.
//
// Concurrency: two reader goroutines (one per pipe) append to the shared
// buffer under p.mu and signal outputAdded after each line; a third
// goroutine-equivalent (this call itself) waits for both readers to finish
// then waits on the child process and signals exited. Readers never hold
// p.mu across the blocking pipe read.
func (p *Process) Run(ctx context.Context, args []string, logger *zap.Logger) error {
	if len(args) == 0 {
		err := fmt.Errorf("empty command")
		p.setSpawnErr(err)
		return taskmodel.CommandFailed(err)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		p.setSpawnErr(err)
		return taskmodel.CommandFailed(err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		p.setSpawnErr(err)
		return taskmodel.CommandFailed(err)
	}

	if err := cmd.Start(); err != nil {
		p.setSpawnErr(err)
		return taskmodel.CommandFailed(err)
	}

	var readers sync.WaitGroup
	readers.Add(2)
	go p.readLines(&readers, stdout, Stdout, logger)
	go p.readLines(&readers, stderr, Stderr, logger)
	readers.Wait()

	waitErr := cmd.Wait()
	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			p.setExited(exitErr.ExitCode())
			return nil
		}
		p.setSpawnErr(waitErr)
		return taskmodel.CommandFailed(waitErr)
	}

	p.setExited(0)
	return nil
}

// readLines reads one pipe to EOF, appending a Line per LF-delimited record
// (CRLF tolerated; bufio.ScanLines strips the trailing \r) and signaling
// outputAdded after each append. Order is preserved within this stream; no
// ordering is guaranteed relative to the other stream.
func (p *Process) readLines(wg *sync.WaitGroup, r io.Reader, stream StreamKind, logger *zap.Logger) {
	defer wg.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		text := strings.ToValidUTF8(scanner.Text(), "�")
		p.mu.Lock()
		p.output = append(p.output, Line{Stream: stream, Text: text})
		p.mu.Unlock()
		p.outputAdded.signal()
	}
	if err := scanner.Err(); err != nil && logger != nil {
		logger.Warn("output pipe read error", zap.Int("stream", int(stream)), zap.Error(err))
	}
}

func (p *Process) setExited(code int) {
	p.mu.Lock()
	p.status = &code
	p.mu.Unlock()
	p.exited.signal()
}

func (p *Process) setSpawnErr(err error) {
	p.mu.Lock()
	p.spawnErr = err
	p.mu.Unlock()
	p.exited.signal()
}

// Len returns the number of lines currently buffered. Exposed for tests and
// for diagnostics; callers that want to consume output in order should use
// Stream instead, which blocks for more rather than racing Len.
func (p *Process) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.output)
}

// ExitCode returns the recorded exit status and whether one was recorded.
// Run always records exactly one of an exit status (setExited) or an
// OS-level spawn/wait failure (setSpawnErr); after a spawn/wait failure no
// status exists, so ExitCode reports exited=false.
func (p *Process) ExitCode() (code int, exited bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == nil {
		return 0, false
	}
	return *p.status, true
}
