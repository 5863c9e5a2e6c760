// Package pipeline launches external programs chained stdout-to-stdin
// like a shell pipe and routes the final stage's output either to the
// controller's own console streams or to caller-supplied writers.
//
// A pipeline is described once, stage by stage, and executed at most
// once through its Pending handle:
//
//	var out bytes.Buffer
//	p, err := pipeline.Command(pipeline.CaptureStdout(&out), "ls -ltc")
//	if err != nil { ... }
//	if _, err := p.Pipe("grep main"); err != nil { ... }
//	res, err := p.Run()
//
// Stage processes are real OS processes; no shell grammar is
// interpreted anywhere. Running a shell explicitly as a stage ("sh -c
// ...") is the supported escape hatch.
package pipeline

import (
	"io"
	"syscall"

	"github.com/shellpipe/shellpipe/core/shell"
)

// A Cmd is one parsed pipeline stage: a program and its full argv.
// Args[0] is always the program itself.
type Cmd struct {
	Path string
	Args []string
}

// parseCmd builds a stage from one raw command line.
func parseCmd(cmdline string) (Cmd, error) {
	prog, argv, err := shell.Fields(cmdline)
	if err != nil {
		return Cmd{}, err
	}
	return Cmd{Path: prog, Args: argv}, nil
}

// A Pipeline is an ordered sequence of stages. Stages are only ever
// appended; order is fixed once a stage is added.
type Pipeline struct {
	Stages []Cmd
}

// A Sink is the resolved destination pair for the final stage's stdout
// and stderr. A nil route inherits the controller's own console stream
// directly, with no intermediate pipe or pump.
type Sink struct {
	out io.Writer
	err io.Writer
}

// Console routes both streams to the controller's own stdout and stderr.
func Console() Sink { return Sink{} }

// CaptureStdout routes stdout to out and stderr to the console.
func CaptureStdout(out io.Writer) Sink { return Sink{out: out} }

// CaptureStderr routes stderr to errw and stdout to the console.
func CaptureStderr(errw io.Writer) Sink { return Sink{err: errw} }

// Capture routes each stream to its own writer. Either writer may be
// nil to inherit the console for that stream.
func Capture(out, errw io.Writer) Sink { return Sink{out: out, err: errw} }

// Input sources form a tagged union: absent, an in-memory buffer, or an
// external stream. The feed task dispatches on the tag exactly once.
type inputKind int

const (
	inputNone inputKind = iota
	inputBytes
	inputStream
)

type inputSource struct {
	kind inputKind
	buf  []byte
	r    io.Reader
}

// Result reports the outcome of one pipeline execution.
type Result struct {
	// ExitCode is derived from the final stage's raw status: the exit
	// code for a normal exit, 128+signal for a signal death, -1 for
	// anything else.
	ExitCode int

	// StageStatuses holds every stage's raw wait status, indexed by
	// launch order regardless of actual completion order.
	StageStatuses []int
}

// StatusExitCode maps a raw wait status to a shell-style exit code:
// the exit code itself for a normal exit, 128+signal for a signal
// death, and -1 for anything else.
func StatusExitCode(status int) int {
	ws := syscall.WaitStatus(status)
	switch {
	case ws.Exited():
		return ws.ExitStatus()
	case ws.Signaled():
		return 128 + int(ws.Signal())
	default:
		return -1
	}
}
