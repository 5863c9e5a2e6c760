package pipeline

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sync/errgroup"
)

// launchFailureStatus is the raw wait status synthesized for a stage
// whose process image could not be created, encoding exit code 127.
const launchFailureStatus = 127 << 8

type pipePair struct {
	r, w *os.File
}

func (p *pipePair) active() bool { return p.r != nil || p.w != nil }

func (p *pipePair) close() {
	p.closeRead()
	p.closeWrite()
}

func (p *pipePair) closeRead() {
	if p.r != nil {
		p.r.Close()
		p.r = nil
	}
}

func (p *pipePair) closeWrite() {
	if p.w != nil {
		p.w.Close()
		p.w = nil
	}
}

// wiring holds every descriptor a run needs, planned in full before any
// stage process exists. A stream routed to the console gets no pipe at
// all: the child inherits the controller's descriptor directly.
type wiring struct {
	stage  []pipePair // stage[i] chains stage i's stdout to stage i+1's stdin
	in     pipePair   // input feed; inactive without an input source
	capOut pipePair   // final-stage stdout capture; inactive on console route
	capErr pipePair   // final-stage stderr capture; inactive on console route
}

func newWiring(stages int, sink Sink, hasInput bool) (*wiring, error) {
	w := &wiring{stage: make([]pipePair, stages-1)}

	want := make([]*pipePair, 0, stages+2)
	for i := range w.stage {
		want = append(want, &w.stage[i])
	}
	if hasInput {
		want = append(want, &w.in)
	}
	if sink.out != nil {
		want = append(want, &w.capOut)
	}
	if sink.err != nil {
		want = append(want, &w.capErr)
	}

	for _, p := range want {
		r, wr, err := os.Pipe()
		if err != nil {
			w.closeAll()
			return nil, &SystemError{Op: "pipe", Err: err}
		}
		p.r, p.w = r, wr
	}
	return w, nil
}

func (w *wiring) closeAll() {
	for i := range w.stage {
		w.stage[i].close()
	}
	w.in.close()
	w.capOut.close()
	w.capErr.close()
}

// run executes the pipeline against its sink: plan descriptors, launch
// every stage in order, pump concurrently, then wait for each stage in
// launch order so statuses stay positionally correct.
func run(pl Pipeline, sink Sink, input inputSource) (Result, error) {
	n := len(pl.Stages)
	if n == 0 {
		return Result{}, ErrEmptyPipeline
	}

	w, err := newWiring(n, sink, input.kind != inputNone)
	if err != nil {
		return Result{}, err
	}

	cmds := make([]*exec.Cmd, n)
	started := make([]bool, n)
	statuses := make([]int, n)

	// Launch strictly sequentially; descriptor bookkeeping stays
	// single-threaded until the pumps start.
	for i, stage := range pl.Stages {
		cmd := exec.Command(stage.Path, stage.Args[1:]...)
		last := i == n-1

		switch {
		case i > 0:
			cmd.Stdin = w.stage[i-1].r
		case w.in.active():
			cmd.Stdin = w.in.r
		default:
			cmd.Stdin = os.Stdin
		}

		switch {
		case !last:
			cmd.Stdout = w.stage[i].w
		case w.capOut.active():
			cmd.Stdout = w.capOut.w
		default:
			cmd.Stdout = os.Stdout
		}

		// Only the final stage's stderr is routable; every earlier
		// stage's stderr falls through to the controller's stderr.
		stderr := io.Writer(os.Stderr)
		if last && w.capErr.active() {
			stderr = w.capErr.w
		}
		cmd.Stderr = stderr

		if err := cmd.Start(); err != nil {
			// The stage never became a process. Report it the way the
			// stage itself would have: a diagnostic on its own stderr
			// route and exit status 127. The run carries on so that
			// downstream stages observe EOF.
			fmt.Fprintf(stderr, "shellpipe: %s: %v\n", stage.Path, err)
			statuses[i] = launchFailureStatus
		} else {
			started[i] = true
		}
		cmds[i] = cmd

		// Hand-off complete: drop the parent's copies so EOF can
		// propagate once every remaining writer exits.
		if i > 0 {
			w.stage[i-1].closeRead()
		}
		if !last {
			w.stage[i].closeWrite()
		}
	}

	// The children hold their own duplicates of the capture write ends
	// and the input read end.
	w.capOut.closeWrite()
	w.capErr.closeWrite()
	w.in.closeRead()

	// Pumps run concurrently with the wait loop below; otherwise a
	// stage blocked writing into a full capture pipe would deadlock
	// against a controller blocked in wait.
	var g errgroup.Group
	if fw := w.in.w; fw != nil {
		w.in.w = nil
		src := input
		g.Go(func() error { return feed(src, fw) })
	}
	if cr := w.capOut.r; cr != nil {
		w.capOut.r = nil
		dst := sink.out
		g.Go(func() error { return pump(cr, dst) })
	}
	if cr := w.capErr.r; cr != nil {
		w.capErr.r = nil
		dst := sink.err
		g.Go(func() error { return pump(cr, dst) })
	}

	// Wait on stage i before stage i+1 no matter which process exits
	// first; the kernel retains statuses until reaped.
	var waitErr error
	for i := range cmds {
		if !started[i] {
			continue // slot already carries the synthesized 127
		}
		err := cmds[i].Wait()
		state := cmds[i].ProcessState
		if state == nil {
			// wait(2) itself failed; the raw status is unknowable.
			if waitErr == nil {
				waitErr = &SystemError{Op: "wait", Err: err}
			}
			statuses[i] = -1
			continue
		}
		if ws, ok := state.Sys().(syscall.WaitStatus); ok {
			statuses[i] = int(ws)
		}
	}

	// Every pump joins before the Result exists; no task outlives the
	// run it contributed to.
	pumpErr := g.Wait()
	w.closeAll()

	res := Result{
		ExitCode:      StatusExitCode(statuses[n-1]),
		StageStatuses: statuses,
	}
	switch {
	case waitErr != nil:
		return res, waitErr
	case pumpErr != nil:
		return res, pumpErr
	}
	return res, nil
}
