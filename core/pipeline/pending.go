package pipeline

import "io"

// A Pending is a fully described pipeline that has not run yet. It is a
// single-owner handle: the pipeline behind it executes at most once,
// through Run, which reports the Result, or through Close, which runs a
// still-armed pipeline and discards the outcome.
//
// The intended shape mirrors deferred cleanup:
//
//	p, err := pipeline.Command(sink, "ls -ltc")
//	if err != nil { ... }
//	defer p.Close() // runs the pipeline if nothing else did
//
// Pending is not safe for concurrent use; descriptor bookkeeping is
// deliberately single-threaded until the pumps start.
type Pending struct {
	pl    Pipeline
	sink  Sink
	input inputSource
	armed bool
}

// Command parses one command line into the first stage of a new
// pipeline bound to sink, and returns the armed handle for it.
func Command(sink Sink, cmdline string) (*Pending, error) {
	c, err := parseCmd(cmdline)
	if err != nil {
		return nil, err
	}
	return &Pending{
		pl:    Pipeline{Stages: []Cmd{c}},
		sink:  sink,
		armed: true,
	}, nil
}

// Pipe parses another command line and appends it as a stage whose
// stdin is the previous stage's stdout. It returns the same handle to
// allow left-to-right chaining; the run-at-most-once guarantee covers
// the whole chain.
func (p *Pending) Pipe(cmdline string) (*Pending, error) {
	c, err := parseCmd(cmdline)
	if err != nil {
		return nil, err
	}
	p.pl.Stages = append(p.pl.Stages, c)
	return p, nil
}

// WithInput feeds r to the first stage's stdin. Without an input source
// the first stage inherits the controller's stdin.
func (p *Pending) WithInput(r io.Reader) *Pending {
	p.input = inputSource{kind: inputStream, r: r}
	return p
}

// WithInputBytes feeds b to the first stage's stdin.
func (p *Pending) WithInputBytes(b []byte) *Pending {
	p.input = inputSource{kind: inputBytes, buf: b}
	return p
}

// Run executes the pipeline synchronously and disarms the handle. A
// second call returns ErrAlreadyRun without executing anything.
func (p *Pending) Run() (Result, error) {
	if !p.armed {
		return Result{}, ErrAlreadyRun
	}
	p.armed = false
	return run(p.pl, p.sink, p.input)
}

// Close executes the pipeline if it is still armed, discarding the
// Result and any error so it is always safe in a defer. Callers who
// need to observe the outcome must call Run instead. Close always
// returns nil; the error return exists to satisfy io.Closer.
func (p *Pending) Close() error {
	if p.armed {
		p.armed = false
		_, _ = run(p.pl, p.sink, p.input)
	}
	return nil
}
