// Package jobfile loads declarative pipeline descriptions from YAML so
// the CLI can run the same pipeline repeatedly without re-typing it.
package jobfile

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"

	"github.com/shellpipe/shellpipe/core/pipeline"
)

// A Job describes one pipeline: its stages as raw command lines, an
// optional input file, and optional capture files for the final
// stage's streams. Streams without a file inherit the console.
type Job struct {
	Stages     []string `json:"stages" validate:"required,min=1"`
	InputFile  string   `json:"input_file"`
	StdoutFile string   `json:"stdout_file"`
	StderrFile string   `json:"stderr_file"`
}

// Load reads and validates a job file.
func Load(fsys afero.Fs, path string) (*Job, error) {
	contents, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}

	var job Job
	if err := yaml.UnmarshalStrict(contents, &job); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return &job, nil
}

// Validate checks the job for basic semantic errors.
func (j *Job) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})

	return validate.Struct(j)
}

// Pending builds the armed pipeline the job describes, opening its
// input and capture files on fsys. The returned closer releases every
// opened file; call it after the pipeline has run.
func (j *Job) Pending(fsys afero.Fs) (*pipeline.Pending, io.Closer, error) {
	var files listCloser
	fail := func(err error) (*pipeline.Pending, io.Closer, error) {
		files.Close()
		return nil, nil, err
	}

	var out, errw io.Writer
	if j.StdoutFile != "" {
		f, err := fsys.Create(j.StdoutFile)
		if err != nil {
			return fail(err)
		}
		files = append(files, f)
		out = f
	}
	if j.StderrFile != "" {
		f, err := fsys.Create(j.StderrFile)
		if err != nil {
			return fail(err)
		}
		files = append(files, f)
		errw = f
	}

	p, err := pipeline.Command(pipeline.Capture(out, errw), j.Stages[0])
	if err != nil {
		return fail(err)
	}
	for _, stage := range j.Stages[1:] {
		if _, err := p.Pipe(stage); err != nil {
			return fail(err)
		}
	}

	if j.InputFile != "" {
		f, err := fsys.Open(j.InputFile)
		if err != nil {
			return fail(err)
		}
		files = append(files, f)
		p.WithInput(f)
	}

	return p, files, nil
}

type listCloser []io.Closer

func (lc listCloser) Close() error {
	var lastErr error
	for _, v := range lc {
		if err := v.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}
