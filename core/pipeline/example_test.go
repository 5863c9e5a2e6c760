package pipeline

import (
	"bytes"
	"fmt"
)

func ExamplePending_Run() {
	var out bytes.Buffer

	p, err := Command(CaptureStdout(&out), "echo hello world")
	if err != nil {
		fmt.Println(err)
		return
	}
	if _, err := p.Pipe("tr a-z A-Z"); err != nil {
		fmt.Println(err)
		return
	}

	res, err := p.Run()
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Print(out.String())
	fmt.Println("exit:", res.ExitCode)

	// Output: HELLO WORLD
	// exit: 0
}

func ExampleStatusExitCode() {
	// A raw status encoding exit(3) on Unix.
	fmt.Println(StatusExitCode(3 << 8))
	// Output: 3
}
