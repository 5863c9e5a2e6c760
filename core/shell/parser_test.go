package shell

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	t.Setenv("HOME", "/home/u")
	t.Setenv("GREETING", "hi there")

	cases := []struct {
		name     string
		input    string
		expected []string
	}{
		{"plain", "a b", []string{"a", "b"}},
		{"whitespace runs", "a \t  b\n", []string{"a", "b"}},
		{"single quotes", "'a b' c", []string{"a b", "c"}},
		{"single quotes are literal", `'$GREETING \n ~'`, []string{`$GREETING \n ~`}},
		{"double quotes", `"a b" c`, []string{"a b", "c"}},
		{"double quote escape", `"a \" b"`, []string{`a " b`}},
		{"double quote expansion", `"a $HOME b"`, []string{"a /home/u b"}},
		{"escape outside quotes", `a\ b`, []string{"a b"}},
		{"escaped dollar", `\$HOME`, []string{"$HOME"}},
		{"trailing backslash", `a\`, []string{`a\`}},
		{"tilde word start", "~", []string{"/home/u"}},
		{"tilde with path", "~/src", []string{"/home/u/src"}},
		{"tilde mid token", "a~b", []string{"a~b"}},
		{"tilde in quotes", `"~"`, []string{"~"}},
		{"var", "$GREETING", []string{"hi there"}},
		{"braced var", "${GREETING}!", []string{"hi there!"}},
		{"unset var", "a$NO_SUCH_VAR_SET_EVER.b", []string{"a.b"}},
		{"unset braced var", "a${NO_SUCH_VAR_SET_EVER}b", []string{"ab"}},
		{"lone dollar", "a$ b $", []string{"a$", "b", "$"}},
		{"dollar digit stays literal", "$1", []string{"$1"}},
		{"quote transitions", "a'b'c", []string{"abc"}},
		{"mixed quoting", `a"b"'c'd`, []string{"abcd"}},
		{"empty quotes make a token", "''", []string{""}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := Split(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestSplitUnsetHome(t *testing.T) {
	argv, err := SplitEnv("~/src", func(string) (string, bool) {
		return "", false
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"~/src"}, argv)
}

func TestSplitErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		msg   string
	}{
		{"empty", "", "empty command"},
		{"blank", " \t ", "empty command"},
		{"unterminated single", "a 'b", "unterminated single quote"},
		{"unterminated double", `a "b`, "unterminated double quote"},
		{"unterminated brace", "a ${HOME", "unterminated ${"},
		{"unterminated brace in quotes", `"${HOME"`, "unterminated ${"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Split(tc.input)
			require.Error(t, err)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tc.input, parseErr.Input)
			assert.Equal(t, tc.msg, parseErr.Msg)
		})
	}
}

func TestFields(t *testing.T) {
	prog, argv, err := Fields("grep -v foo")
	require.NoError(t, err)
	assert.Equal(t, "grep", prog)
	assert.Equal(t, []string{"grep", "-v", "foo"}, argv)
	assert.Equal(t, prog, argv[0])
}

func TestSplitGolden(t *testing.T) {
	t.Setenv("HOME", "/home/demo")
	t.Setenv("GREETING", "hi there")

	g := goldie.New(t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
	)

	cases := map[string]string{
		"plain":     "ls -ltc /tmp",
		"quoting":   `grep 'a b' "c d"`,
		"expansion": `echo $GREETING ${GREETING}! ~ a~b`,
		"escapes":   `printf a\ b \$HOME`,
	}

	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			argv, err := Split(line)
			require.NoError(t, err)

			var buf bytes.Buffer
			for _, tok := range argv {
				fmt.Fprintf(&buf, "%q\n", tok)
			}
			g.Assert(t, name, buf.Bytes())
		})
	}
}

func ExampleSplit() {
	argv, _ := Split(`sh -c 'echo $HOME'`)
	fmt.Printf("%q\n", argv)
	// Output: ["sh" "-c" "echo $HOME"]
}
