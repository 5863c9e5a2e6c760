// Package shell splits raw command lines into argv slices using a small
// subset of POSIX shell word splitting: single and double quotes,
// backslash escapes, $VAR and ${VAR} expansion, and ~ at word start.
//
// It deliberately does not interpret shell grammar: operators such as
// ";", "&&", globs and redirections pass through as ordinary characters.
// Callers who need those must run a real shell as a pipeline stage.
package shell

import (
	"fmt"
	"os"
	"strings"
)

// A ParseError reports a malformed command line.
type ParseError struct {
	Input string // the offending command line
	Msg   string // what went wrong
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Input, e.Msg)
}

// Env resolves variable references during expansion. The boolean
// reports whether the variable is set; unset variables expand to the
// empty string, except ~ which stays literal when HOME is unset.
type Env func(name string) (string, bool)

// Split tokenizes a command line, expanding variables and ~ from the
// process environment. It fails with a *ParseError on an unterminated
// quote or ${, and on input that yields no tokens.
func Split(s string) ([]string, error) {
	return SplitEnv(s, os.LookupEnv)
}

// Fields splits a command line and returns the program name along with
// the full argv; argv[0] is the program itself, execvp-style.
func Fields(s string) (prog string, argv []string, err error) {
	argv, err = Split(s)
	if err != nil {
		return "", nil, err
	}
	return argv[0], argv, nil
}

type lexState int

const (
	unquoted lexState = iota
	inSingle
	inDouble
)

// SplitEnv is Split with an explicit variable resolver.
func SplitEnv(s string, env Env) ([]string, error) {
	if env == nil {
		env = os.LookupEnv
	}

	var (
		parts []string
		cur   strings.Builder

		st          = unquoted
		inToken     bool // building a token, even if cur is empty ("")
		atWordStart = true
	)

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch st {
		case unquoted:
			switch {
			case isSpace(c):
				if inToken {
					parts = append(parts, cur.String())
					cur.Reset()
					inToken = false
				}
				atWordStart = true
				continue

			case c == '\'':
				st = inSingle

			case c == '"':
				st = inDouble

			case c == '\\':
				if i+1 < len(s) {
					i++
					cur.WriteByte(s[i])
				} else {
					cur.WriteByte('\\')
				}

			case c == '~' && atWordStart:
				if home, ok := env("HOME"); ok {
					cur.WriteString(home)
				} else {
					cur.WriteByte('~')
				}

			case c == '$':
				end, err := expandVar(s, i, env, &cur)
				if err != nil {
					return nil, err
				}
				i = end

			default:
				cur.WriteByte(c)
			}
			inToken = true
			atWordStart = false

		case inSingle:
			if c == '\'' {
				st = unquoted
				continue
			}
			// Literal span: no escapes, no expansion.
			cur.WriteByte(c)
			inToken = true

		case inDouble:
			switch c {
			case '"':
				st = unquoted
				atWordStart = false
				continue
			case '\\':
				if i+1 < len(s) {
					i++
					cur.WriteByte(s[i])
				} else {
					cur.WriteByte('\\')
				}
			case '$':
				end, err := expandVar(s, i, env, &cur)
				if err != nil {
					return nil, err
				}
				i = end
			default:
				cur.WriteByte(c)
			}
			inToken = true
		}
	}

	switch st {
	case inSingle:
		return nil, &ParseError{Input: s, Msg: "unterminated single quote"}
	case inDouble:
		return nil, &ParseError{Input: s, Msg: "unterminated double quote"}
	}

	if inToken {
		parts = append(parts, cur.String())
	}
	if len(parts) == 0 {
		return nil, &ParseError{Input: s, Msg: "empty command"}
	}
	return parts, nil
}

// expandVar consumes a $ reference starting at s[i] and writes its
// expansion to cur. It returns the index of the last consumed byte. A $
// not followed by { or a name start is kept literal.
func expandVar(s string, i int, env Env, cur *strings.Builder) (int, error) {
	lookup := func(name string) string {
		if name == "" {
			return ""
		}
		v, _ := env(name)
		return v
	}

	if i+1 < len(s) && s[i+1] == '{' {
		end := strings.IndexByte(s[i+2:], '}')
		if end < 0 {
			return 0, &ParseError{Input: s, Msg: "unterminated ${"}
		}
		cur.WriteString(lookup(s[i+2 : i+2+end]))
		return i + 2 + end, nil // index of '}'
	}

	j := i + 1
	if j < len(s) && isNameStart(s[j]) {
		j++
		for j < len(s) && isNameChar(s[j]) {
			j++
		}
		cur.WriteString(lookup(s[i+1 : j]))
		return j - 1, nil
	}

	cur.WriteByte('$')
	return i, nil
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isNameStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || ('0' <= c && c <= '9')
}
