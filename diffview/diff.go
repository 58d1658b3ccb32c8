// Package diffview computes the line-by-line changes between an email and its
// rewrite for display.
package diffview

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

type Op string

const (
	OpEqual  Op = "equal"
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

type Line struct {
	Op   Op     `json:"op"`
	Text string `json:"text"`
}

// Lines returns the merged line sequence of original and rewritten. A
// replaced block lists its removed lines before the added ones.
func Lines(original, rewritten string) []Line {
	a, b := splitLines(original), splitLines(rewritten)
	m := difflib.NewMatcher(a, b)
	out := make([]Line, 0, len(a)+len(b))
	for _, oc := range m.GetOpCodes() {
		switch oc.Tag {
		case 'e':
			out = appendLines(out, OpEqual, a[oc.I1:oc.I2])
		case 'd':
			out = appendLines(out, OpRemove, a[oc.I1:oc.I2])
		case 'i':
			out = appendLines(out, OpAdd, b[oc.J1:oc.J2])
		case 'r':
			out = appendLines(out, OpRemove, a[oc.I1:oc.I2])
			out = appendLines(out, OpAdd, b[oc.J1:oc.J2])
		}
	}
	return out
}

type Stats struct {
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Unchanged int `json:"unchanged"`
}

func Summarize(lines []Line) Stats {
	var s Stats
	for _, l := range lines {
		switch l.Op {
		case OpAdd:
			s.Added++
		case OpRemove:
			s.Removed++
		default:
			s.Unchanged++
		}
	}
	return s
}

func appendLines(out []Line, op Op, texts []string) []Line {
	for _, t := range texts {
		out = append(out, Line{Op: op, Text: t})
	}
	return out
}

// splitLines drops line terminators and a single trailing newline, so
// "a\nb\n" and "a\r\nb" both give [a b].
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
