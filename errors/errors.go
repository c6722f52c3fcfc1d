// Copyright 2018 The CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errors defines a positioned Error interface, a List of such
// errors, and a Print/Details renderer. The error types of the peg,
// firestarter and tinder packages are plain Go errors and do not
// implement Error; Print promotes any plain error it is given, so a host
// can still print either kind with one Print/Details call.
package errors

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/hyomoto/firestarter/token"
)

// New is a convenience wrapper for [errors.New]; it does not produce an
// Error implementing this package's richer interface.
func New(msg string) error { return errors.New(msg) }

func Unwrap(err error) error { return errors.Unwrap(err) }

func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target interface{}) bool { return errors.As(err, target) }

// Message implements the error interface and carries a format string and
// its arguments separately, so callers can render them without having
// committed to a particular language at construction time.
type Message struct {
	format string
	args   []interface{}
}

func NewMessagef(format string, args ...interface{}) Message {
	return Message{format: format, args: args}
}

func (m *Message) Msg() (string, []interface{}) { return m.format, m.args }

func (m *Message) Error() string { return fmt.Sprintf(m.format, m.args...) }

// Error is the common interface for every error surfaced by this module.
type Error interface {
	// Position returns the primary source position of the error.
	Position() token.Position
	// InputPositions returns secondary positions that contributed.
	InputPositions() []token.Position
	Error() string
	// Path returns the Crucible dotted-path context of the error, if any.
	Path() []string
	Msg() (format string, args []interface{})
}

// Newf creates an Error at the given position.
func Newf(p token.Position, format string, args ...interface{}) Error {
	return &posError{pos: p, Message: NewMessagef(format, args...)}
}

// Wrapf creates an Error at p wrapping child.
func Wrapf(child error, p token.Position, format string, args ...interface{}) Error {
	return Wrap(&posError{pos: p, Message: NewMessagef(format, args...)}, child)
}

// Wrap subordinates child to parent. If child is itself a List, every
// element is wrapped individually so Positions/Path stay informative.
func Wrap(parent Error, child error) Error {
	if child == nil {
		return parent
	}
	if a, ok := child.(List); ok {
		b := make(List, len(a))
		for i, err := range a {
			b[i] = &wrapped{parent, err}
		}
		return b
	}
	return &wrapped{parent, child}
}

type wrapped struct {
	main Error
	wrap error
}

func (e *wrapped) Error() string {
	msg := e.main.Error()
	switch {
	case e.wrap == nil:
		return msg
	case msg == "":
		return e.wrap.Error()
	default:
		return fmt.Sprintf("%s: %s", msg, e.wrap)
	}
}

func (e *wrapped) Is(target error) bool       { return Is(e.main, target) }
func (e *wrapped) As(target interface{}) bool { return As(e.main, target) }
func (e *wrapped) Unwrap() error              { return e.wrap }

func (e *wrapped) Msg() (string, []interface{}) { return e.main.Msg() }

func (e *wrapped) Path() []string {
	if p := e.main.Path(); p != nil {
		return p
	}
	return Path(e.wrap)
}

func (e *wrapped) InputPositions() []token.Position {
	return append(e.main.InputPositions(), Positions(e.wrap)...)
}

func (e *wrapped) Position() token.Position {
	if p := e.main.Position(); p.IsValid() {
		return p
	}
	if w, ok := e.wrap.(Error); ok {
		return w.Position()
	}
	return token.Position{}
}

// Promote converts a plain error into an Error, attaching msg as context
// if it was not already one.
func Promote(err error, msg string) Error {
	if x, ok := err.(Error); ok {
		return x
	}
	return Wrapf(err, token.Position{}, "%s", msg)
}

var _ Error = &posError{}

type posError struct {
	pos token.Position
	Message
}

func (e *posError) Path() []string                   { return nil }
func (e *posError) InputPositions() []token.Position { return nil }
func (e *posError) Position() token.Position         { return e.pos }

// Path returns the Crucible path of err, if any.
func Path(err error) []string {
	if e := Error(nil); As(err, &e) {
		return e.Path()
	}
	return nil
}

// Positions returns every distinct, valid position attached to err.
func Positions(err error) []token.Position {
	e := Error(nil)
	if !As(err, &e) {
		return nil
	}
	a := make([]token.Position, 0, 3)
	if p := e.Position(); p.IsValid() {
		a = append(a, p)
	}
	sortFrom := len(a)
	for _, p := range e.InputPositions() {
		if p.IsValid() {
			a = append(a, p)
		}
	}
	slices.SortFunc(a[sortFrom:], comparePos)
	return slices.CompactFunc(a, func(a, b token.Position) bool { return a == b })
}

func comparePos(a, b token.Position) int {
	if c := cmp.Compare(a.Line, b.Line); c != 0 {
		return c
	}
	return cmp.Compare(a.Column, b.Column)
}

// List is a list of Errors, implementing Error itself so a caller that
// doesn't care about the cardinality of a failure can treat both the
// same way.
type List []Error

func (p List) Is(target error) bool {
	for _, e := range p {
		if Is(e, target) {
			return true
		}
	}
	return false
}

// Add appends err to the list, flattening nested Lists.
func (p *List) Add(err Error) {
	switch x := err.(type) {
	case nil:
		return
	case List:
		*p = append(*p, x...)
	default:
		*p = append(*p, x)
	}
}

// AddNewf is a convenience wrapper around Add(Newf(...)).
func (p *List) AddNewf(pos token.Position, format string, args ...interface{}) {
	p.Add(Newf(pos, format, args...))
}

func (p List) Error() string {
	format, args := p.Msg()
	return fmt.Sprintf(format, args...)
}

func (p List) Msg() (string, []interface{}) {
	switch len(p) {
	case 0:
		return "no errors", nil
	case 1:
		return p[0].Msg()
	}
	return "%s (and %d more errors)", []interface{}{p[0], len(p) - 1}
}

func (p List) Position() token.Position {
	if len(p) == 0 {
		return token.Position{}
	}
	return p[0].Position()
}

func (p List) InputPositions() []token.Position {
	if len(p) == 0 {
		return nil
	}
	return p[0].InputPositions()
}

func (p List) Path() []string {
	if len(p) == 0 {
		return nil
	}
	return p[0].Path()
}

// Err returns an error equivalent to the list, or nil if it is empty.
func (p List) Err() error {
	if len(p) == 0 {
		return nil
	}
	return p
}

// Sort orders the list by position, then path, then message.
func (p List) Sort() {
	slices.SortFunc(p, func(a, b Error) int {
		if c := comparePos(a.Position(), b.Position()); c != 0 {
			return c
		}
		if c := slices.Compare(a.Path(), b.Path()); c != 0 {
			return c
		}
		return cmp.Compare(a.Error(), b.Error())
	})
}

// Config controls how Print renders a list of errors.
type Config struct {
	// Format, if set, is used instead of fmt.Fprintf for all output.
	Format func(w io.Writer, format string, args ...interface{})
}

// Print writes every error in err (or err itself, if it is not a List)
// to w, one per line, followed by its positions.
func Print(w io.Writer, err error, cfg *Config) {
	if err == nil {
		return
	}
	if cfg == nil {
		cfg = &Config{}
	}
	fprintf := cfg.Format
	if fprintf == nil {
		fprintf = func(w io.Writer, format string, args ...interface{}) { fmt.Fprintf(w, format, args...) }
	}
	list, ok := err.(List)
	if !ok {
		list = List{Promote(err, err.Error())}
	}
	for _, e := range list {
		printOne(w, e, fprintf)
	}
}

// Details is a convenience wrapper returning Print's output as a string.
func Details(err error, cfg *Config) string {
	var b strings.Builder
	Print(&b, err, cfg)
	return b.String()
}

func printOne(w io.Writer, err Error, fprintf func(io.Writer, string, ...interface{})) {
	if path := strings.Join(err.Path(), "."); path != "" {
		io.WriteString(w, path)
		io.WriteString(w, ": ")
	}
	msg, args := err.Msg()
	fprintf(w, msg, args...)
	positions := Positions(err)
	if len(positions) == 0 {
		fprintf(w, "\n")
		return
	}
	fprintf(w, ":\n")
	for _, p := range positions {
		fprintf(w, "    %s\n", p)
	}
}
