// Package output renders measurement payloads to io.Writers: a
// human-readable text form, machine-readable JSON, and the
// per-iteration trace table format.
package output

import (
	"io"

	v1 "github.com/jacquelinekay/rttest/api/v1"
)

type ParameterOutputFunc func(v1.Parameter, io.Writer) error

func (fn ParameterOutputFunc) OutputParam(par v1.Parameter, w io.Writer) error {
	return fn(par, w)
}

type ParameterOutput interface {
	OutputParam(v1.Parameter, io.Writer) error
}
