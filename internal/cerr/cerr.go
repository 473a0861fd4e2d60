// Copyright (c) 2024 The Falcon Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package cerr holds the compiler's fatal-error channel: type errors,
// undefined names, literal-narrowing overflow, labeler exhaustion and
// malformed token streams are all unrecoverable — they log and terminate
// the process rather than propagate as an ordinary error return.
package cerr

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// New builds a stack-bearing error without exiting — pipeline stages whose
// fatal conditions are detected deep in a recursive walk (internal/check, and
// internal/regfile as driven by internal/labeler) panic with this value instead of calling
// Fatal directly, so a single deferred Guard() at the stage boundary converts
// any of them into the required log-then-exit behavior.
func New(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

// Fatal logs msg (built with errors.Errorf so a stack trace is attached for
// -v debugging) at Error level and exits the process with status 1. It never
// returns.
func Fatal(format string, args ...interface{}) {
	err := errors.Errorf(format, args...)
	logrus.WithError(err).Error("fatal compiler error")
	os.Exit(1)
}

// FatalErr wraps and logs an existing error before exiting, for call sites
// that already hold a concrete error value (e.g. internal/types.Resolve).
func FatalErr(err error) {
	logrus.WithError(errors.WithStack(err)).Error("fatal compiler error")
	os.Exit(1)
}

// Guard recovers a panic raised by a typed error (as internal/types and
// internal/check do) at a pipeline stage boundary and turns it into a
// Fatal/os.Exit(1) call instead of an unhandled Go panic.
func Guard() {
	if r := recover(); r != nil {
		if err, ok := r.(error); ok {
			FatalErr(err)
			return
		}
		Fatal("%v", r)
	}
}
