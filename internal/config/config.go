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

// Package config is the CLI flag struct filled in by cmd/falcon's cobra
// command.
package config

// Config holds the four recognized boolean flags plus the positional source
// path. Booleans default false.
type Config struct {
	PrintAST      bool // --pa: print AST after parsing
	PrintTypedAST bool // --pat: print AST after typecheck
	PrintSSIR     bool // --ssir: print labeled SSIR
	PrintRegTable bool // --rt: print the register table and exit
	SourcePath    string
}
