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

package ssir

import (
	"github.com/samber/lo"

	"github.com/falcon-lang/falcon/internal/types"
)

// varEntry is one row of the SSIR-scoped variable table.
type varEntry struct {
	name  string
	depth int
	typ   types.TaggedType
}

// varTable is a stack of {name, scope-level, type-tag} entries. It is
// distinct from internal/check's locals map: the checker's table is gone by
// the time the builder runs, so the builder keeps its own.
type varTable struct {
	entries []varEntry
	depth   int
}

func newVarTable() *varTable { return &varTable{} }

func (t *varTable) addScope() { t.depth++ }

// endScope removes every entry whose scope-level equals the current depth
// before decrementing it.
func (t *varTable) endScope() {
	t.entries = lo.Filter(t.entries, func(e varEntry, _ int) bool { return e.depth != t.depth })
	t.depth--
}

func (t *varTable) declare(name string, typ types.TaggedType) {
	t.entries = append(t.entries, varEntry{name: name, depth: t.depth, typ: typ})
}

// lookup searches from newest to oldest, so a shadowing declaration in an
// inner scope resolves before the one it shadows.
func (t *varTable) lookup(name string) (types.TaggedType, bool) {
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].name == name {
			return t.entries[i].typ, true
		}
	}
	return types.Zero, false
}
