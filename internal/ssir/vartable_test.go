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
	"testing"

	"github.com/falcon-lang/falcon/internal/types"
)

func TestVarTableLookupFindsNewestShadow(t *testing.T) {
	vt := newVarTable()
	vt.addScope()
	vt.declare("x", types.TaggedType{Size: 4, Kind: types.Numeric})
	vt.addScope()
	vt.declare("x", types.TaggedType{Size: 1, Kind: types.Bool})

	got, ok := vt.lookup("x")
	if !ok {
		t.Fatalf("expected x to resolve")
	}
	if got.Kind != types.Bool {
		t.Fatalf("expected the innermost shadow (bool), got %s", got)
	}
}

func TestVarTableEndScopeRemovesOnlyCurrentDepth(t *testing.T) {
	vt := newVarTable()
	vt.addScope()
	vt.declare("outer", types.TaggedType{Size: 4, Kind: types.Numeric})
	vt.addScope()
	vt.declare("inner", types.TaggedType{Size: 4, Kind: types.Numeric})

	vt.endScope()

	if _, ok := vt.lookup("inner"); ok {
		t.Fatalf("expected inner to be gone after endScope")
	}
	if _, ok := vt.lookup("outer"); !ok {
		t.Fatalf("expected outer to survive endScope of the inner block")
	}
}

func TestVarTableLookupMissingReturnsZero(t *testing.T) {
	vt := newVarTable()
	got, ok := vt.lookup("nope")
	if ok {
		t.Fatalf("expected lookup miss")
	}
	if got != types.Zero {
		t.Fatalf("expected types.Zero on miss, got %s", got)
	}
}
