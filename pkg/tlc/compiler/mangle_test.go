// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package compiler

import (
	"slices"
	"testing"

	"github.com/tlang-dev/tlc/pkg/tlc/types"
)

func TestMangle_01(t *testing.T) {
	if got := MangleVar([]string{"a"}, "x"); got != "__Z1a1x" {
		t.Errorf("got %s", got)
	}
}

func TestMangle_02(t *testing.T) {
	if got := MangleModule([]string{"a", "b"}); got != "__Z1a1b" {
		t.Errorf("got %s", got)
	}
}

func TestMangle_03(t *testing.T) {
	got := MangleFun([]string{"m"}, "f",
		[]types.Type{types.NewPrimitive(types.SINT), types.NewPrimitive(types.SLONG)})
	//
	if got != "__Z1m1fsisl" {
		t.Errorf("got %s", got)
	}
}

func TestMangle_04(t *testing.T) {
	// Const, array and pointer encodings compose.
	typ := types.NewPointer(types.NewConst(types.NewPrimitive(types.CHAR)))
	//
	if got := MangleType(typ); got != "PCc" {
		t.Errorf("got %s", got)
	}
	//
	arr := types.NewArray(6, types.NewPrimitive(types.UBYTE))
	//
	if got := MangleType(arr); got != "A6ub" {
		t.Errorf("got %s", got)
	}
}

func TestMangle_05(t *testing.T) {
	// Named types are length prefixed.
	entry := types.NewNamed("m", "point", types.STRUCT)
	//
	if got := MangleType(types.NewReference(entry)); got != "T5point" {
		t.Errorf("got %s", got)
	}
}

func TestMangle_06(t *testing.T) {
	// Overloads of one name produce distinct labels.
	var (
		a = MangleFun([]string{"m"}, "f", []types.Type{types.NewPrimitive(types.SINT)})
		b = MangleFun([]string{"m"}, "f", []types.Type{types.NewPrimitive(types.SLONG)})
	)
	//
	if a == b {
		t.Errorf("overloads collide: %s", a)
	}
}

func TestUnmangle_01(t *testing.T) {
	checkRoundTrip(t, []string{"a"}, "x", nil)
}

func TestUnmangle_02(t *testing.T) {
	checkRoundTrip(t, []string{"a", "b"}, "f", []types.Type{
		types.NewPrimitive(types.SINT),
		types.NewPointer(types.NewConst(types.NewPrimitive(types.CHAR))),
	})
}

func TestUnmangle_03(t *testing.T) {
	checkRoundTrip(t, []string{"vec"}, "sum", []types.Type{
		types.NewArray(4, types.NewPrimitive(types.DOUBLE)),
		types.NewFunPtr(types.NewPrimitive(types.VOID), types.NewPrimitive(types.SINT)),
	})
}

// ==================================================================
// Framework
// ==================================================================

func checkRoundTrip(t *testing.T, path []string, name string, args []types.Type) {
	label := MangleFun(path, name, args)
	//
	gotPath, gotName, gotArgs, err := Unmangle(label)
	//
	if err != nil {
		t.Fatalf("unmangle %s: %v", label, err)
	}
	//
	if !slices.Equal(gotPath, path) || gotName != name {
		t.Errorf("unmangle %s: got %v::%s", label, gotPath, gotName)
	}
	//
	expected := make([]string, len(args))
	//
	for i, arg := range args {
		expected[i] = MangleType(arg)
	}
	//
	if !slices.Equal(gotArgs, expected) {
		t.Errorf("unmangle %s: got args %v, expected %v", label, gotArgs, expected)
	}
}
