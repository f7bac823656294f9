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
package source

import (
	"testing"
)

func TestLineCol_01(t *testing.T) {
	file := NewSourceFile("test.src", []byte("abc\ndef\nghi\n"))
	//
	checkLineCol(t, file, 0, 1, 1)
	checkLineCol(t, file, 2, 1, 3)
	checkLineCol(t, file, 4, 2, 1)
	checkLineCol(t, file, 10, 3, 3)
}

func TestSyntaxError_01(t *testing.T) {
	var (
		file = NewSourceFile("test.src", []byte("abc\ndef ghi\n"))
		err  = file.SyntaxError(NewSpan(8, 11), "unexpected thing")
	)
	//
	expected := "test.src:2:5: error: unexpected thing"
	//
	if err.Error() != expected {
		t.Errorf("got %q, expected %q", err.Error(), expected)
	}
}

func TestSyntaxError_02(t *testing.T) {
	var (
		file = NewSourceFile("test.src", []byte("x"))
		err  = file.SyntaxError(NewSpan(0, 1), "bad").WithNote("candidate module: m")
	)
	//
	expected := "test.src:1:1: error: bad\n\tcandidate module: m"
	//
	if err.Error() != expected {
		t.Errorf("got %q", err.Error())
	}
}

func TestEnclosingLine_01(t *testing.T) {
	var (
		file = NewSourceFile("test.src", []byte("first\nsecond\nthird"))
		line = file.FindFirstEnclosingLine(NewSpan(7, 9))
	)
	//
	if line.Number() != 2 || line.String() != "second" {
		t.Errorf("got line %d %q", line.Number(), line.String())
	}
}

// ==================================================================
// Framework
// ==================================================================

func checkLineCol(t *testing.T, file *File, index int, line int, col int) {
	gotLine, gotCol := file.LineColOf(NewSpan(index, index+1))
	//
	if gotLine != line || gotCol != col {
		t.Errorf("index %d: got %d:%d, expected %d:%d", index, gotLine, gotCol, line, col)
	}
}
