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
	"fmt"
	"strconv"
	"strings"

	"github.com/tlang-dev/tlc/pkg/tlc/types"
)

// Name mangling produces the stable, decodable link names of globals and
// functions.  A module "a::b" mangles to "__Z1a1b" (length-prefixed
// segments); a variable appends its length-prefixed name; a function further
// appends the encoding of each parameter type, which is what makes
// overloads linkable side by side.

// primitiveCodes encodes the primitive type kinds.
var primitiveCodes = [...]string{
	"v", "B", "ub", "sb", "c", "us", "ss", "ui", "si", "w", "ul", "sl", "f", "d",
}

// MangleModule encodes a module path.
func MangleModule(path []string) string {
	var builder strings.Builder
	//
	builder.WriteString("__Z")
	//
	for _, segment := range path {
		fmt.Fprintf(&builder, "%d%s", len(segment), segment)
	}
	//
	return builder.String()
}

// MangleVar encodes the link name of a module-level variable.
func MangleVar(path []string, name string) string {
	return fmt.Sprintf("%s%d%s", MangleModule(path), len(name), name)
}

// MangleFun encodes the link name of one overload of a function.
func MangleFun(path []string, name string, args []types.Type) string {
	var builder strings.Builder
	//
	builder.WriteString(MangleVar(path, name))
	//
	for _, arg := range args {
		builder.WriteString(MangleType(arg))
	}
	//
	return builder.String()
}

// MangleType encodes a single type.
func MangleType(t types.Type) string {
	switch tt := t.(type) {
	case *types.Primitive:
		return primitiveCodes[tt.Kind]
	case *types.Qualified:
		// Volatility does not participate in overload resolution, hence
		// neither in mangling.
		if tt.Const {
			return "C" + MangleType(tt.Base)
		}
		//
		return MangleType(tt.Base)
	case *types.Array:
		return fmt.Sprintf("A%d%s", tt.Length, MangleType(tt.Elem))
	case *types.Pointer:
		return "P" + MangleType(tt.Base)
	case *types.FunPtr:
		var builder strings.Builder
		//
		builder.WriteString("F")
		builder.WriteString(MangleType(tt.Ret))
		//
		for _, arg := range tt.Args {
			builder.WriteString(MangleType(arg))
		}
		// The terminator keeps the encoding decodable.
		builder.WriteString("E")
		//
		return builder.String()
	case *types.Reference:
		return fmt.Sprintf("T%d%s", len(tt.Entry.Name), tt.Entry.Name)
	}
	//
	panic("unknown type")
}

// ============================================================================
// Unmangling
// ============================================================================

// Unmangle decodes a mangled label back into its module path, name and
// encoded argument types.  It is the inverse used by tooling (and tests) to
// recover the triple from a link name.
func Unmangle(label string) (path []string, name string, args []string, err error) {
	if !strings.HasPrefix(label, "__Z") {
		return nil, "", nil, fmt.Errorf("not a mangled name: %s", label)
	}
	//
	var segments []string
	//
	rest := label[3:]
	// Length-prefixed segments: module path then name.
	for len(rest) > 0 && rest[0] >= '0' && rest[0] <= '9' {
		var segment string
		//
		segment, rest, err = takeLengthPrefixed(rest)
		//
		if err != nil {
			return nil, "", nil, err
		}
		//
		segments = append(segments, segment)
	}
	//
	if len(segments) < 2 {
		return nil, "", nil, fmt.Errorf("truncated mangled name: %s", label)
	}
	//
	path = segments[:len(segments)-1]
	name = segments[len(segments)-1]
	// Remaining text encodes the argument types.
	for len(rest) > 0 {
		var arg string
		//
		arg, rest, err = takeType(rest)
		//
		if err != nil {
			return nil, "", nil, err
		}
		//
		args = append(args, arg)
	}
	//
	return path, name, args, nil
}

func takeLengthPrefixed(text string) (string, string, error) {
	digits := 0
	//
	for digits < len(text) && text[digits] >= '0' && text[digits] <= '9' {
		digits++
	}
	//
	length, err := strconv.Atoi(text[:digits])
	//
	if err != nil || digits+length > len(text) {
		return "", "", fmt.Errorf("malformed length prefix: %s", text)
	}
	//
	return text[digits : digits+length], text[digits+length:], nil
}

// takeType consumes one encoded type, returning it and the remaining text.
func takeType(text string) (string, string, error) {
	if len(text) == 0 {
		return "", "", fmt.Errorf("truncated type encoding")
	}
	//
	switch text[0] {
	case 'C', 'P':
		inner, rest, err := takeType(text[1:])
		return text[:1] + inner, rest, err
	case 'A':
		digits := 1
		for digits < len(text) && text[digits] >= '0' && text[digits] <= '9' {
			digits++
		}
		//
		inner, rest, err := takeType(text[digits:])
		//
		return text[:digits] + inner, rest, err
	case 'F':
		var (
			taken = text[:1]
			rest  = text[1:]
		)
		//
		for len(rest) > 0 && rest[0] != 'E' {
			var (
				inner string
				err   error
			)
			//
			if inner, rest, err = takeType(rest); err != nil {
				return "", "", err
			}
			//
			taken += inner
		}
		//
		if len(rest) == 0 {
			return "", "", fmt.Errorf("unterminated function type encoding")
		}
		//
		return taken + "E", rest[1:], nil
	case 'T':
		_, rest, err := takeLengthPrefixed(text[1:])
		//
		if err != nil {
			return "", "", err
		}
		//
		return text[:len(text)-len(rest)], rest, nil
	case 'u', 's':
		// Two-letter primitive codes.
		if len(text) < 2 {
			return "", "", fmt.Errorf("truncated type encoding")
		}
		//
		return text[:2], text[2:], nil
	case 'v', 'c', 'w', 'f', 'd', 'B':
		return text[:1], text[1:], nil
	}
	//
	return "", "", fmt.Errorf("unknown type encoding: %s", text)
}
