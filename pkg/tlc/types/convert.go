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
package types

// Equal determines whether two types are identical.  Equality is structural
// for primitives, qualified types, pointers, arrays and function pointers,
// and nominal (by entry identity) for references.  Qualifiers participate in
// equality, thus "int const" is not equal to "int".
func Equal(a Type, b Type) bool {
	switch ta := a.(type) {
	case *Primitive:
		tb, ok := b.(*Primitive)
		return ok && ta.Kind == tb.Kind
	case *Qualified:
		tb, ok := b.(*Qualified)
		return ok && ta.Const == tb.Const && ta.Volatile == tb.Volatile && Equal(ta.Base, tb.Base)
	case *Pointer:
		tb, ok := b.(*Pointer)
		return ok && Equal(ta.Base, tb.Base)
	case *Array:
		tb, ok := b.(*Array)
		return ok && ta.Length == tb.Length && Equal(ta.Elem, tb.Elem)
	case *FunPtr:
		tb, ok := b.(*FunPtr)
		//
		if !ok || len(ta.Args) != len(tb.Args) || !Equal(ta.Ret, tb.Ret) {
			return false
		}
		//
		for i := range ta.Args {
			if !Equal(ta.Args[i], tb.Args[i]) {
				return false
			}
		}
		//
		return true
	case *Aggregate:
		tb, ok := b.(*Aggregate)
		//
		if !ok || len(ta.Fields) != len(tb.Fields) {
			return false
		}
		//
		for i := range ta.Fields {
			if !Equal(ta.Fields[i], tb.Fields[i]) {
				return false
			}
		}
		//
		return true
	case *Reference:
		tb, ok := b.(*Reference)
		return ok && ta.Entry == tb.Entry
	}
	//
	return false
}

// Convertible determines whether a value of one type is implicitly
// convertible into a value of another.  The conversion lattice is: identity;
// addition of const; integer widening (respecting signedness); integer to
// float; float to double; array-to-pointer decay; any pointer to void* and
// back; null to any pointer; and enum to/from its underlying integer type at
// equal size.
func Convertible(from Type, to Type) bool {
	// Identity always holds.
	if Equal(from, to) {
		return true
	}
	// Adding const (or dropping it on a value copy) is always permitted.
	if q, ok := to.(*Qualified); ok {
		return Convertible(unqualify(from), q.Base)
	}
	//
	if q, ok := from.(*Qualified); ok {
		return Convertible(q.Base, to)
	}
	// Resolve enum and typedef references
	sfrom, sto := Strip(from), Strip(to)
	//
	if !Equal(from, sfrom) || !Equal(to, sto) {
		return Convertible(sfrom, sto)
	}
	//
	// Aggregate initialisers convert into arrays and structs whose element
	// count and types match.
	if agg, ok := from.(*Aggregate); ok {
		return convertibleAggregate(agg, to)
	}
	//
	switch tto := to.(type) {
	case *Primitive:
		return convertiblePrimitive(from, tto)
	case *Pointer:
		return convertiblePointer(from, tto)
	}
	//
	return false
}

func convertibleAggregate(from *Aggregate, to Type) bool {
	switch tto := to.(type) {
	case *Array:
		if uint(len(from.Fields)) != tto.Length {
			return false
		}
		//
		for _, f := range from.Fields {
			if !Convertible(f, tto.Elem) {
				return false
			}
		}
		//
		return true
	case *Reference:
		entry := tto.Entry
		//
		if entry.Incomplete || (entry.Kind != STRUCT && entry.Kind != UNION) {
			return false
		}
		//
		if len(from.Fields) > len(entry.Fields) {
			return false
		}
		// A struct takes exactly one element per field.
		if entry.Kind == STRUCT && len(from.Fields) != len(entry.Fields) {
			return false
		}
		//
		for i, f := range from.Fields {
			if !Convertible(f, entry.Fields[i].Type) {
				return false
			}
		}
		//
		return true
	}
	//
	return false
}

func convertiblePrimitive(from Type, to *Primitive) bool {
	pfrom, ok := from.(*Primitive)
	//
	if !ok {
		return false
	}
	// Integer to float
	if IsInteger(pfrom) && (to.Kind == FLOAT || to.Kind == DOUBLE) {
		return true
	}
	// Float widening
	if pfrom.Kind == FLOAT && to.Kind == DOUBLE {
		return true
	}
	// Integer widening
	if IsInteger(pfrom) && IsInteger(to) {
		var (
			wfrom, wto = SizeOf(pfrom), SizeOf(to)
			sfrom, sto = IsSigned(pfrom), IsSigned(to)
		)
		//
		switch {
		case sfrom == sto:
			return wfrom <= wto
		case !sfrom && sto:
			// Unsigned into signed requires strictly more room.
			return wfrom < wto
		}
	}
	//
	return false
}

func convertiblePointer(from Type, to *Pointer) bool {
	switch tfrom := from.(type) {
	case *Array:
		// Array-to-pointer decay, with const propagating from the element.
		return Convertible(NewPointer(tfrom.Elem), to)
	case *Pointer:
		// Any pointer converts to void*, and void* to any pointer.  Adding
		// const under the pointer is fine; dropping it is not.  No other
		// pointer conversion is implicit: the pointee types must be
		// identical.
		if IsVoid(to.Base) || IsVoid(tfrom.Base) {
			return true
		}
		//
		if IsConst(tfrom.Base) && !IsConst(to.Base) {
			return false
		}
		//
		return Equal(unqualify(tfrom.Base), unqualify(to.Base))
	case *Primitive:
		// The null literal carries type void*, caught above.  No other
		// primitive converts to a pointer.
		return false
	}
	//
	return false
}

// Promote computes the common type of two arithmetic operands under the usual
// arithmetic conversions: floating point dominates; otherwise the wider
// integer type wins, and at equal width an unsigned operand wins.
func Promote(a Type, b Type) Type {
	var (
		sa, sb = Strip(a), Strip(b)
	)
	// Floating point dominates
	if IsFloat(sa) || IsFloat(sb) {
		if SizeOf(sa) == LONG_WIDTH && IsFloat(sa) {
			return sa
		} else if SizeOf(sb) == LONG_WIDTH && IsFloat(sb) {
			return sb
		} else if IsFloat(sa) {
			return sa
		}
		//
		return sb
	}
	//
	var (
		wa, wb = SizeOf(sa), SizeOf(sb)
	)
	//
	switch {
	case wa > wb:
		return sa
	case wb > wa:
		return sb
	case !IsSigned(sa):
		return sa
	}
	//
	return sb
}

func unqualify(t Type) Type {
	if q, ok := t.(*Qualified); ok {
		return q.Base
	}
	//
	return t
}
