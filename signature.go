package mdwriter

import "bytes"

// This file implements the §4.4 signature writer: it serializes TypeSig and
// the calling-convention signatures to blob bytes per ECMA-335 §II.23.2.
// The writer is pure (spec.md §4.4): every Write* function returns a byte
// slice and takes a tokenProvider to resolve entity references; it never
// touches the heaps or tables store directly.

// tokenProvider is the subset of the token service (§4.6.2) the signature
// writer needs: resolving a TypeDefOrRef reference to its encoded coded
// token, materializing the referenced row as a side effect if necessary.
type tokenProvider interface {
	encodedTypeDefOrRef(e TypeDefOrRefEntity) (uint32, error)
}

// TypeSig is a type signature node, ECMA-335 §II.23.2.12. Elem selects
// which of the fields below are meaningful.
type TypeSig struct {
	Elem ElementType

	// ElementTypeValueType / ElementTypeClass
	Type TypeDefOrRefEntity

	// ElementTypePtr / ElementTypeByRef / ElementTypeSZArray / ElementTypePinned
	// (also the element type for ElementTypeArray)
	Next *TypeSig

	// ElementTypeArray (together with Next)
	ArrayShape *ArrayShape

	// ElementTypeVar / ElementTypeMVar
	GenericParamIndex uint32

	// ElementTypeGenericInst
	GenericType TypeDefOrRefEntity
	GenericArgs []*TypeSig
	IsValueType bool // generic inst of a value type vs a class

	// ElementTypeFnPtr
	FnPtrSig *MethodSig

	// ElementTypeCModReqD / ElementTypeCModOpt (modifier, then Next holds
	// the modified type)
	ModifierType TypeDefOrRefEntity
}

// ArrayShape describes a multi-dimensional array's rank/bounds, ECMA-335
// §II.23.2.13.
type ArrayShape struct {
	Rank                uint32
	Sizes               []uint32
	LowerBounds         []int32
}

// MethodSig is a method or MemberRef calling-convention signature,
// ECMA-335 §II.23.2.1/.2.
type MethodSig struct {
	HasThis         bool
	ExplicitThis    bool
	IsVarArg        bool
	GenericParamCount uint32
	Params          []*TypeSig
	SentinelIndex   int // -1 if no VARARG sentinel; else index in Params
	RetType         *TypeSig
}

// PropertySig is a property signature, ECMA-335 §II.23.2.5.
type PropertySig struct {
	HasThis bool
	Params  []*TypeSig
	Type    *TypeSig
}

// LocalVarSig is a StandAloneSig's local-variable signature, ECMA-335
// §II.23.2.6.
type LocalVarSig struct {
	Locals []*TypeSig
}

// GenericInstSig is a MethodSpec's instantiation signature, ECMA-335
// §II.23.2.15.
type GenericInstSig struct {
	Args []*TypeSig
}

func writeCompressedToBuf(buf *bytes.Buffer, v uint32) { writeCompressedUint(buf, v) }

// writeTypeDefOrRefToken writes a TypeDefOrRef coded token in its
// compressed form, ECMA-335 §II.23.2.8: the coded token itself (already a
// small integer) is written with the ordinary compressed-unsigned encoding.
func writeTypeDefOrRefToken(buf *bytes.Buffer, tp tokenProvider, e TypeDefOrRefEntity) error {
	tok, err := tp.encodedTypeDefOrRef(e)
	if err != nil {
		return err
	}
	writeCompressedToBuf(buf, tok)
	return nil
}

// WriteTypeSig serializes t to its ECMA-335 §II.23.2.12 byte encoding.
func WriteTypeSig(tp tokenProvider, t *TypeSig) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTypeSig(&buf, tp, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeTypeSig(buf *bytes.Buffer, tp tokenProvider, t *TypeSig) error {
	if t == nil {
		buf.WriteByte(byte(ElementTypeVoid))
		return nil
	}
	switch t.Elem {
	case ElementTypeValueType, ElementTypeClass:
		buf.WriteByte(byte(t.Elem))
		return writeTypeDefOrRefToken(buf, tp, t.Type)

	case ElementTypePtr, ElementTypeByRef, ElementTypePinned:
		buf.WriteByte(byte(t.Elem))
		return writeTypeSig(buf, tp, t.Next)

	case ElementTypeSZArray:
		buf.WriteByte(byte(t.Elem))
		return writeTypeSig(buf, tp, t.Next)

	case ElementTypeArray:
		buf.WriteByte(byte(t.Elem))
		if err := writeTypeSig(buf, tp, t.Next); err != nil {
			return err
		}
		shape := t.ArrayShape
		if shape == nil {
			shape = &ArrayShape{}
		}
		writeCompressedToBuf(buf, shape.Rank)
		writeCompressedToBuf(buf, uint32(len(shape.Sizes)))
		for _, s := range shape.Sizes {
			writeCompressedToBuf(buf, s)
		}
		writeCompressedToBuf(buf, uint32(len(shape.LowerBounds)))
		for _, lb := range shape.LowerBounds {
			writeCompressedToBuf(buf, encodeSignedCompressed(lb))
		}
		return nil

	case ElementTypeVar, ElementTypeMVar:
		buf.WriteByte(byte(t.Elem))
		writeCompressedToBuf(buf, t.GenericParamIndex)
		return nil

	case ElementTypeGenericInst:
		buf.WriteByte(byte(t.Elem))
		if t.IsValueType {
			buf.WriteByte(byte(ElementTypeValueType))
		} else {
			buf.WriteByte(byte(ElementTypeClass))
		}
		if err := writeTypeDefOrRefToken(buf, tp, t.GenericType); err != nil {
			return err
		}
		writeCompressedToBuf(buf, uint32(len(t.GenericArgs)))
		for _, a := range t.GenericArgs {
			if err := writeTypeSig(buf, tp, a); err != nil {
				return err
			}
		}
		return nil

	case ElementTypeFnPtr:
		buf.WriteByte(byte(t.Elem))
		return writeMethodSig(buf, tp, t.FnPtrSig)

	case ElementTypeCModReqD, ElementTypeCModOpt:
		buf.WriteByte(byte(t.Elem))
		if err := writeTypeDefOrRefToken(buf, tp, t.ModifierType); err != nil {
			return err
		}
		return writeTypeSig(buf, tp, t.Next)

	default:
		// Primitive element types (Boolean, Char, I1..R8, String, Object,
		// I, U, TypedByRef, Void) carry no further payload.
		buf.WriteByte(byte(t.Elem))
		return nil
	}
}

// encodeSignedCompressed implements ECMA-335 §II.23.2.7's signed
// compressed-integer rotate-and-sign-extend scheme used for array lower
// bounds.
func encodeSignedCompressed(v int32) uint32 {
	u := uint32(v)
	if v < 0 {
		switch {
		case v >= -0x40:
			return (u<<1 | 1) & 0x7F
		case v >= -0x2000:
			return (u<<1 | 1) & 0x3FFF
		default:
			return (u<<1 | 1) & 0x1FFFFFFF
		}
	}
	return u << 1
}

// WriteMethodSig serializes a method/MemberRef calling-convention
// signature, ECMA-335 §II.23.2.1/.2.
func WriteMethodSig(tp tokenProvider, sig *MethodSig) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeMethodSig(&buf, tp, sig); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeMethodSig(buf *bytes.Buffer, tp tokenProvider, sig *MethodSig) error {
	var flags byte
	if sig.HasThis {
		flags |= SigHasThis
	}
	if sig.ExplicitThis {
		flags |= SigExplicitThis
	}
	if sig.IsVarArg {
		flags |= SigVarArg
	}
	if sig.GenericParamCount > 0 {
		flags |= SigGeneric
	}
	buf.WriteByte(flags)
	if sig.GenericParamCount > 0 {
		writeCompressedToBuf(buf, sig.GenericParamCount)
	}
	writeCompressedToBuf(buf, uint32(len(sig.Params)))
	if err := writeTypeSig(buf, tp, sig.RetType); err != nil {
		return err
	}
	for i, p := range sig.Params {
		if sig.SentinelIndex >= 0 && i == sig.SentinelIndex {
			buf.WriteByte(SigVarArg)
		}
		if err := writeTypeSig(buf, tp, p); err != nil {
			return err
		}
	}
	return nil
}

// WriteFieldSig serializes a field signature, ECMA-335 §II.23.2.4.
func WriteFieldSig(tp tokenProvider, t *TypeSig) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(SigField)
	if err := writeTypeSig(&buf, tp, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePropertySig serializes a property signature, ECMA-335 §II.23.2.5.
func WritePropertySig(tp tokenProvider, sig *PropertySig) ([]byte, error) {
	var buf bytes.Buffer
	flags := SigProperty
	if sig.HasThis {
		flags |= SigHasThis
	}
	buf.WriteByte(flags)
	writeCompressedToBuf(&buf, uint32(len(sig.Params)))
	if err := writeTypeSig(&buf, tp, sig.Type); err != nil {
		return nil, err
	}
	for _, p := range sig.Params {
		if err := writeTypeSig(&buf, tp, p); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// WriteLocalVarSig serializes a StandAloneSig local-variable list, ECMA-335
// §II.23.2.6.
func WriteLocalVarSig(tp tokenProvider, sig *LocalVarSig) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(SigLocalVarSig)
	writeCompressedToBuf(&buf, uint32(len(sig.Locals)))
	for _, l := range sig.Locals {
		if err := writeTypeSig(&buf, tp, l); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// WriteGenericInstSig serializes a MethodSpec instantiation, ECMA-335
// §II.23.2.15.
func WriteGenericInstSig(tp tokenProvider, sig *GenericInstSig) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(SigGenericInst)
	writeCompressedToBuf(&buf, uint32(len(sig.Args)))
	for _, a := range sig.Args {
		if err := writeTypeSig(&buf, tp, a); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
