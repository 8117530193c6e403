package mdwriter

import (
	"bytes"
	"testing"
)

// stubTokenProvider resolves every TypeDefOrRef reference to a fixed coded
// token, so signature tests can focus on the byte layout around it rather
// than on token resolution.
type stubTokenProvider struct{ token uint32 }

func (s stubTokenProvider) encodedTypeDefOrRef(TypeDefOrRefEntity) (uint32, error) {
	return s.token, nil
}

func TestWriteTypeSigPrimitive(t *testing.T) {
	tp := stubTokenProvider{}
	got, err := WriteTypeSig(tp, &TypeSig{Elem: ElementTypeI4})
	if err != nil {
		t.Fatalf("WriteTypeSig: %v", err)
	}
	want := []byte{byte(ElementTypeI4)}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestWriteTypeSigSZArray(t *testing.T) {
	tp := stubTokenProvider{}
	got, err := WriteTypeSig(tp, &TypeSig{
		Elem: ElementTypeSZArray,
		Next: &TypeSig{Elem: ElementTypeString},
	})
	if err != nil {
		t.Fatalf("WriteTypeSig: %v", err)
	}
	want := []byte{byte(ElementTypeSZArray), byte(ElementTypeString)}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestWriteTypeSigClassEncodesToken(t *testing.T) {
	tp := stubTokenProvider{token: 0x49} // an arbitrary small compressed-fits token
	got, err := WriteTypeSig(tp, &TypeSig{Elem: ElementTypeClass, Type: &TypeRef{TypeName: "Object"}})
	if err != nil {
		t.Fatalf("WriteTypeSig: %v", err)
	}
	want := []byte{byte(ElementTypeClass), 0x49}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestWriteTypeSigGenericVar(t *testing.T) {
	tp := stubTokenProvider{}
	got, err := WriteTypeSig(tp, &TypeSig{Elem: ElementTypeVar, GenericParamIndex: 2})
	if err != nil {
		t.Fatalf("WriteTypeSig: %v", err)
	}
	want := []byte{byte(ElementTypeVar), 2}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestWriteMethodSigStaticVoidNoArgs(t *testing.T) {
	tp := stubTokenProvider{}
	sig := &MethodSig{SentinelIndex: -1, RetType: &TypeSig{Elem: ElementTypeVoid}}
	got, err := WriteMethodSig(tp, sig)
	if err != nil {
		t.Fatalf("WriteMethodSig: %v", err)
	}
	// flags=0x00 (static, non-generic), paramCount=0, retType=Void
	want := []byte{0x00, 0x00, byte(ElementTypeVoid)}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestWriteMethodSigHasThisWithParams(t *testing.T) {
	tp := stubTokenProvider{}
	sig := &MethodSig{
		HasThis:       true,
		SentinelIndex: -1,
		RetType:       &TypeSig{Elem: ElementTypeI4},
		Params: []*TypeSig{
			{Elem: ElementTypeString},
			{Elem: ElementTypeBoolean},
		},
	}
	got, err := WriteMethodSig(tp, sig)
	if err != nil {
		t.Fatalf("WriteMethodSig: %v", err)
	}
	want := []byte{
		SigHasThis, 0x02,
		byte(ElementTypeI4),
		byte(ElementTypeString),
		byte(ElementTypeBoolean),
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestWriteMethodSigVarArgSentinel(t *testing.T) {
	tp := stubTokenProvider{}
	sig := &MethodSig{
		SentinelIndex: 1,
		RetType:       &TypeSig{Elem: ElementTypeVoid},
		Params: []*TypeSig{
			{Elem: ElementTypeI4},
			{Elem: ElementTypeString},
		},
	}
	got, err := WriteMethodSig(tp, sig)
	if err != nil {
		t.Fatalf("WriteMethodSig: %v", err)
	}
	want := []byte{
		0x00, 0x02,
		byte(ElementTypeVoid),
		byte(ElementTypeI4),
		SigVarArg,
		byte(ElementTypeString),
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestWriteFieldSigPrefix(t *testing.T) {
	tp := stubTokenProvider{}
	got, err := WriteFieldSig(tp, &TypeSig{Elem: ElementTypeI4})
	if err != nil {
		t.Fatalf("WriteFieldSig: %v", err)
	}
	want := []byte{SigField, byte(ElementTypeI4)}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestWriteLocalVarSig(t *testing.T) {
	tp := stubTokenProvider{}
	sig := &LocalVarSig{Locals: []*TypeSig{{Elem: ElementTypeI4}, {Elem: ElementTypeObject}}}
	got, err := WriteLocalVarSig(tp, sig)
	if err != nil {
		t.Fatalf("WriteLocalVarSig: %v", err)
	}
	want := []byte{SigLocalVarSig, 0x02, byte(ElementTypeI4), byte(ElementTypeObject)}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestEncodeSignedCompressedSmallValuesFitOneByte(t *testing.T) {
	tests := []int32{0, 3, -3, 63, -64}
	for _, v := range tests {
		encoded := encodeSignedCompressed(v)
		if encoded > 0x7F {
			t.Errorf("encodeSignedCompressed(%d) = %#x, does not fit in one compressed byte", v, encoded)
		}
	}
}
