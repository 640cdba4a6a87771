package jsonval

import (
	"math"
	"testing"
)

func TestBackendsParse(t *testing.T) {
	const doc = `{"emf":"VERSION_1_1","n":[9007199254740993, 1.5, -1],"ok":true,"none":null}`
	for _, b := range []Backend{Std{}, Segment{}, Lenient{}} {
		t.Run(name(b), func(t *testing.T) {
			v, err := b.Parse([]byte(doc))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if KindOf(v) != KindObject {
				t.Fatalf("kind = %v, want object", KindOf(v))
			}
			emf, _ := Field(v, "emf")
			if s, ok := String(emf); !ok || s != "VERSION_1_1" {
				t.Errorf("emf = %v", emf)
			}
			nv, _ := Field(v, "n")
			n, ok := Array(nv)
			if !ok || len(n) != 3 {
				t.Fatalf("n = %v", nv)
			}
			if i, ok := Int(n[0]); !ok || i != 9007199254740993 {
				t.Errorf("large integer lost precision: %v", n[0])
			}
			if f, ok := Float(n[1]); !ok || f != 1.5 {
				t.Errorf("float = %v", n[1])
			}
			if i, ok := Int(n[2]); !ok || i != -1 {
				t.Errorf("negative = %v", n[2])
			}
			okv, _ := Field(v, "ok")
			if b, ok := Bool(okv); !ok || !b {
				t.Errorf("ok = %v", okv)
			}
			none, present := Field(v, "none")
			if !present || !IsNull(none) {
				t.Errorf("none = %v, %v", none, present)
			}
		})
	}
}

func name(b Backend) string {
	switch b.(type) {
	case Std:
		return "Std"
	case Segment:
		return "Segment"
	case Lenient:
		return "Lenient"
	}
	return "unknown"
}

func TestOrderedSerialize(t *testing.T) {
	v := Ordered{
		{Key: "emf", Value: "VERSION_1_1"},
		{Key: "style", Value: 8},
		{Key: "resource", Value: []any{[]any{0, []any{0, 1}}, -1}},
	}
	want := `{"emf":"VERSION_1_1","style":8,"resource":[[0,[0,1]],-1]}`
	for _, b := range []Backend{Std{}, Segment{}} {
		got, err := b.Serialize(v)
		if err != nil {
			t.Fatalf("%s: Serialize: %v", name(b), err)
		}
		if string(got) != want {
			t.Errorf("%s: got %s, want %s", name(b), got, want)
		}
	}
}

func TestLenientAcceptsComments(t *testing.T) {
	doc := []byte(`{
		// format tag
		"emf": "VERSION_1_0",
		"resource": [1, 2,], /* trailing comma */
	}`)
	if _, err := (Std{}).Parse(doc); err == nil {
		t.Fatal("std backend should reject comments")
	}
	v, err := Lenient{Backend: Std{}}.Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res, _ := Field(v, "resource")
	if a, _ := Array(res); len(a) != 2 {
		t.Errorf("resource = %v", res)
	}
}

func TestAccessorsOnBuiltValues(t *testing.T) {
	tests := []struct {
		in   any
		kind Kind
		i    int64
		ok   bool
	}{
		{int8(-3), KindNumber, -3, true},
		{int16(7), KindNumber, 7, true},
		{float32(2.75), KindNumber, 2, true},
		{int64(math.MaxInt64), KindNumber, math.MaxInt64, true},
		{"12", KindString, 0, false},
		{nil, KindNull, 0, false},
		{true, KindBool, 0, false},
		{struct{}{}, KindInvalid, 0, false},
	}
	for _, tt := range tests {
		if got := KindOf(tt.in); got != tt.kind {
			t.Errorf("KindOf(%#v) = %v, want %v", tt.in, got, tt.kind)
		}
		i, ok := Int(tt.in)
		if ok != tt.ok || i != tt.i {
			t.Errorf("Int(%#v) = %d, %v; want %d, %v", tt.in, i, ok, tt.i, tt.ok)
		}
	}
}

func TestByName(t *testing.T) {
	for _, n := range []string{"", "std", "segment", "lenient"} {
		if _, err := ByName(n); err != nil {
			t.Errorf("ByName(%q): %v", n, err)
		}
	}
	if _, err := ByName("gson"); err == nil {
		t.Error("unknown backend should fail")
	}
}
