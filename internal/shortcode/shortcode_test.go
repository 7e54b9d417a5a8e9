package shortcode

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codec, err := New("test-salt")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	for _, id := range []int64{1, 42, 99999, 1 << 40} {
		code, err := codec.Encode(id)
		if err != nil {
			t.Fatalf("encode %d: %v", id, err)
		}
		if len(code) < 7 {
			t.Fatalf("code %q shorter than minimum length", code)
		}
		got, err := codec.Decode(code)
		if err != nil {
			t.Fatalf("decode %q: %v", code, err)
		}
		if got != id {
			t.Fatalf("round trip mismatch: %d -> %q -> %d", id, code, got)
		}
	}
}

func TestEncodeRejectsNonPositive(t *testing.T) {
	codec, err := New("test-salt")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	for _, id := range []int64{0, -5} {
		if _, err := codec.Encode(id); err == nil {
			t.Errorf("expected error for id %d", id)
		}
	}
}

func TestDifferentSaltsProduceDifferentCodes(t *testing.T) {
	a, err := New("salt-a")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	b, err := New("salt-b")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	codeA, err := a.Encode(1234)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	codeB, err := b.Encode(1234)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if codeA == codeB {
		t.Fatalf("expected salts to differ, both produced %q", codeA)
	}
}
