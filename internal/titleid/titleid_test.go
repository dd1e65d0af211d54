package titleid

import "testing"

func TestParseAndString(t *testing.T) {
	id, err := Parse("0005000010101C00")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := id.String(); got != "0005000010101C00" {
		t.Errorf("String() = %q, want %q", got, "0005000010101C00")
	}
}

func TestParseLowercase(t *testing.T) {
	id, err := Parse("0005000010101c00")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := id.String(); got != "0005000010101C00" {
		t.Errorf("String() = %q, want %q", got, "0005000010101C00")
	}
}

func TestParseRejectsBadLength(t *testing.T) {
	if _, err := Parse("0005"); err == nil {
		t.Error("expected error for short input")
	}
	if _, err := Parse("0005000010101C0000"); err == nil {
		t.Error("expected error for long input")
	}
}

func TestParseRejectsNonHex(t *testing.T) {
	if _, err := Parse("ZZZZ000010101C00"); err == nil {
		t.Error("expected error for non-hex input")
	}
}

func TestCategory(t *testing.T) {
	cases := []struct {
		id   string
		want Category
	}{
		{"0005000000001C00", CategoryApplication},
		{"0005000000021C00", CategoryDemo},
		{"00050000000C1C00", CategoryDLC},
		{"00050000000E1C00", CategoryUpdate},
		{"0005000000101C00", CategorySystem},
	}
	for _, c := range cases {
		id, err := Parse(c.id)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.id, err)
		}
		if got := id.Category(); got != c.want {
			t.Errorf("Category(%q) = %v, want %v", c.id, got, c.want)
		}
	}
}

func TestCategoryString(t *testing.T) {
	cases := map[Category]string{
		CategoryApplication: "application",
		CategoryDemo:        "demo",
		CategoryDLC:         "DLC",
		CategoryUpdate:      "update",
		CategorySystem:      "system",
	}
	for cat, want := range cases {
		if got := cat.String(); got != want {
			t.Errorf("Category(%d).String() = %q, want %q", cat, got, want)
		}
	}
}

func TestBytes(t *testing.T) {
	id, err := Parse("0005000010101C00")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b := id.Bytes()
	if len(b) != 8 {
		t.Fatalf("Bytes() length = %d, want 8", len(b))
	}
	want := []byte{0x00, 0x05, 0x00, 0x00, 0x10, 0x10, 0x1C, 0x00}
	for i := range want {
		if b[i] != want[i] {
			t.Errorf("Bytes()[%d] = 0x%02X, want 0x%02X", i, b[i], want[i])
		}
	}
}
