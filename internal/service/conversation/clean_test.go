package conversation

import "testing"

func TestClean(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bold", "This is **bold** text", "This is bold text"},
		{"multiple bold", "**a** and **b**", "a and b"},
		{"empty bold", "x****y", "xy"},
		{"bullets", "* item one\n* item two", "- item one\n- item two"},
		{"mid-line asterisk", "Mid-line * not a bullet", "Mid-line * not a bullet"},
		{"only first bullet per line", "* * nested", "- * nested"},
		{"bold inside bullet", "* **Rent**: 40%", "- Rent: 40%"},
		{"bold does not cross lines", "**open\nclose**", "**open\nclose**"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Clean(tc.in); got != tc.want {
				t.Fatalf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	inputs := []string{
		"This is **bold** text",
		"* item one\n* item two",
		"Mid-line * not a bullet",
		"**Tip:** spend less\n* coffee\n* takeout",
		"plain text",
	}

	for _, in := range inputs {
		once := Clean(in)
		if twice := Clean(once); twice != once {
			t.Fatalf("Clean not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
