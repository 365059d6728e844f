package registry

import "testing"

func TestTableRegisterAndLookup(t *testing.T) {
	table := NewTable[int]()
	table.Register(7, "Seven", func() int { return 7 })

	new, ok := table.ByCode(7)
	if !ok {
		t.Fatal("expected code 7 to be registered")
	}
	if got := new(); got != 7 {
		t.Fatalf("got %d, want 7", got)
	}

	new, ok = table.ByName("Seven")
	if !ok {
		t.Fatal("expected name Seven to be registered")
	}
	if got := new(); got != 7 {
		t.Fatalf("got %d, want 7", got)
	}

	if table.Len() != 1 {
		t.Fatalf("Len = %d, want 1", table.Len())
	}
}

func TestTableRegisterReplacesSilently(t *testing.T) {
	table := NewTable[int]()
	table.Register(1, "One", func() int { return 1 })
	table.Register(1, "OneReplacement", func() int { return 100 })

	new, ok := table.ByCode(1)
	if !ok {
		t.Fatal("expected code 1 to still be registered")
	}
	if got := new(); got != 100 {
		t.Fatalf("got %d, want 100 (replacement)", got)
	}
	if _, ok := table.ByName("One"); ok {
		t.Fatal("expected the old name to no longer resolve")
	}
}

func TestTableByNameMissing(t *testing.T) {
	table := NewTable[int]()
	if _, ok := table.ByName("does-not-exist"); ok {
		t.Fatal("expected lookup of an unregistered name to fail")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"ClientID", "client-i-d"},
		{"IANA", "i-a-n-a"},
		{"already-dashed", "already-dashed"},
		{"  Spaced  ", "spaced"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
