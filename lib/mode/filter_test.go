package mode

import "testing"

func TestFilterCheckPrefix(t *testing.T) {
	f := NewFilter(0, []byte("ap"))

	cases := map[string]bool{
		"apple":   true,
		"apricot": true,
		"banana":  false,
		"a":       false,
	}

	for key, want := range cases {
		if got := f.Check([]byte(key), nil); got != want {
			t.Errorf("Check(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestFilterCheckSuffix(t *testing.T) {
	f := NewFilter(SUFFIX, []byte("le"))

	if !f.Check([]byte("apple"), nil) {
		t.Error("expected suffix match for apple")
	}
	if f.Check([]byte("banana"), nil) {
		t.Error("expected no suffix match for banana")
	}
}

func TestFilterCheckEmptyMatchesAll(t *testing.T) {
	f := NewFilter(0, nil)
	if !f.Check([]byte("anything"), nil) {
		t.Error("empty filter should match everything")
	}
}

func TestFilterShouldStop(t *testing.T) {
	f := NewFilter(0, []byte("ap"))

	if f.ShouldStop([]byte("apple")) {
		t.Error("should not stop while still within prefix range")
	}
	if !f.ShouldStop([]byte("banana")) {
		t.Error("should stop once past the prefix's ordered range")
	}
}

func TestFilterLuaPredicate(t *testing.T) {
	Register("even-length", func(key, value []byte) bool {
		return len(key)%2 == 0
	})
	defer Unregister("even-length")

	f := NewFilter(LUA_FILTER, []byte("even-length"))
	if !f.Check([]byte("abcd"), nil) {
		t.Error("expected even-length key to match")
	}
	if f.Check([]byte("abc"), nil) {
		t.Error("expected odd-length key to not match")
	}
}

func TestKeyCopyNoPrefix(t *testing.T) {
	emit, elide := KeyCopy(0, []byte("apple"), 2, false)
	if elide {
		t.Fatal("did not expect elision")
	}
	if string(emit) != "apple" {
		t.Errorf("got %q, want %q", emit, "apple")
	}
}

func TestKeyCopyStripPrefix(t *testing.T) {
	emit, elide := KeyCopy(NO_PREFIX, []byte("apple"), 2, false)
	if elide {
		t.Fatal("did not expect elision")
	}
	if string(emit) != "ple" {
		t.Errorf("got %q, want %q", emit, "ple")
	}
}

func TestKeyCopyStripSuffix(t *testing.T) {
	emit, elide := KeyCopy(NO_PREFIX|SUFFIX, []byte("apple"), 2, false)
	if elide {
		t.Fatal("did not expect elision")
	}
	if string(emit) != "app" {
		t.Errorf("got %q, want %q", emit, "app")
	}
}

func TestKeyCopyIgnoreKeysKeepLast(t *testing.T) {
	_, elide := KeyCopy(IGNORE_KEYS, []byte("apple"), 0, false)
	if !elide {
		t.Error("expected elision for non-last record under IGNORE_KEYS")
	}

	emit, elide := KeyCopy(IGNORE_KEYS|KEEP_LAST, []byte("apple"), 0, true)
	if elide {
		t.Fatal("did not expect elision for the last record under KEEP_LAST")
	}
	if string(emit) != "apple" {
		t.Errorf("expected full key for last record under KEEP_LAST, got %q", emit)
	}
}

func TestBitsSupports(t *testing.T) {
	accepted := INCLUSIVE | WAIT | NOTIFY
	if !(INCLUSIVE | WAIT).Supports(accepted) {
		t.Error("expected subset to be supported")
	}
	if (INCLUSIVE | APPEND).Supports(accepted) {
		t.Error("expected APPEND to be unsupported")
	}
}
