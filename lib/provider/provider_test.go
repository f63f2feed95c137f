package provider

import (
	"encoding/json"
	"testing"

	_ "github.com/kvprovider/kvprovider/lib/backend/memory"
)

func TestOpenFindCloseDatabase(t *testing.T) {
	p := New("")
	db, err := p.OpenDatabase("unordered_map", "orders", nil)
	if err != nil {
		t.Fatalf("OpenDatabase: %v", err)
	}
	if db.Name != "orders" {
		t.Fatalf("got name %q, want %q", db.Name, "orders")
	}

	byName, err := p.FindByName("orders")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if byName != db {
		t.Errorf("FindByName returned a different *Database")
	}

	byID, err := p.FindByID(db.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if byID != db {
		t.Errorf("FindByID returned a different *Database")
	}

	if err := p.CloseDatabase("orders"); err != nil {
		t.Fatalf("CloseDatabase: %v", err)
	}
	if _, err := p.FindByName("orders"); err == nil {
		t.Error("expected FindByName to fail after CloseDatabase")
	}
}

func TestOpenDatabaseDuplicateName(t *testing.T) {
	p := New("")
	if _, err := p.OpenDatabase("unordered_map", "orders", nil); err != nil {
		t.Fatalf("OpenDatabase: %v", err)
	}
	if _, err := p.OpenDatabase("unordered_map", "orders", nil); err == nil {
		t.Error("expected a second open under the same name to fail")
	}
}

func TestOpenDatabaseUnknownBackend(t *testing.T) {
	p := New("")
	if _, err := p.OpenDatabase("no-such-backend", "orders", nil); err == nil {
		t.Error("expected an unregistered backend type to fail")
	}
}

func TestCheckToken(t *testing.T) {
	open := New("")
	if !open.CheckToken("anything") {
		t.Error("empty configured token should accept any caller token")
	}

	gated := New("secret")
	if gated.CheckToken("wrong") {
		t.Error("wrong token should be rejected")
	}
	if !gated.CheckToken("secret") {
		t.Error("matching token should be accepted")
	}
}

func TestGetConfigStoresID(t *testing.T) {
	p := New("")
	db, err := p.OpenDatabase("unordered_map", "orders", nil)
	if err != nil {
		t.Fatalf("OpenDatabase: %v", err)
	}
	raw, err := p.GetConfig("orders")
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	var fields map[string]interface{}
	if unmarshalErr := json.Unmarshal(raw, &fields); unmarshalErr != nil {
		t.Fatalf("stored config is not valid JSON: %v", unmarshalErr)
	}
	if fields["__id__"] != db.ID {
		t.Errorf("stored config __id__ = %v, want %q", fields["__id__"], db.ID)
	}
}

func TestDestroyDatabaseRemovesEntry(t *testing.T) {
	p := New("")
	if _, err := p.OpenDatabase("unordered_map", "orders", nil); err != nil {
		t.Fatalf("OpenDatabase: %v", err)
	}
	if err := p.DestroyDatabase("orders"); err != nil {
		t.Fatalf("DestroyDatabase: %v", err)
	}
	if _, err := p.FindByName("orders"); err == nil {
		t.Error("expected FindByName to fail after DestroyDatabase")
	}
}

func TestListDatabases(t *testing.T) {
	p := New("")
	if _, err := p.OpenDatabase("unordered_map", "a", nil); err != nil {
		t.Fatalf("OpenDatabase: %v", err)
	}
	if _, err := p.OpenDatabase("unordered_map", "b", nil); err != nil {
		t.Fatalf("OpenDatabase: %v", err)
	}
	names := p.ListDatabases()
	if len(names) != 2 {
		t.Fatalf("got %d names, want 2", len(names))
	}
}

func TestLoadOpensConfiguredDatabases(t *testing.T) {
	raw := []byte(`{"token":"admin","databases":[{"type":"unordered_map","name":"orders"}]}`)
	p, err := Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !p.CheckToken("admin") {
		t.Error("Load did not carry the token through")
	}
	if _, err := p.FindByName("orders"); err != nil {
		t.Errorf("expected Load to have opened %q: %v", "orders", err)
	}
}
