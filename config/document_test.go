package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadParsesDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dhcp6d.json")
	content := `{
		"server": {"duid": "", "threads": 4, "allow_rapid_commit": true},
		"leasequery": {"store": "memory", "allow_from": ["2001:db8::/32"]},
		"interfaces": [{"name": "eth0", "multicast": true}]
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Server.Threads != 4 || !doc.Server.AllowRapidCommit {
		t.Fatalf("got %+v, want Threads=4 AllowRapidCommit=true", doc.Server)
	}
	if len(doc.Interfaces) != 1 || doc.Interfaces[0].Name != "eth0" {
		t.Fatalf("got %+v, want one interface named eth0", doc.Interfaces)
	}
	if len(doc.Leasequery.AllowFrom) != 1 {
		t.Fatalf("got %+v, want one allow_from entry", doc.Leasequery.AllowFrom)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/dhcp6d.json"); err == nil {
		t.Fatal("expected an error for a missing configuration file")
	}
}
