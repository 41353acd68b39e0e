package mcp

import (
	"testing"
)

func TestNewConnection(t *testing.T) {
	conn := NewConnection("http://localhost:7700", "masterKey")

	client := conn.Client()
	if client == nil {
		t.Fatal("Client() returned nil")
	}
	if client.BaseURL() != "http://localhost:7700" {
		t.Errorf("Client() baseURL = %s, want http://localhost:7700", client.BaseURL())
	}
	if !client.HasAPIKey() {
		t.Error("Client() should carry the API key")
	}
}

func TestConnectionUpdate(t *testing.T) {
	conn := NewConnection("http://localhost:7700", "oldKey")
	before := conn.Client()

	conn.Update("http://remote:7700", "")

	after := conn.Client()
	if after == before {
		t.Error("Update() should replace the client")
	}
	if after.BaseURL() != "http://remote:7700" {
		t.Errorf("Update() baseURL = %s, want http://remote:7700", after.BaseURL())
	}
	if !after.HasAPIKey() {
		t.Error("Update() with empty key should keep the existing key")
	}
}

func TestConnectionUpdate_KeepsURLWhenEmpty(t *testing.T) {
	conn := NewConnection("http://localhost:7700", "")
	conn.Update("", "newKey")

	url, _ := conn.Settings()
	if url != "http://localhost:7700" {
		t.Errorf("Settings() url = %s, want http://localhost:7700", url)
	}
	if !conn.Client().HasAPIKey() {
		t.Error("Update() should set the new key")
	}
}

func TestConnectionSnapshotSurvivesUpdate(t *testing.T) {
	conn := NewConnection("http://localhost:7700", "key-one")
	snapshot := conn.Client()

	conn.Update("http://other:7700", "key-two")

	// The snapshot taken before the update keeps its original target
	if snapshot.BaseURL() != "http://localhost:7700" {
		t.Errorf("snapshot baseURL = %s, want http://localhost:7700", snapshot.BaseURL())
	}
	if conn.Client().BaseURL() != "http://other:7700" {
		t.Errorf("current baseURL = %s, want http://other:7700", conn.Client().BaseURL())
	}
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"empty", "", "(not set)"},
		{"short", "abcd", "****"},
		{"long", "masterKey123", "********y123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maskKey(tt.key); got != tt.want {
				t.Errorf("maskKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestConnectionSettings_MasksKey(t *testing.T) {
	conn := NewConnection("http://localhost:7700", "superSecretKey")

	url, maskedKey := conn.Settings()
	if url != "http://localhost:7700" {
		t.Errorf("Settings() url = %s, want http://localhost:7700", url)
	}
	if maskedKey == "superSecretKey" {
		t.Error("Settings() must not expose the raw key")
	}
	if maskedKey != "**********tKey" {
		t.Errorf("Settings() maskedKey = %s, want **********tKey", maskedKey)
	}
}
