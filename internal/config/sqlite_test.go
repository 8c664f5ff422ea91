package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestRegisterSQLiteFunctions_Idempotent(t *testing.T) {
	if err := RegisterSQLiteFunctions(); err != nil {
		t.Fatalf("first RegisterSQLiteFunctions() error = %v", err)
	}
	if err := RegisterSQLiteFunctions(); err != nil {
		t.Fatalf("second RegisterSQLiteFunctions() error = %v", err)
	}
}

func TestSetupDatabase_SQLiteLowerIsUnicodeAware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, err := SetupDatabase(&DatabaseConfig{
		Driver: "sqlite",
		SQLite: SQLiteConfig{Path: filepath.Join(t.TempDir(), "lower.db")},
	}, logger)
	if err != nil {
		t.Fatalf("SetupDatabase() error = %v", err)
	}
	t.Cleanup(func() { _ = CloseDatabase(db) })

	tests := []struct {
		in   string
		want string
	}{
		{"ÉCRAN", "écran"},
		{"Ünïcödé Straße", "ünïcödé straße"},
		{"ABC", "abc"},
	}
	for _, tt := range tests {
		var got string
		if err := db.Raw("SELECT lower(?)", tt.in).Scan(&got).Error; err != nil {
			t.Fatalf("lower(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("lower(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}

	var isNull bool
	if err := db.Raw("SELECT lower(NULL) IS NULL").Scan(&isNull).Error; err != nil {
		t.Fatalf("lower(NULL) error = %v", err)
	}
	if !isNull {
		t.Error("lower(NULL) should stay NULL")
	}
}
