package database

import (
	"strings"
	"testing"
)

func TestMigrationNamesAreOrdered(t *testing.T) {
	names, err := migrationNames()
	if err != nil {
		t.Fatalf("migrationNames returned error: %v", err)
	}

	want := []string{"001_viral_posts.sql", "002_generated_history.sql", "003_activity_logs.sql"}
	if len(names) != len(want) {
		t.Fatalf("expected %d migrations, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("migration %d = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestMigrationsCreateExpectedTables(t *testing.T) {
	tables := map[string]string{
		"001_viral_posts.sql":       "viral_posts",
		"002_generated_history.sql": "generated_history",
		"003_activity_logs.sql":     "activity_logs",
	}

	for file, table := range tables {
		content, err := migrationFiles.ReadFile("migrations/" + file)
		if err != nil {
			t.Fatalf("failed to read %s: %v", file, err)
		}
		if !strings.Contains(string(content), "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("%s does not create %s", file, table)
		}
	}
}
