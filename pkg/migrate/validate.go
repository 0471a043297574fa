package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"
)

var migrationFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// Postgres-only syntax that would break the sqlite local store.
var nonPortable = []struct {
	pattern *regexp.Regexp
	hint    string
}{
	{regexp.MustCompile(`(?i)\bJSONB\b`), "use TEXT for JSON payloads"},
	{regexp.MustCompile(`(?i)\bTIMESTAMPTZ\b`), "use TIMESTAMP and store UTC"},
	{regexp.MustCompile(`(?i)\b(BIG)?SERIAL\b`), "use an explicit key column"},
	{regexp.MustCompile(`::\s*[a-zA-Z]`), "avoid postgres casts"},
	{regexp.MustCompile(`(?i)\bgen_random_uuid\s*\(`), "generate ids in the application"},
}

// ValidateDir checks the migrations in dir on disk.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}
	return ValidateFS(os.DirFS(dir), ".")
}

// ValidateFS checks every .sql file under dir: names follow
// YYYYMMDDHHMMSS_name.sql with unique versions, each file carries goose Up and
// Down sections, and the statements stay portable between postgres and sqlite.
func ValidateFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	versions := map[string]string{}
	for _, name := range names {
		m := migrationFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("migration %q: expected YYYYMMDDHHMMSS_name.sql", name)
		}
		if other, dup := versions[m[1]]; dup {
			return fmt.Errorf("migrations %q and %q share version %s", other, name, m[1])
		}
		versions[m[1]] = name

		raw, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read migration %q: %w", name, err)
		}
		if err := checkMigration(name, string(raw)); err != nil {
			return err
		}
	}
	return nil
}

func checkMigration(name, sql string) error {
	for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
		if !strings.Contains(sql, marker) {
			return fmt.Errorf("migration %q missing %q", name, marker)
		}
	}
	for i, line := range strings.Split(sql, "\n") {
		stmt := strings.TrimSpace(line)
		if stmt == "" || strings.HasPrefix(stmt, "--") {
			continue
		}
		for _, rule := range nonPortable {
			if rule.pattern.MatchString(stmt) {
				return fmt.Errorf("migration %q line %d is not sqlite compatible: %s", name, i+1, rule.hint)
			}
		}
	}
	return nil
}
