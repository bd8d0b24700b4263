package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Pair is a scaffolded up/down migration file pair sharing one version.
type Pair struct {
	Version  string
	UpFile   string
	DownFile string
}

// Scaffold writes an empty up/down migration pair into dir. The version is
// the current timestamp so files sort in creation order, matching what
// golang-migrate expects.
func Scaffold(dir, name string) (*Pair, error) {
	slug := slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q contains no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	now := time.Now()
	version := now.Format("20060102150405")
	base := filepath.Join(dir, version+"_"+slug)

	p := &Pair{
		Version:  version,
		UpFile:   base + ".up.sql",
		DownFile: base + ".down.sql",
	}

	up := fmt.Sprintf("-- %s\n-- %s\n\nBEGIN;\n\n-- forward changes\n\nCOMMIT;\n",
		slug, now.Format(time.RFC3339))
	down := fmt.Sprintf("-- revert %s\n\nBEGIN;\n\n-- rollback changes\n\nCOMMIT;\n", slug)

	if err := os.WriteFile(p.UpFile, []byte(up), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", p.UpFile, err)
	}
	if err := os.WriteFile(p.DownFile, []byte(down), 0o644); err != nil {
		// Don't leave a dangling half pair behind
		_ = os.Remove(p.UpFile)
		return nil, fmt.Errorf("failed to write %s: %w", p.DownFile, err)
	}
	return p, nil
}

// Available returns the sorted base names of the migration pairs in dir.
// A missing directory is treated as empty.
func Available(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok {
			names = append(names, base)
		}
	}
	sort.Strings(names)
	return names, nil
}

// slugify lowercases a migration name and folds runs of separators and
// punctuation into single underscores
func slugify(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			pendingSep = true
		}
	}
	return b.String()
}
