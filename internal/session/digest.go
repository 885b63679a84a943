package session

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// RulesDigest hashes the files that define a ruleset: catalog, scene and
// every .lua file under the scripts dir. Ledger totals are comparable only
// between sessions with equal digests.
func RulesDigest(catalogPath, scenePath, scriptsDir string) (string, error) {
	paths := []string{catalogPath, scenePath}
	var scripts []string
	err := filepath.WalkDir(scriptsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(p) == ".lua" {
			scripts = append(scripts, p)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("walk scripts: %w", err)
	}
	sort.Strings(scripts)
	paths = append(paths, scripts...)

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return "", fmt.Errorf("digest %s: %w", p, err)
		}
		// length-prefix each file so boundaries shift the digest
		fmt.Fprintf(h, "%s:%d\n", filepath.Base(p), len(raw))
		h.Write(raw)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
