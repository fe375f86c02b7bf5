// Package blob stores attachment payloads content-addressed by SHA-256.
package blob

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// #region put

// Put stores blob under <dataDir>/attachments/<sha256>.<ext>. Idempotent:
// re-storing identical bytes leaves the existing file alone. Returns the hex
// digest and the final path.
func Put(dataDir string, data []byte, ext string) (string, string, error) {
	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])

	dir := filepath.Join(dataDir, "attachments")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create attachments dir: %w", err)
	}

	safeExt := strings.TrimPrefix(ext, ".")
	if safeExt == "" {
		safeExt = "bin"
	}
	path := filepath.Join(dir, digest+"."+safeExt)

	if _, err := os.Stat(path); err == nil {
		return digest, path, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", "", fmt.Errorf("write blob: %w", err)
	}
	return digest, path, nil
}

// #endregion
