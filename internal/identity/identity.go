// Package identity derives stable, non-reversible device and learner IDs
// from a device-local secret. No names, no accounts, nothing leaves the
// device.
package identity

// #region imports
import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// #endregion

// #region types

// DeviceIdentity is the device-local identity material.
type DeviceIdentity struct {
	DeviceID         string
	DeviceSecretHash string // hex sha256 of the secret
}

// #endregion

// #region ensure

// EnsureDeviceIdentity loads the device secret, creating it on first use,
// and derives the device ID from its hash.
func EnsureDeviceIdentity(secretPath string) (DeviceIdentity, error) {
	if err := os.MkdirAll(filepath.Dir(secretPath), 0o700); err != nil {
		return DeviceIdentity{}, fmt.Errorf("create secret dir: %w", err)
	}

	secret, err := os.ReadFile(secretPath)
	if os.IsNotExist(err) {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return DeviceIdentity{}, fmt.Errorf("generate secret: %w", err)
		}
		if err := os.WriteFile(secretPath, secret, 0o600); err != nil {
			return DeviceIdentity{}, fmt.Errorf("write secret: %w", err)
		}
	} else if err != nil {
		return DeviceIdentity{}, fmt.Errorf("read secret: %w", err)
	}

	h := sha256.Sum256(secret)
	return DeviceIdentity{
		DeviceID:         "dev_" + b32(h[:10]),
		DeviceSecretHash: hex.EncodeToString(h[:]),
	}, nil
}

// #endregion

// #region learner-id

// LearnerID derives a per-slot learner ID. Multiple local learners share one
// device; each gets a stable ID from the secret hash plus slot number.
func LearnerID(dev DeviceIdentity, slot int) (string, error) {
	if slot < 1 || slot > 99 {
		return "", fmt.Errorf("learner slot must be 1..99, got %d", slot)
	}
	material := fmt.Sprintf("%s:%d", dev.DeviceSecretHash, slot)
	h := sha256.Sum256([]byte(material))
	return "lrn_" + b32(h[:12]), nil
}

// #endregion

// #region helpers

func b32(b []byte) string {
	return strings.ToLower(strings.TrimRight(base32.StdEncoding.EncodeToString(b), "="))
}

// #endregion
