package updater

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

// checksumFields is the number of fields in a checksum line (hash + filename).
const checksumFields = 2

// ParseChecksums parses sha256sum output into a map of filename -> hex hash.
// Both text ("hash  name") and binary ("hash *name") modes are accepted.
func ParseChecksums(content string) map[string]string {
	result := make(map[string]string)

	for line := range strings.SplitSeq(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) != checksumFields || !isHexDigest(fields[0]) {
			continue
		}

		result[strings.TrimPrefix(fields[1], "*")] = strings.ToLower(fields[0])
	}

	return result
}

func isHexDigest(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}

	_, err := hex.DecodeString(s)

	return err == nil
}

// VerifyFileChecksum computes the SHA256 of a file and compares it to the expected hex digest.
//
//nolint:gosec // G304: filePath is the artifact we just downloaded, not user-controlled
func VerifyFileChecksum(filePath, expectedHex string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return &DiskError{Op: "opening", Path: filePath, Err: err}
	}
	defer f.Close() //nolint:errcheck // read-only file

	h := sha256.New()

	if _, err := io.Copy(h, f); err != nil {
		return &DiskError{Op: "reading", Path: filePath, Err: errors.Wrap(err, "computing checksum")}
	}

	return compareDigest(filePath, hex.EncodeToString(h.Sum(nil)), expectedHex)
}

func compareDigest(path, actual, expected string) error {
	if !strings.EqualFold(actual, expected) {
		return &IntegrityError{
			Path:   path,
			Reason: "checksum mismatch: expected " + strings.ToLower(expected) + ", got " + actual,
		}
	}

	return nil
}
