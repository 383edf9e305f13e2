package workspace

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/smilealdway/PowerMCP/internal/envelope"
)

// keyHashLen is the number of hex characters of the content hash kept in a
// derived key.
const keyHashLen = 8

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Key derives a stable, human-discoverable workspace key from an operation
// prefix and the primary input's identity: "<prefix>_<stem>_<hash8>".
//
// The hash covers the file content, so two different inputs sharing a stem
// land in different workspaces while repeated runs on the same bytes reuse
// one directory.
func Key(prefix, inputPath string) (string, error) {
	abs, err := filepath.Abs(inputPath)
	if err != nil {
		return "", fmt.Errorf("resolve input path %q: %w", inputPath, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", envelope.InputNotFound(abs)
		}
		return "", fmt.Errorf("read input %q: %w", abs, err)
	}

	sum := blake3.Sum256(data)
	stem := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	return sanitizeKeyPart(prefix) + "_" + sanitizeKeyPart(stem) + "_" +
		hex.EncodeToString(sum[:])[:keyHashLen], nil
}

// StaticKey builds a key for operations without a primary input file, e.g.
// "tds_10s".
func StaticKey(prefix, name string) string {
	if name == "" {
		return sanitizeKeyPart(prefix)
	}
	return sanitizeKeyPart(prefix) + "_" + sanitizeKeyPart(name)
}

func sanitizeKeyPart(s string) string {
	s = unsafeKeyChars.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-._")
	if s == "" {
		return "x"
	}
	return s
}
