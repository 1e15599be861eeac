// Package media is the capture/file-import collaborator: it accepts
// photo or audio bytes from whatever captured them and hands back an
// opaque reference. The assessment core stores the reference verbatim
// and never looks inside it.
package media

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Kind distinguishes the two capture channels.
type Kind string

const (
	KindPhoto Kind = "photo"
	KindAudio Kind = "audio"
)

func (k Kind) ext() string {
	if k == KindAudio {
		return ".webm"
	}
	return ".png"
}

// Saver is what the handler depends on; a failed or abandoned capture
// simply never calls it.
type Saver interface {
	Save(kind Kind, data []byte) (ref string, err error)
}

// Library is a content-addressed blob directory. References are bare
// file names, so saving the same bytes twice yields the same ref.
type Library struct {
	dir string
}

func NewLibrary(dir string) (*Library, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Library{dir: dir}, nil
}

// Save stores the bytes and returns the opaque reference.
func (l *Library) Save(kind Kind, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty %s capture", kind)
	}
	sum := sha256.Sum256(data)
	ref := string(kind) + "_" + hex.EncodeToString(sum[:8]) + kind.ext()
	path := filepath.Join(l.dir, ref)
	if _, err := os.Stat(path); err == nil {
		return ref, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", ref, err)
	}
	return ref, nil
}

// Open returns the stored bytes for a reference previously issued by
// Save. References containing path separators are rejected outright.
func (l *Library) Open(ref string) (io.ReadCloser, error) {
	if ref == "" || strings.ContainsAny(ref, `/\`) || strings.Contains(ref, "..") {
		return nil, fmt.Errorf("invalid media reference %q", ref)
	}
	f, err := os.Open(filepath.Join(l.dir, ref))
	if err != nil {
		return nil, fmt.Errorf("open media %s: %w", ref, err)
	}
	return f, nil
}
