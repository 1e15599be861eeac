package media

import (
	"io"
	"strings"
	"testing"
)

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	l, err := NewLibrary(t.TempDir())
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	return l
}

func TestSaveAndOpen(t *testing.T) {
	l := newTestLibrary(t)

	ref, err := l.Save(KindPhoto, []byte("fake png bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(ref, "photo_") || !strings.HasSuffix(ref, ".png") {
		t.Errorf("unexpected photo ref %q", ref)
	}

	rc, err := l.Open(ref)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "fake png bytes" {
		t.Errorf("stored bytes changed: %q", data)
	}
}

func TestSaveIsContentAddressed(t *testing.T) {
	l := newTestLibrary(t)
	ref1, err := l.Save(KindAudio, []byte("same bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	ref2, err := l.Save(KindAudio, []byte("same bytes"))
	if err != nil {
		t.Fatalf("Save again: %v", err)
	}
	if ref1 != ref2 {
		t.Errorf("identical bytes got different refs: %q vs %q", ref1, ref2)
	}
	if !strings.HasSuffix(ref1, ".webm") {
		t.Errorf("audio ref %q should end in .webm", ref1)
	}
}

func TestSaveRejectsEmpty(t *testing.T) {
	l := newTestLibrary(t)
	if _, err := l.Save(KindPhoto, nil); err == nil {
		t.Error("empty capture should fail")
	}
}

func TestOpenRejectsTraversal(t *testing.T) {
	l := newTestLibrary(t)
	for _, ref := range []string{"", "../secret", "a/b.png", `a\b.png`, ".."} {
		if _, err := l.Open(ref); err == nil {
			t.Errorf("Open(%q) should fail", ref)
		}
	}
}
