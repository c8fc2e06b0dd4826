package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// mp4Header is a minimal ftyp box so fixtures look like media, not text.
var mp4Header = []byte{
	0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p',
	'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00,
	'i', 's', 'o', 'm', 'm', 'p', '4', '1',
}

// WriteMediaFixture creates a dummy video file of at least the requested
// size: an MP4 ftyp header followed by filler bytes.
func WriteMediaFixture(t testing.TB, path string, size int64) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}

	var payload bytes.Buffer
	payload.Write(mp4Header)
	if pad := size - int64(payload.Len()); pad > 0 {
		payload.Write(bytes.Repeat([]byte{0xA7}, int(pad)))
	}
	if err := os.WriteFile(path, payload.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
}
