package volume

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// ReadRaw decodes n1*n2*n3 float32 samples in the given byte order.
func ReadRaw(r io.Reader, n1, n2, n3 int, order binary.ByteOrder) (*Volume, error) {
	v := New(n1, n2, n3)
	if err := binary.Read(bufio.NewReader(r), order, v.Data); err != nil {
		return nil, fmt.Errorf("read %dx%dx%d volume: %w", n1, n2, n3, err)
	}
	return v, nil
}

// WriteRaw encodes all samples in the given byte order.
func WriteRaw(w io.Writer, v *Volume, order binary.ByteOrder) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, order, v.Data); err != nil {
		return fmt.Errorf("write volume: %w", err)
	}
	return bw.Flush()
}

// ReadFile reads a raw float32 volume file and checks its size first.
func ReadFile(path string, n1, n2, n3 int, order binary.ByteOrder) (*Volume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open volume: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat volume: %w", err)
	}
	if want := int64(n1) * int64(n2) * int64(n3) * 4; info.Size() != want {
		return nil, fmt.Errorf("volume %s has %d bytes, want %d for %dx%dx%d", path, info.Size(), want, n1, n2, n3)
	}
	return ReadRaw(f, n1, n2, n3, order)
}
