package sfs

import "testing"

// newTestFS builds a freshly formatted in-memory filesystem with a small
// layout, so tests can exhaust its BAT/root capacity quickly.
func newTestFS(t *testing.T, rootN, batN int) *FS {
	t.Helper()
	layout := NewLayout(rootN, batN)
	dev := NewMemDevice(layout.Size())
	if err := Init(dev, layout); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return New(dev, layout)
}
