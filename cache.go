package pngfixture

import (
	"sync"
)

// canonical holds the fixture bytes produced by this build, computed once.
// Verify compares every input against it, possibly from many goroutines.
var canonical = sync.OnceValues(func() ([]byte, error) {
	f, err := New()
	if err != nil {
		return nil, err
	}
	return f.Bytes()
})

// Canonical returns a copy of the fixture bytes produced by this build.
func Canonical() ([]byte, error) {
	b, err := canonical()
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}
