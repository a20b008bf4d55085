package pngfixture

import (
	"bytes"
	"errors"

	kerrors "github.com/k1LoW/errors"
)

// Match describes how closely a file matches the fixture.
type Match string

const (
	// MatchIdentical means byte-identical to the fixture.
	MatchIdentical Match = "identical"
	// MatchEquivalent means same header and raster, different compressed bytes.
	MatchEquivalent Match = "equivalent"
	// MatchSimilar means a different PNG layout that renders the same image.
	MatchSimilar Match = "similar"
)

// Verify compares b with the fixture. A corrupt stream (bad signature,
// truncated or failing checksums) is always an error. A well-formed PNG with
// a different header is accepted only if it looks the same; one with the
// fixture's header must also carry the fixture's raster.
func Verify(b []byte) (_ Match, err error) {
	defer func() {
		err = kerrors.WithStack(err)
	}()
	want, err := canonical()
	if err != nil {
		return "", err
	}
	if bytes.Equal(b, want) {
		return MatchIdentical, nil
	}
	r, err := Inspect(b)
	if err != nil {
		return "", err
	}
	for _, c := range r.Chunks {
		if !c.Valid() {
			return "", r.Validate()
		}
	}
	verr := r.Validate()
	if verr == nil {
		return MatchEquivalent, nil
	}
	// same layout with different pixels is never similar
	if !errors.Is(verr, ErrUnexpectedHeader) {
		return "", verr
	}
	ok, err := Equivalent(b, want)
	if err != nil {
		return "", err
	}
	if ok {
		return MatchSimilar, nil
	}
	return "", verr
}
