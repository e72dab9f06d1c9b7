//go:build !ckzg || nacl || js || !cgo || gofuzz

package engine

const (
	CKZGName      = "ckzg"
	ckzgAvailable = false
)

// NewCKZG reports ErrCKZGUnavailable: the c-kzg-4844 engine needs cgo and
// the ckzg build tag.
func NewCKZG() (Backend, error) {
	return nil, ErrCKZGUnavailable
}
