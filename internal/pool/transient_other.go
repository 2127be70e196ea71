//go:build !unix

package pool

// IsTransient always reports false where descriptor exhaustion is not
// reported through errno.
func IsTransient(_ error) bool {
	return false
}
