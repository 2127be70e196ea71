package fsys

// FileID uniquely identifies a file on one host.
type FileID struct {
	Dev uint64
	Ino uint64
}
