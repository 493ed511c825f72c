package pipeline

import "errors"

var (
	// ErrWrongExtension marks an input whose extension is not accepted.
	ErrWrongExtension = errors.New("extension not accepted")
	// ErrNotRegular marks an input that is neither a regular file nor a
	// directory.
	ErrNotRegular = errors.New("not a regular file or directory")
	// ErrNoCandidates marks a directory without any matching file.
	ErrNoCandidates = errors.New("no matching files")
	// ErrEncoder marks an external encoder process that exited with an error.
	ErrEncoder = errors.New("encoder process failed")
)
