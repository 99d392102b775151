package discovery

// Options contains discovery configuration
type Options struct {
	// Suffix marks outputs of previous runs; files whose stem already
	// ends with it are excluded from the work list
	Suffix string

	// Recursive walks subdirectories at unbounded depth instead of
	// enumerating depth 1 only
	Recursive bool

	// PruneDirs are directory subtrees excluded from the walk, such as
	// an output directory that lives inside the input root
	PruneDirs []string
}

// Warning records a non-fatal problem encountered during discovery
type Warning struct {
	Path string
	Err  error
}

// Scan contains the complete discovery result
type Scan struct {
	// Root is the directory the work list was built from
	Root string

	// Items are the candidate input files, sorted lexicographically
	// by full path
	Items []string

	// AlreadyCleaned are files excluded by the suffix filter. They are
	// counted as skips before any dispatch happens.
	AlreadyCleaned []string

	// Warnings are per-path problems that did not abort discovery
	Warnings []Warning
}

// Total returns the number of files discovery classified.
func (s Scan) Total() int {
	return len(s.Items) + len(s.AlreadyCleaned)
}
