package main

// FileRecord is one entry of the summary: a visited file, its position in
// visitation order, and the text that was read from it.
type FileRecord struct {
	Index        int    // 1-based, assigned in visitation order
	RelativePath string // forward-slash separated; full path if Rel failed
	Content      string // decoded text, or a bracketed error placeholder
}

// Summary holds what a single run produced.
type Summary struct {
	Records    []FileRecord
	Text       string // the joined records, exactly as written to OutputPath
	OutputPath string
	Written    bool   // false when no files were found or the write failed
	Tokens     int    // populated only when token counting is enabled
}
