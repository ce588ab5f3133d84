package main

import "strings"

// decodeText turns raw file bytes into text. Byte sequences that are not
// valid UTF-8 are dropped rather than replaced, and CRLF / lone CR line
// endings are translated to LF.
func decodeText(b []byte) string {
	s := strings.ToValidUTF8(string(b), "")
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
