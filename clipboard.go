package main

import "github.com/atotto/clipboard"

// copyToClipboard is swapped out in tests; the real clipboard needs a
// display server.
var copyToClipboard = clipboard.WriteAll
