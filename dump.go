package recipebrowser

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/davecgh/go-spew/spew"
)

// Dump pretty-prints v to stdout prefixed with the caller's location.
func Dump(v ...any) {
	fdump(os.Stdout, 2, v...)
}

// Fdump is Dump with an explicit writer.
func Fdump(w io.Writer, v ...any) {
	fdump(w, 2, v...)
}

func fdump(w io.Writer, skip int, v ...any) {
	_, file, line, _ := runtime.Caller(skip)
	args := append([]any{fmt.Sprintf("%s:%d:", file, line)}, v...)
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
	cfg.Fdump(w, args...)
}
