package u

import (
	"fmt"
)

func fmtArgs(args ...interface{}) string {
	if len(args) == 0 {
		return ""
	}
	s := fmt.Sprintf("%s", args[0])
	if len(args) > 1 {
		s = fmt.Sprintf(s, args[1:]...)
	}
	return s
}

// PanicIf panics with a formatted message if cond is true
func PanicIf(cond bool, args ...interface{}) {
	if !cond {
		return
	}
	s := fmtArgs(args...)
	if s == "" {
		s = "condition failed"
	}
	panic(s)
}
