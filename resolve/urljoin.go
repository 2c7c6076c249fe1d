package resolve

import (
	"strings"

	"github.com/ytplan-cli/ytplan/util"
)

// JoinURL resolves a possibly relative fragment reference against a base
// URL by path-segment normalization. A reference that already carries a
// scheme is returned unchanged. Percent-encoding is left untouched.
func JoinURL(base, ref string) string {
	if HasScheme(ref) {
		return ref
	}

	// Split the base into scheme+host and path.
	head := base
	var basePath string
	if i := strings.Index(base, "://"); i >= 0 {
		if j := strings.Index(base[i+3:], "/"); j >= 0 {
			head = base[:i+3+j]
			basePath = base[i+3+j:]
		}
	}

	// Process segments left to right: ".." pops, "." and empty segments
	// are dropped, anything else is pushed.
	var stack util.Stack[string]
	segments := append(strings.Split(basePath, "/"), strings.Split(ref, "/")...)
	for _, segment := range segments {
		switch segment {
		case "", ".":
		case "..":
			stack.Pop()
		default:
			stack.Push(segment)
		}
	}

	return head + "/" + strings.Join(stack.Items(), "/")
}
