package mp4io

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// FprintTree writes one line per box, indenting two spaces per level.
func FprintTree(out io.Writer, forest Forest, depth int) {
	for _, b := range forest {
		fmt.Fprintf(out, "%s%s\n", strings.Repeat(" ", depth*2), b.Tag())
		FprintTree(out, b.Children(), depth+1)
	}
}

func PrintTree(forest Forest) {
	FprintTree(os.Stdout, forest, 0)
}
