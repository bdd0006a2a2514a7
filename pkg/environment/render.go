package environment

import (
	"strings"

	"github.com/logrusorgru/aurora"
)

// RenderBoxes draws n boxes joined by " - " with an X in the agent's box.
// The agent's box is green when au has colours enabled.
func RenderBoxes(au aurora.Aurora, n, state int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i == state {
			b.WriteString(au.Green("[X]").String())
		} else {
			b.WriteString("[ ]")
		}
		if i < n-1 {
			b.WriteString(" - ")
		}
	}
	return b.String()
}
