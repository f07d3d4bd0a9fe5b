package components

import (
	"fmt"
	"strings"

	"github.com/abhisek/lingo/internal/progress"
	"github.com/abhisek/lingo/internal/ui/theme"
)

// Hearts renders the heart meter, filled hearts first.
func Hearts(n int) string {
	n = progress.ClampHearts(n)
	return theme.Heart.Render(strings.Repeat("♥", n)) +
		theme.HeartEmpty.Render(strings.Repeat("♥", progress.MaxHearts-n))
}

// Status renders hearts and points on one line.
func Status(hearts, points int) string {
	return Hearts(hearts) + "  " + theme.Points.Render(fmt.Sprintf("%d XP", points))
}
