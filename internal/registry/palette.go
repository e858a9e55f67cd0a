package registry

import "sync"

// DefaultColors is the mission color cycle.
var DefaultColors = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7",
	"#DDA0DD", "#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E9",
	"#F8C471", "#82E0AA", "#F1948A", "#D7BDE2",
}

// Palette hands out colors round robin.
type Palette struct {
	mu     sync.Mutex
	colors []string
	next   int
}

// NewPalette creates a palette over colors, or DefaultColors when empty.
func NewPalette(colors ...string) *Palette {
	if len(colors) == 0 {
		colors = DefaultColors
	}
	return &Palette{colors: colors}
}

// Next returns the next color in the cycle.
func (p *Palette) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.colors[p.next]
	p.next = (p.next + 1) % len(p.colors)
	return c
}
