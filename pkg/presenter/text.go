package presenter

import (
	"fmt"
	"io"
	"strings"
)

// WriteDetail prints the detail view of one entity.
func WriteDetail(w io.Writer, d Display) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", d.Name)
	fmt.Fprintf(&b, "  Sprite:          %s\n", d.SpriteURL)
	fmt.Fprintf(&b, "  Base experience: %d\n", d.BaseExperience)
	fmt.Fprintf(&b, "  Height:          %s\n", d.Height)
	fmt.Fprintf(&b, "  Order:           %d\n", d.Order)
	fmt.Fprintf(&b, "  Weight:          %s\n", d.Weight)
	b.WriteString("  Abilities:\n")
	for _, a := range d.Abilities {
		fmt.Fprintf(&b, "    %s\n", a)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteCard prints the one-line list view of one entity.
func WriteCard(w io.Writer, d Display) error {
	_, err := fmt.Fprintf(w, "%-16s exp %-4d %7s %9s  %s\n",
		d.Name, d.BaseExperience, d.Height, d.Weight, d.AbilityList())
	return err
}
