// Package presenter formats resolved entities for display. Present is pure:
// no I/O and no hidden state.
package presenter

import (
	"fmt"
	"strings"

	"github.com/Sternrassler/pokedex-client/pkg/pokedex"
)

// Display is the formatted view of one entity.
type Display struct {
	Name           string   `json:"name"`
	SpriteURL      string   `json:"sprite_url"`
	BaseExperience int      `json:"base_experience"`
	Height         string   `json:"height"`
	Weight         string   `json:"weight"`
	Order          int      `json:"order"`
	Abilities      []string `json:"abilities"`
}

// Present converts a summary into its display form. Height and weight go
// from tenths to metres and kilograms with one decimal place.
func Present(s pokedex.EntitySummary) Display {
	return Display{
		Name:           s.Name,
		SpriteURL:      s.SpriteURL,
		BaseExperience: s.BaseExperience,
		Height:         FormatTenths(s.Height, "m"),
		Weight:         FormatTenths(s.Weight, "kg"),
		Order:          s.Order,
		Abilities:      append([]string(nil), s.Abilities...),
	}
}

// AbilityList joins the abilities in upstream order.
func (d Display) AbilityList() string {
	return strings.Join(d.Abilities, ", ")
}

// FormatTenths renders an integer count of tenths as a one-decimal value
// followed by unit: 7 -> "0.7 m", 690 -> "69.0 kg".
func FormatTenths(tenths int, unit string) string {
	sign := ""
	if tenths < 0 {
		sign = "-"
		tenths = -tenths
	}
	return fmt.Sprintf("%s%d.%d %s", sign, tenths/10, tenths%10, unit)
}
