package receipt

import (
	"fmt"
	"math/rand"
)

var courtesyTemplates = [...]string{
	"Merci pour votre visite! Nous esperons vous revoir tres bientot chez %s.",
	"Votre sourire est notre plus belle recompense. A tres vite chez %s!",
	"%s vous remercie de votre confiance. Au plaisir de vous servir a nouveau!",
	"Un cafe chez %s, c'est un moment de bonheur a partager. Revenez vite!",
	"Merci d'avoir choisi %s. Nous vous attendons pour votre prochaine pause cafe!",
}

// Picker returns an index in [0, n).
type Picker func(n int) int

// CourtesyMessages lists the closing lines for shop, in a fixed order.
func CourtesyMessages(shop string) []string {
	out := make([]string, len(courtesyTemplates))
	for i, tpl := range courtesyTemplates {
		out[i] = fmt.Sprintf(tpl, shop)
	}
	return out
}

func defaultPicker(n int) int { return rand.Intn(n) }

func (s *Service) courtesyMessage() string {
	i := s.pick(len(s.courtesy))
	if i < 0 || i >= len(s.courtesy) {
		i = 0
	}
	return s.courtesy[i]
}
