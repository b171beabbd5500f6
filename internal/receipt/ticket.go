package receipt

import (
	"context"
	"strings"

	"cafe-receipt-bridge/internal/printing"
)

// PrintTicket prints the counter ticket handed to the customer. The table
// line only appears when the order carries one.
func (s *Service) PrintTicket(ctx context.Context, o Order) Result {
	log := s.log.Tagged(string(KindTicket))
	log.Info("starting print for order: %s", o.ID)
	s.checkTotal(log, o)
	return s.dispatch(ctx, KindTicket, func() *printing.Document { return s.ticketDocument(o) })
}

func (s *Service) ticketDocument(o Order) *printing.Document {
	f := s.format
	doc := f.NewDocument().AlignCenter()

	letterhead(doc, strings.ToUpper(s.shop.Name), strings.Join(s.shop.Address, ", "))
	doc.NewLine()

	if o.TableNumber != nil {
		doc.Textf("TABLE %d", *o.TableNumber).Lines(1)
	}

	doc.Textf("Date: %s", f.Date(o.Date)).NewLine()
	doc.Textf("Serveur: %s", o.AgentName).Lines(1)

	section(doc, "TICKET CLIENT")
	s.pricedItems(doc, o.Items, false)

	s.totalLine(doc, o)
	doc.Lines(2)

	doc.Barcode(o.ID).NewLine()

	doc.Text("Merci de votre visite !").NewLine()
	doc.Text(s.courtesyMessage()).Lines(4)

	return doc.Cut()
}
