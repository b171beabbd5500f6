package receipt

import (
	"context"

	"cafe-receipt-bridge/internal/printing"
)

// PrintInvoice prints the FACTURE for a settled order. It dispatches
// exactly once.
func (s *Service) PrintInvoice(ctx context.Context, o Order) Result {
	log := s.log.Tagged(string(KindInvoice))
	log.Info("starting print for order: %s", o.ID)
	s.checkTotal(log, o)
	return s.dispatch(ctx, KindInvoice, func() *printing.Document { return s.invoiceDocument(o) })
}

func (s *Service) invoiceDocument(o Order) *printing.Document {
	f := s.format
	doc := f.NewDocument().AlignCenter()

	lines := append([]string{}, s.shop.Address...)
	if s.shop.Phone != "" {
		lines = append(lines, "Tel: "+s.shop.Phone)
	}
	letterhead(doc, s.shop.Name, lines...)
	doc.Lines(2)

	doc.DoubleHeight().Bold().Text("FACTURE").Normal().BoldOff().NewLine()
	doc.Textf("N° %s", o.ShortID()).Lines(2)

	doc.Textf("Date: %s", f.ShortDate(o.Date)).NewLine()
	doc.Textf("Agent: %s", o.AgentName).Lines(2)

	section(doc, "ARTICLES")
	for i, li := range o.Items {
		doc.Text(itemTitle(doc, i, li)).NewLine()
		doc.Textf("%d x %s", li.Quantity, f.Currency(li.UnitPrice)).NewLine()
		doc.Textf("= %s", f.Currency(li.LineTotal())).NewLine()
		doc.Rule('-', 0).NewLine()
	}

	s.totalLine(doc, o)
	doc.Lines(2)

	doc.Barcode(o.ID).Lines(2)

	doc.Text(s.courtesyMessage()).Lines(2)
	doc.Textf("À bientôt chez %s !", s.shop.Name).Lines(4)

	return doc.Cut()
}
