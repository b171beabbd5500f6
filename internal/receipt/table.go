package receipt

import (
	"context"
	"fmt"

	"cafe-receipt-bridge/internal/printing"
)

// PrintTableTicket prints one combined ticket for a table order.
func (s *Service) PrintTableTicket(ctx context.Context, o Order) Result {
	log := s.log.Tagged(string(KindTableTicket))
	if res, missing := missingTable(log, KindTableTicket, o); missing {
		return res
	}
	log.Info("starting print for order: %s table: %d", o.ID, *o.TableNumber)
	s.checkTotal(log, o)
	return s.dispatch(ctx, KindTableTicket, func() *printing.Document { return s.tableDocument(o) })
}

// PrintTableTickets prints the customer ticket now and the agent copy
// after the split delay, so each lands on its own cut sheet.
func (s *Service) PrintTableTickets(ctx context.Context, o Order) Result {
	log := s.log.Tagged(string(KindTableTicket))
	if res, missing := missingTable(log, KindTableTicket, o); missing {
		return res
	}
	log.Info("starting split print for order: %s table: %d", o.ID, *o.TableNumber)
	s.checkTotal(log, o)

	customer := func() *printing.Document { return s.tableCustomerDocument(o, 7) }
	agent := func() *printing.Document { return s.tableAgentDocument(o, "FEUILLE SEPAREE - AGENT", 3, 7) }
	return s.dispatchPair(ctx, KindTableTicket, customer, agent)
}

// PrintTableCustomerTicket prints only the customer half of a table order.
func (s *Service) PrintTableCustomerTicket(ctx context.Context, o Order) Result {
	log := s.log.Tagged(string(KindTableTicket))
	if res, missing := missingTable(log, KindTableTicket, o); missing {
		return res
	}
	s.checkTotal(log, o)
	return s.dispatch(ctx, KindTableTicket, func() *printing.Document { return s.tableCustomerDocument(o, 6) })
}

// PrintTableAgentTicket prints only the agent copy of a table order.
func (s *Service) PrintTableAgentTicket(ctx context.Context, o Order) Result {
	log := s.log.Tagged(string(KindTableTicket))
	if res, missing := missingTable(log, KindTableTicket, o); missing {
		return res
	}
	return s.dispatch(ctx, KindTableTicket, func() *printing.Document {
		return s.tableAgentDocument(o, "NOUVELLE FEUILLE - AGENT", 2, 6)
	})
}

// PrintSeparationTest runs a two-sheet print with dummy content to check
// the cutter and the split delay.
func (s *Service) PrintSeparationTest(ctx context.Context) Result {
	s.log.Tagged(string(KindSeparationTest)).Info("starting separation test")

	customer := func() *printing.Document {
		doc := s.format.NewDocument().AlignCenter()
		doc.Dark("TABLE TEST - CLIENT").Lines(3)
		doc.MediumDark("Ceci est le ticket client").Lines(7)
		return doc.Cut()
	}
	agent := func() *printing.Document {
		doc := s.format.NewDocument().AlignCenter().Lines(3)
		banner(doc, "TABLE TEST - AGENT")
		doc.MediumDark("Ceci est le ticket agent").Lines(7)
		return doc.Cut()
	}
	return s.dispatchPair(ctx, KindSeparationTest, customer, agent)
}

func (s *Service) tableDocument(o Order) *printing.Document {
	f := s.format
	doc := f.NewDocument().AlignCenter()

	letterhead(doc, s.shop.TicketName, s.shop.Branch)
	doc.Lines(2)

	doc.DoubleHeight().Bold().Textf("TABLE %d", *o.TableNumber).Normal().BoldOff().NewLine()

	doc.Textf("Date: %s", f.Date(o.Date)).NewLine()
	doc.Textf("Serveur: %s", o.AgentName).Lines(2)

	section(doc, "TICKET CLIENT")
	s.pricedItems(doc, o.Items, false)

	s.totalLine(doc, o)
	doc.Lines(2)

	doc.Barcode(o.ID).Lines(2)

	doc.Text("Merci de votre visite !").Lines(4)
	return doc.Cut()
}

func (s *Service) tableCustomerDocument(o Order, feed int) *printing.Document {
	f := s.format
	doc := f.NewDocument().AlignCenter()

	doc.Large().Dark(s.shop.TicketName).NewLine()
	doc.Normal().MediumDark(s.shop.Branch).Lines(2)

	doc.DoubleHeight().Dark(fmt.Sprintf("TABLE %d", *o.TableNumber)).Normal().NewLine()

	doc.MediumDark("Date: " + f.Date(o.Date)).NewLine()
	doc.MediumDark("Serveur: " + o.AgentName).Lines(2)

	doc.Rule('=', 0).NewLine()
	doc.Dark("TICKET CLIENT").NewLine()
	doc.Rule('=', 0).NewLine()

	s.pricedItems(doc, o.Items, true)

	doc.DoubleHeight().Dark("TOTAL: " + f.Currency(o.ItemsTotal())).Normal().Lines(2)

	doc.Barcode(o.ID).Lines(2)

	doc.MediumDark("Merci de votre visite !").Lines(feed)
	return doc.Cut()
}

// tableAgentDocument is the kitchen copy: names and quantities only.
func (s *Service) tableAgentDocument(o Order, title string, lead, feed int) *printing.Document {
	f := s.format
	doc := f.NewDocument().AlignCenter().Lines(lead)

	banner(doc, title)

	doc.Dark(s.shop.TicketName).NewLine()
	doc.Dark("COPIE AGENT").Lines(2)

	doc.DoubleHeight().Dark(fmt.Sprintf("TABLE %d", *o.TableNumber)).Normal().NewLine()

	doc.MediumDark("Date: " + f.Date(o.Date)).NewLine()
	doc.MediumDark("Agent: " + o.AgentName).NewLine()
	doc.MediumDark("Commande #: " + o.ID).Lines(2)

	doc.Dark("ARTICLES:").NewLine()
	doc.Rule('-', 0).NewLine()
	for i, li := range o.Items {
		line := doc.FitKeep(fmt.Sprintf("%d. %s", i+1, li.Name), fmt.Sprintf(" - Qte: %d", li.Quantity))
		doc.MediumDark(line).NewLine()
	}
	doc.Lines(1)
	doc.Rule('-', 0).Lines(2)

	doc.Barcode(o.ID).Lines(feed)
	return doc.Cut()
}

func banner(doc *printing.Document, title string) {
	doc.Rule('*', 0).NewLine()
	doc.Dark(title).NewLine()
	doc.Rule('*', 0).Lines(2)
}
