package receipt

import (
	"fmt"

	"cafe-receipt-bridge/internal/printing"
)

func letterhead(doc *printing.Document, title string, lines ...string) {
	doc.Large().Bold().Text(title).Normal().BoldOff().NewLine()
	for i, line := range lines {
		if i > 0 {
			doc.NewLine()
		}
		doc.Text(line)
	}
}

func section(doc *printing.Document, title string) {
	doc.Rule('=', 0).NewLine()
	doc.Bold().Text(title).BoldOff().NewLine()
	doc.Rule('=', 0).NewLine()
}

func (s *Service) totalLine(doc *printing.Document, o Order) {
	doc.DoubleHeight().Bold()
	doc.Textf("TOTAL: %s", s.format.Currency(o.ItemsTotal()))
	doc.Normal().BoldOff()
}

func itemTitle(doc *printing.Document, i int, li LineItem) string {
	return doc.Fit(fmt.Sprintf("%d. %s", i+1, li.Name))
}

// pricedItems writes "i. name" then "q x price = total" per item.
func (s *Service) pricedItems(doc *printing.Document, items []LineItem, darkness bool) {
	for i, li := range items {
		title := itemTitle(doc, i, li)
		amounts := fmt.Sprintf("%d x %s = %s", li.Quantity, s.format.Currency(li.UnitPrice), s.format.Currency(li.LineTotal()))
		if darkness {
			doc.MediumDark(title).NewLine().MediumDark(amounts).NewLine()
		} else {
			doc.Text(title).NewLine().Text(amounts).NewLine()
		}
		doc.Rule('-', 0).NewLine()
	}
}
