package receipt

import (
	"context"
	"strconv"
	"strings"
	"time"

	"cafe-receipt-bridge/internal/printing"
)

const unknownPeriod = "Période inconnue"

// PeriodLabel renders the period line of a revenue report. Unknown kinds
// fall back to a fixed label.
func (s *Service) PeriodLabel(kind PeriodKind, start, end time.Time) string {
	f := s.format
	switch kind {
	case PeriodDay:
		return "Jour: " + f.ShortDate(start)
	case PeriodMonth:
		return "Mois: " + f.MonthYear(start)
	case PeriodYear:
		return "Année: " + f.Year(start)
	case PeriodCustom:
		return "Période: " + f.ShortDate(start) + " - " + f.ShortDate(end)
	default:
		return unknownPeriod
	}
}

// PrintReport prints the detailed revenue report.
func (s *Service) PrintReport(ctx context.Context, q ReportQuery) Result {
	log := s.log.Tagged(string(KindReport))
	log.Info("starting print for period: %s from %s to %s", q.Period, q.Start.Format(time.DateOnly), q.End.Format(time.DateOnly))
	return s.dispatch(ctx, KindReport, func() *printing.Document { return s.reportDocument(q) })
}

func (s *Service) reportDocument(q ReportQuery) *printing.Document {
	f := s.format
	doc := f.NewDocument().AlignCenter()

	letterhead(doc, s.shop.Name, strings.Join(s.shop.Address, ", "))
	doc.Lines(2)

	doc.DoubleHeight().Bold()
	doc.Text("RAPPORT DETAILLE").NewLine().Text("DES REVENUS")
	doc.Normal().BoldOff().Lines(2)

	generated := s.now()
	doc.Textf("Généré le: %s", f.ShortDate(generated)).NewLine()
	doc.Textf("à %s", f.Time(generated)).Lines(2)

	section(doc, "RÉSUMÉ GÉNÉRAL")
	doc.Text(s.PeriodLabel(q.Period, q.Start, q.End)).NewLine()
	doc.Row("Commandes:", strconv.Itoa(q.OrderCount)).NewLine()
	doc.Text("Total des revenus:").NewLine()
	doc.DoubleHeight().Bold().Text(f.Currency(q.TotalRevenue)).Normal().BoldOff()
	doc.Lines(3)

	doc.Text("Rapport généré automatiquement").NewLine()
	doc.Text("par le système de gestion").Lines(4)

	return doc.Cut()
}

// PrintThermalReport prints the short revenue slip.
func (s *Service) PrintThermalReport(ctx context.Context, q ReportQuery) Result {
	log := s.log.Tagged(string(KindThermalReport))
	log.Info("starting print for period: %s from %s to %s", q.Period, q.Start.Format(time.DateOnly), q.End.Format(time.DateOnly))
	return s.dispatch(ctx, KindThermalReport, func() *printing.Document { return s.thermalReportDocument(q) })
}

func (s *Service) thermalReportDocument(q ReportQuery) *printing.Document {
	f := s.format
	doc := f.NewDocument().AlignCenter()

	letterhead(doc, strings.ToUpper(s.shop.Name), "RAPPORT REVENUS")
	doc.Lines(2)

	doc.Text(s.PeriodLabel(q.Period, q.Start, q.End)).NewLine()
	doc.Textf("Commandes: %d", q.OrderCount).NewLine()
	doc.DoubleHeight().Bold()
	doc.Textf("TOTAL: %s", f.Currency(q.TotalRevenue))
	doc.Normal().BoldOff().Lines(4)

	return doc.Cut()
}
