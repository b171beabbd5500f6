package receipt

import "fmt"

// Kind names the printed document. It doubles as the log tag.
type Kind string

const (
	KindInvoice        Kind = "THERMAL INVOICE"
	KindTicket         Kind = "TICKET"
	KindReport         Kind = "REVENUE REPORT"
	KindThermalReport  Kind = "THERMAL REVENUE"
	KindTableTicket    Kind = "TABLE TICKET"
	KindSeparationTest Kind = "TABLE TEST"
)

type Reason string

const (
	ReasonNone           Reason = ""
	ReasonMissingTable   Reason = "missing_table"
	ReasonDispatchFailed Reason = "dispatch_failed"
)

// Result reports what a print call did. Builders never return errors;
// callers inspect the result and decide whether to alert the user.
type Result struct {
	Kind       Kind
	Reason     Reason
	Bytes      int
	Dispatches int
	// Deferred counts dispatches scheduled to run after the call returns.
	Deferred int
	Err      error
}

func (r Result) OK() bool { return r.Reason == ReasonNone }

func (r Result) String() string {
	if r.OK() {
		return fmt.Sprintf("%s: ok (%d bytes, %d sent, %d deferred)", r.Kind, r.Bytes, r.Dispatches, r.Deferred)
	}
	if r.Err == nil {
		return fmt.Sprintf("%s: %s", r.Kind, r.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", r.Kind, r.Reason, r.Err)
}

var documentNames = map[Kind]string{
	KindInvoice:        "de la facture",
	KindTicket:         "du ticket",
	KindReport:         "du rapport",
	KindThermalReport:  "du rapport de revenus",
	KindTableTicket:    "du ticket de table",
	KindSeparationTest: "du ticket de test",
}

// AlertMessage is the French message shown to the cashier on failure.
func (r Result) AlertMessage() string {
	if r.OK() {
		return ""
	}
	name, ok := documentNames[r.Kind]
	if !ok {
		name = "du document"
	}
	if r.Reason == ReasonMissingTable {
		return fmt.Sprintf("Erreur d'impression %s. Aucun numéro de table n'est associé à la commande.", name)
	}
	return fmt.Sprintf("Erreur d'impression %s. Vérifiez la connexion de l'imprimante.", name)
}

// Notifier shows a blocking message to the person at the till.
type Notifier interface {
	Alert(message string)
}

// Notify alerts once when r failed and reports whether it did.
func Notify(n Notifier, r Result) bool {
	if r.OK() || n == nil {
		return false
	}
	n.Alert(r.AlertMessage())
	return true
}
