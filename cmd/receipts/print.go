package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"cafe-receipt-bridge/internal/ble"
	"cafe-receipt-bridge/internal/config"
	"cafe-receipt-bridge/internal/dispatch"
	"cafe-receipt-bridge/internal/logging"
	"cafe-receipt-bridge/internal/printing"
	"cafe-receipt-bridge/internal/receipt"

	"github.com/spf13/cobra"
)

// deferredGrace is how long past the split delay the CLI waits for the
// second ticket before giving up.
const deferredGrace = 30 * time.Second

type printFlags struct {
	input   string
	out     string
	preview bool
}

func newPrintCmd(opts *options) *cobra.Command {
	flags := &printFlags{}
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print one document from a JSON file",
	}
	cmd.PersistentFlags().StringVarP(&flags.input, "input", "i", "", "order or report JSON file")
	cmd.PersistentFlags().StringVarP(&flags.out, "out", "o", "", "append ESC/POS bytes to this file instead of printing")
	cmd.PersistentFlags().BoolVar(&flags.preview, "preview", false, "show a text rendering instead of printing")

	orders := []struct {
		use   string
		short string
		build func(*receipt.Service, context.Context, receipt.Order) receipt.Result
	}{
		{"invoice", "Thermal invoice with barcode", (*receipt.Service).PrintInvoice},
		{"ticket", "Customer ticket", (*receipt.Service).PrintTicket},
		{"table", "Combined table ticket", (*receipt.Service).PrintTableTicket},
		{"table-split", "Customer ticket now, agent copy after the split delay", (*receipt.Service).PrintTableTickets},
		{"table-customer", "Customer half of a table ticket", (*receipt.Service).PrintTableCustomerTicket},
		{"table-agent", "Agent half of a table ticket", (*receipt.Service).PrintTableAgentTicket},
	}
	for _, o := range orders {
		build := o.build
		cmd.AddCommand(&cobra.Command{
			Use:   o.use,
			Short: o.short,
			RunE: func(cmd *cobra.Command, _ []string) error {
				var order receipt.Order
				if err := readInput(flags.input, &order); err != nil {
					return err
				}
				return runPrint(cmd, opts, flags, func(svc *receipt.Service, _ *config.Config) (receipt.Result, error) {
					return build(svc, cmd.Context(), order), nil
				})
			},
		})
	}

	reports := []struct {
		use   string
		short string
		build func(*receipt.Service, context.Context, receipt.ReportQuery) receipt.Result
	}{
		{"report", "Detailed revenue report", (*receipt.Service).PrintReport},
		{"thermal-report", "Short revenue report", (*receipt.Service).PrintThermalReport},
	}
	for _, rp := range reports {
		build := rp.build
		cmd.AddCommand(&cobra.Command{
			Use:   rp.use,
			Short: rp.short,
			RunE: func(cmd *cobra.Command, _ []string) error {
				var req receipt.ReportRequest
				if err := readInput(flags.input, &req); err != nil {
					return err
				}
				return runPrint(cmd, opts, flags, func(svc *receipt.Service, cfg *config.Config) (receipt.Result, error) {
					q, err := req.Query(cfg.Location())
					if err != nil {
						return receipt.Result{}, fmt.Errorf("report dates: %w", err)
					}
					return build(svc, cmd.Context(), q), nil
				})
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "test-separation",
		Short: "Print a short customer/agent pair to check the paper cut",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrint(cmd, opts, flags, func(svc *receipt.Service, _ *config.Config) (receipt.Result, error) {
				return svc.PrintSeparationTest(cmd.Context()), nil
			})
		},
	})
	return cmd
}

func readInput(path string, v any) error {
	if path == "" {
		return fmt.Errorf("--input is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// alertWriter is the terminal stand-in for the till's blocking alert box.
type alertWriter struct {
	w io.Writer
}

func (a alertWriter) Alert(message string) {
	fmt.Fprintf(a.w, "\n*** %s ***\n\n", message)
}

func runPrint(cmd *cobra.Command, opts *options, flags *printFlags, do func(*receipt.Service, *config.Config) (receipt.Result, error)) error {
	cfg, err := loadConfig(opts.cfgPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging.FilePath, cfg.Logging.ConsoleVerbose)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer logger.Close()

	var previewBuf bytes.Buffer
	sink, err := openSink(cfg, flags, &previewBuf)
	var d receipt.Dispatcher
	if err != nil {
		// printed as an alert below once the builder reports the failure
		logger.Failure(err, "no printer sink")
	} else {
		d = sink
		defer sink.Close()
	}

	deferred := make(chan receipt.Result, 1)
	svc, err := receipt.FromConfig(cfg, d, logger, func(r receipt.Result) { deferred <- r })
	if err != nil {
		return err
	}

	alerts := alertWriter{w: cmd.ErrOrStderr()}
	res, err := do(svc, cfg)
	if err != nil {
		return err
	}
	failed := receipt.Notify(alerts, res)

	if !failed && res.Deferred > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "agent ticket follows in %s\n", cfg.SplitDelay())
		select {
		case later := <-deferred:
			failed = receipt.Notify(alerts, later)
			res = later
		case <-time.After(cfg.SplitDelay() + deferredGrace):
			return fmt.Errorf("second ticket was never sent")
		}
	}

	if flags.preview {
		page, err := printing.LookupCodePage(cfg.Receipt.CodePage)
		if err != nil {
			page = printing.DefaultCodePage()
		}
		fmt.Fprint(cmd.OutOrStdout(), printing.Preview(previewBuf.Bytes(), page))
	} else if !failed {
		fmt.Fprintln(cmd.OutOrStdout(), res)
	}

	if failed {
		return fmt.Errorf("%s", res)
	}
	return nil
}

// openSink honors --preview and --out before the configured dispatch mode.
func openSink(cfg *config.Config, flags *printFlags, previewBuf io.Writer) (dispatch.Sink, error) {
	switch {
	case flags.preview:
		return dispatch.NewWriter(previewBuf), nil
	case flags.out != "":
		w, err := dispatch.OpenFile(flags.out)
		if err != nil {
			return nil, err
		}
		return w, nil
	case cfg.Dispatch.Mode == config.DispatchBLE || cfg.Dispatch.Mode == "":
		return connectPrinter(cfg)
	default:
		return dispatch.New(cfg, nil)
	}
}

// bleSession drops the link once the command is done.
type bleSession struct {
	*dispatch.BLE
	client *ble.Client
}

func (b bleSession) Close() error { return b.client.Disconnect() }

func connectPrinter(cfg *config.Config) (dispatch.Sink, error) {
	if err := ble.Enable(); err != nil {
		return nil, fmt.Errorf("enable bluetooth: %w", err)
	}
	client := &ble.Client{}
	if err := client.Connect(cfg.BLE.PrinterAddress); err != nil {
		return nil, fmt.Errorf("connect printer %s: %w", cfg.BLE.PrinterAddress, err)
	}
	return bleSession{BLE: dispatch.NewBLE(client, dispatch.TargetFromConfig(cfg)), client: client}, nil
}
