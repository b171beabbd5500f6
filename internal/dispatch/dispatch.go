// Package dispatch holds the places a finished ESC/POS document can go:
// the BLE printer itself, a remote bridge over HTTP, or a spool file.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"cafe-receipt-bridge/internal/ble"
	"cafe-receipt-bridge/internal/config"
)

// Sink accepts whole documents. Dispatch must be safe for concurrent use.
type Sink interface {
	Dispatch(ctx context.Context, data []byte) error
	Close() error
}

// New builds the sink selected by cfg.Dispatch.Mode. client is only used in
// BLE mode and may be nil otherwise.
func New(cfg *config.Config, client *ble.Client) (Sink, error) {
	switch cfg.Dispatch.Mode {
	case config.DispatchBLE, "":
		if client == nil {
			return nil, fmt.Errorf("ble dispatch needs a client")
		}
		return NewBLE(client, TargetFromConfig(cfg)), nil
	case config.DispatchBridge:
		if cfg.Dispatch.BridgeURL == "" {
			return nil, fmt.Errorf("bridge dispatch needs dispatch.bridge_url")
		}
		return NewBridge(cfg.Dispatch.BridgeURL, cfg.Dispatch.BridgeApiKey, nil), nil
	case config.DispatchFile:
		w, err := OpenFile(cfg.Dispatch.FilePath)
		if err != nil {
			return nil, err
		}
		return w, nil
	default:
		return nil, fmt.Errorf("unknown dispatch mode %q", cfg.Dispatch.Mode)
	}
}

// TargetFromConfig reads the printer characteristic settings.
func TargetFromConfig(cfg *config.Config) ble.Target {
	return ble.Target{
		ServiceUUID:        cfg.BLE.ServiceUUID,
		CharacteristicUUID: cfg.BLE.WriteCharacteristicUUID,
		ChunkSize:          cfg.BLE.ChunkSize,
		WithResponse:       cfg.BLE.WriteWithResponse,
	}
}

type BLE struct {
	client *ble.Client
	target ble.Target
}

func NewBLE(client *ble.Client, target ble.Target) *BLE {
	return &BLE{client: client, target: target}
}

func (b *BLE) Dispatch(ctx context.Context, data []byte) error {
	return b.client.Write(ctx, b.target, data)
}

// Close leaves the link up; the HTTP API owns connect/disconnect.
func (b *BLE) Close() error { return nil }

// Writer appends every document to w, one at a time.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

func (w *Writer) Dispatch(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if c, ok := w.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// OpenFile spools documents to path, creating parent directories.
func OpenFile(path string) (*Writer, error) {
	if path == "" {
		return nil, fmt.Errorf("file dispatch needs a path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open spool file: %w", err)
	}
	return NewWriter(f), nil
}

var (
	_ Sink = (*BLE)(nil)
	_ Sink = (*Writer)(nil)
	_ Sink = (*Bridge)(nil)
)
