package ble

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"
)

var Adapter = bluetooth.DefaultAdapter

const (
	DefaultScanWindow = 8 * time.Second
	DefaultChunkSize  = 180
	scanStopGrace     = 2 * time.Second
	chunkPause        = 10 * time.Millisecond
)

var (
	scanMu         sync.Mutex
	scanInProgress bool

	ErrScanBusy     = errors.New("bluetooth scan already in progress")
	ErrScanTimeout  = errors.New("bluetooth scan timed out while stopping")
	ErrNotConnected = errors.New("printer not connected")
)

type ScanHit struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	RSSI    int16  `json:"rssi"`
}

// Target locates the printer's write characteristic and how to feed it.
type Target struct {
	ServiceUUID        string
	CharacteristicUUID string
	ChunkSize          int
	WithResponse       bool
}

type Client struct {
	mu        sync.Mutex
	dev       bluetooth.Device
	address   string
	connected bool
}

func Enable() error { return Adapter.Enable() }

// Scan listens for advertisements during window, keeping names that contain
// nameContains (case-insensitive). Only one scan runs at a time.
func Scan(ctx context.Context, window time.Duration, nameContains string) ([]ScanHit, error) {
	if window <= 0 {
		window = DefaultScanWindow
	}

	scanMu.Lock()
	if scanInProgress {
		scanMu.Unlock()
		return nil, ErrScanBusy
	}
	scanInProgress = true
	scanMu.Unlock()
	defer func() {
		scanMu.Lock()
		scanInProgress = false
		scanMu.Unlock()
	}()

	var (
		hits   []ScanHit
		hitsMu sync.Mutex
		filter = strings.ToLower(nameContains)
	)

	scanDone := make(chan error, 1)
	go func() {
		scanDone <- Adapter.Scan(func(a *bluetooth.Adapter, r bluetooth.ScanResult) {
			name := r.LocalName()
			if filter != "" && !strings.Contains(strings.ToLower(name), filter) {
				return
			}
			hitsMu.Lock()
			hits = append(hits, ScanHit{Address: r.Address.String(), Name: name, RSSI: r.RSSI})
			hitsMu.Unlock()
		})
	}()

	timer := time.NewTimer(window)
	select {
	case <-timer.C:
	case <-ctx.Done():
		timer.Stop()
	}
	_ = Adapter.StopScan()

	var err error
	select {
	case err = <-scanDone:
	case <-time.After(scanStopGrace):
		return nil, fmt.Errorf("%w after %s scan window", ErrScanTimeout, window)
	}
	if err != nil {
		return nil, err
	}

	hitsMu.Lock()
	defer hitsMu.Unlock()
	out := make([]ScanHit, len(hits))
	copy(out, hits)
	return out, nil
}

func (c *Client) Connect(address string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cleanAddress, err := NormalizeAddress(address)
	if err != nil {
		return err
	}

	if c.connected {
		_ = c.dev.Disconnect()
		c.connected = false
	}
	a := bluetooth.Address{}
	a.Set(cleanAddress)
	dev, err := Adapter.Connect(a, bluetooth.ConnectionParams{})
	if err != nil {
		return err
	}
	if _, err := dev.DiscoverServices(nil); err != nil {
		_ = dev.Disconnect()
		return fmt.Errorf("connected but could not verify link: %w", err)
	}
	c.dev = dev
	c.address = cleanAddress
	c.connected = true
	return nil
}

// NormalizeAddress accepts colon or dash separated MACs in any case and
// returns the upper-case colon form.
func NormalizeAddress(address string) (string, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(address))
	cleaned = strings.ReplaceAll(cleaned, "-", ":")
	parts := strings.Split(cleaned, ":")
	if len(parts) != 6 {
		return "", fmt.Errorf("invalid device address format: %q", address)
	}
	for _, part := range parts {
		if len(part) != 2 {
			return "", fmt.Errorf("invalid device address format: %q", address)
		}
		if _, err := hex.DecodeString(part); err != nil {
			return "", fmt.Errorf("invalid device address format: %q", address)
		}
	}
	return cleaned, nil
}

// Address returns the MAC of the connected printer, or "".
func (c *Client) Address() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return ""
	}
	return c.address
}

// IsConnected probes the link and drops it when the printer went away.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return false
	}
	if _, err := c.dev.DiscoverServices(nil); err != nil {
		_ = c.dev.Disconnect()
		c.connected = false
	}
	return c.connected
}

func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	if err := c.dev.Disconnect(); err != nil {
		return err
	}
	c.connected = false
	return nil
}

// Write sends data to the target characteristic in chunks. The client lock
// is held for the whole document so two receipts never interleave.
func (c *Client) Write(ctx context.Context, t Target, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return ErrNotConnected
	}
	ch, err := c.characteristic(t)
	if err != nil {
		return err
	}

	for _, part := range chunks(data, t.ChunkSize) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("write interrupted: %w", err)
		}
		if t.WithResponse {
			_, err = ch.Write(part)
		} else {
			_, err = ch.WriteWithoutResponse(part)
		}
		if err != nil {
			return fmt.Errorf("write chunk: %w", err)
		}
		time.Sleep(chunkPause)
	}
	return nil
}

func (c *Client) characteristic(t Target) (bluetooth.DeviceCharacteristic, error) {
	var ch bluetooth.DeviceCharacteristic
	su, err := bluetooth.ParseUUID(t.ServiceUUID)
	if err != nil {
		return ch, fmt.Errorf("service uuid: %w", err)
	}
	cu, err := bluetooth.ParseUUID(t.CharacteristicUUID)
	if err != nil {
		return ch, fmt.Errorf("characteristic uuid: %w", err)
	}

	services, err := c.dev.DiscoverServices([]bluetooth.UUID{su})
	if err != nil {
		return ch, err
	}
	if len(services) == 0 {
		return ch, fmt.Errorf("service %s not found", t.ServiceUUID)
	}
	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{cu})
	if err != nil {
		return ch, err
	}
	if len(chars) == 0 {
		return ch, fmt.Errorf("characteristic %s not found", t.CharacteristicUUID)
	}
	return chars[0], nil
}

func chunks(data []byte, size int) [][]byte {
	if size <= 0 {
		size = DefaultChunkSize
	}
	out := make([][]byte, 0, (len(data)+size-1)/size)
	for i := 0; i < len(data); i += size {
		end := min(i+size, len(data))
		out = append(out, data[i:end])
	}
	return out
}
