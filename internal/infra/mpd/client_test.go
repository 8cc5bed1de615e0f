package mpd_test

import (
	"testing"

	"github.com/convergence-jukebox/backend/internal/infra/mpd"
)

// Port 16600 is intentionally wrong so dials fail without a live MPD.
const unreachablePort = 16600

func TestNewClient(t *testing.T) {
	client := mpd.NewClient("localhost", unreachablePort, "")

	if client == nil {
		t.Error("NewClient should return a non-nil client")
	}
}

func TestClientConnectFailure(t *testing.T) {
	client := mpd.NewClient("localhost", unreachablePort, "")

	err := client.Connect()
	if err == nil {
		t.Error("Connect should fail for non-existent server")
		client.Close()
	}
}

func TestClientPingWithoutConnect(t *testing.T) {
	client := mpd.NewClient("localhost", unreachablePort, "")

	if err := client.Ping(); err == nil {
		t.Error("Ping should fail when not connected")
	}
}

func TestClientStatusReconnectFailure(t *testing.T) {
	// Status reconnects lazily; with no server the reconnect must error out.
	client := mpd.NewClient("localhost", unreachablePort, "")

	if _, err := client.Status(); err == nil {
		t.Error("Status should fail when MPD is unreachable")
	}
}

func TestClientCloseWithoutConnect(t *testing.T) {
	client := mpd.NewClient("localhost", unreachablePort, "")

	if err := client.Close(); err != nil {
		t.Errorf("Close on an unconnected client should be a no-op, got %v", err)
	}
}
