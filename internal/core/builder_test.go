package core

import (
	"testing"

	"termirc/config"
	"termirc/internal/transport"
	"termirc/util"
)

// TestBuild_Client verifies that Build produces an interactive Client
// carrying the configured server.
func TestBuild_Client(t *testing.T) {
	cfg := config.New()
	cfg.Host = "irc.example.net"
	cfg.Channels = []string{"#go"}

	mode, err := Build(cfg, util.NewLogger(0), "test")
	if err != nil {
		t.Fatal(err)
	}
	c, ok := mode.(*Client)
	if !ok {
		t.Fatalf("expected *Client, got %T", mode)
	}
	defer c.Input.Close()
	if c.Host != "irc.example.net" || c.Port != 6667 || len(c.Channels) != 1 {
		t.Errorf("client target = %s:%d %v", c.Host, c.Port, c.Channels)
	}
	if c.QuitMessage != config.DefaultQuitMessage {
		t.Errorf("QuitMessage = %q", c.QuitMessage)
	}
}

// TestBuild_Invalid verifies Build refuses an inconsistent config.
func TestBuild_Invalid(t *testing.T) {
	cfg := config.New()
	cfg.Port = 6667 // port without host
	if _, err := Build(cfg, util.NewLogger(0), "test"); err == nil {
		t.Fatal("expected validation error")
	}
}

// TestBuild_AutoJoinDefaults verifies /autojoin falls back to the
// built-in server and channel.
func TestBuild_AutoJoinDefaults(t *testing.T) {
	mode, err := Build(config.New(), util.NewLogger(0), "test")
	if err != nil {
		t.Fatal(err)
	}
	c := mode.(*Client)
	defer c.Input.Close()
	aj := c.Dispatcher.opts.AutoJoin
	if aj.Host != config.DefaultAutoJoinHost || aj.Channels[0] != config.DefaultAutoJoinChannel {
		t.Errorf("autojoin = %+v", aj)
	}
}

func TestBuildDialer(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		check  func(t *testing.T, d transport.Dialer)
	}{
		{"plain", func(*config.Config) {}, func(t *testing.T, d transport.Dialer) {
			if _, ok := d.(*transport.TCPDialer); !ok {
				t.Errorf("got %T, want *TCPDialer", d)
			}
		}},
		{"tls", func(c *config.Config) { c.TLS = true }, func(t *testing.T, d transport.Dialer) {
			td, ok := d.(*transport.TLSDialer)
			if !ok {
				t.Fatalf("got %T, want *TLSDialer", d)
			}
			if _, ok := td.Base.(*transport.TCPDialer); !ok {
				t.Errorf("base %T, want *TCPDialer", td.Base)
			}
		}},
		{"tunnel", func(c *config.Config) {
			c.TunnelEnabled, c.TunnelHost, c.TunnelPort, c.TunnelUser = true, "gw", 22, "admin"
		}, func(t *testing.T, d transport.Dialer) {
			if _, ok := d.(*transport.SSHDialer); !ok {
				t.Errorf("got %T, want *SSHDialer", d)
			}
		}},
		{"tls over tunnel", func(c *config.Config) {
			c.TLS = true
			c.TunnelEnabled, c.TunnelHost, c.TunnelPort, c.TunnelUser = true, "gw", 22, "admin"
		}, func(t *testing.T, d transport.Dialer) {
			td, ok := d.(*transport.TLSDialer)
			if !ok {
				t.Fatalf("got %T, want *TLSDialer", d)
			}
			if _, ok := td.Base.(*transport.SSHDialer); !ok {
				t.Errorf("base %T, want *SSHDialer", td.Base)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.mutate(cfg)
			d := buildDialer(cfg, util.NewLogger(0))
			defer d.Close()
			tt.check(t, d)
		})
	}
}
