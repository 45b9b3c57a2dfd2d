package core

import (
	"time"

	"termirc/config"
	"termirc/internal/conn"
	"termirc/internal/metrics"
	"termirc/internal/render"
	"termirc/internal/repl"
	"termirc/internal/session"
	"termirc/internal/transport"
	"termirc/tunnel"
	"termirc/util"
)

// Build wires an interactive Client from the given configuration: the
// dialer chain, session, connection manager, renderer, notifier, and
// line editor.
func Build(cfg *config.Config, logger *util.Logger, version string) (Mode, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	editor := repl.New(cfg.HistoryFile, logger)
	out := render.New(editor.Stdout(), editor.Stderr())
	return assemble(cfg, logger, version, buildDialer(cfg, logger), editor, out), nil
}

// assemble connects the parts.  Tests call it with their own dialer,
// input, and output.
func assemble(cfg *config.Config, logger *util.Logger, version string,
	dialer transport.Dialer, input LineReader, out *render.Renderer) *Client {
	sess := session.New(cfg.Nick, cfg.User, cfg.RealName)
	mc := metrics.New()

	mgr := conn.NewManager(sess, conn.Options{
		Dialer:         dialer,
		ConnectTimeout: cfg.ConnTimeout,
		WriteTimeout:   config.DefaultWriteTimeout,
		Retries:        cfg.Retries,
		Logger:         logger,
		Metrics:        mc,
	})
	mgr.SetCloseHandler(out.Disconnected)
	mgr.SetLostHandler(out.Lost)

	autoJoin := AutoJoin{Host: cfg.Host, Port: cfg.ServerPort(), Channels: cfg.Channels}
	if autoJoin.Host == "" {
		autoJoin.Host = config.DefaultAutoJoinHost
	}
	if len(autoJoin.Channels) == 0 {
		autoJoin.Channels = []string{config.DefaultAutoJoinChannel}
	}

	d := NewDispatcher(sess, mgr, out, DispatcherOptions{
		DefaultPort: config.DefaultPortFor(cfg.TLS),
		QuitReason:  config.DefaultPartQuitReason,
		AutoJoin:    autoJoin,
		Notifier:    render.NewNotifier(cfg.Notify, out.Bell(), logger),
		Metrics:     mc,
		Logger:      logger,
	})

	return &Client{
		Dispatcher:  d,
		Link:        mgr,
		Input:       input,
		Out:         out,
		Logger:      logger,
		Prompt:      render.Prompt,
		Banner:      func() { out.Banner(version) },
		Host:        cfg.Host,
		Port:        cfg.ServerPort(),
		Channels:    cfg.Channels,
		QuitMessage: cfg.QuitMessage,
	}
}

// ── Dialer chain ─────────────────────────────────────────────────────

// buildDialer picks the base dialer (direct or through the SSH gateway)
// and wraps it in TLS when asked.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	var base transport.Dialer
	if cfg.TunnelEnabled {
		var keepAlive time.Duration
		if cfg.KeepAliveInterval > 0 {
			keepAlive = time.Duration(cfg.KeepAliveInterval) * time.Second
		}
		base = transport.NewSSHDialer(&tunnel.SSHConfig{
			User:          cfg.TunnelUser,
			Host:          cfg.TunnelHost,
			Port:          cfg.TunnelPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
			ConnTimeout:   cfg.ConnTimeout,
			KeepAlive:     keepAlive,
		}, logger)
	} else {
		base = &transport.TCPDialer{Timeout: cfg.ConnTimeout}
	}

	if cfg.TLS {
		return &transport.TLSDialer{Base: base, SkipVerify: cfg.TLSSkipVerify}
	}
	return base
}
