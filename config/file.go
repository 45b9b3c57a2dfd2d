package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"strings"

	"git.sr.ht/~emersion/go-scfg"
)

// LoadFile reads an scfg file into cfg.  A missing file is not an error
// when optional is true, which is how the default path is loaded.
//
// Example:
//
//	address ircs://irc.libera.chat
//	nickname alice
//	channel #termirc #go-nuts
//	tunnel admin@bastion.example.com:2222 {
//	    key ~/.ssh/id_ed25519
//	    keep-alive 15
//	}
func LoadFile(path string, cfg *Config, optional bool) error {
	directives, err := scfg.Load(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}
	if err := unmarshal(directives, cfg); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return nil
}

func unmarshal(directives scfg.Block, cfg *Config) error {
	for _, d := range directives {
		var err error
		switch d.Name {
		case "address":
			var addr string
			if err = d.ParseParams(&addr); err == nil {
				err = cfg.SetAddress(addr)
			}
		case "port":
			cfg.Port, err = intParam(d)
		case "nickname":
			err = d.ParseParams(&cfg.Nick)
		case "username":
			err = d.ParseParams(&cfg.User)
		case "realname":
			err = d.ParseParams(&cfg.RealName)
		case "channel":
			cfg.Channels = append(cfg.Channels, d.Params...)
		case "tls":
			cfg.TLS, err = boolParam(d)
		case "tls-skip-verify":
			cfg.TLSSkipVerify, err = boolParam(d)
		case "timeout":
			var sec int
			if sec, err = intParam(d); err == nil {
				cfg.ConnTimeout = secondsDuration(sec)
			}
		case "retries":
			cfg.Retries, err = intParam(d)
		case "quit-message":
			cfg.QuitMessage = strings.Join(d.Params, " ")
		case "notify":
			cfg.Notify, err = boolParam(d)
		case "history":
			err = d.ParseParams(&cfg.HistoryFile)
		case "tunnel":
			err = unmarshalTunnel(d, cfg)
		default:
			err = fmt.Errorf("unknown directive %q", d.Name)
		}
		if err != nil {
			return fmt.Errorf("directive %q: %w", d.Name, err)
		}
	}
	return nil
}

func unmarshalTunnel(d *scfg.Directive, cfg *Config) error {
	if err := d.ParseParams(&cfg.TunnelSpec); err != nil {
		return err
	}
	for _, child := range d.Children {
		var err error
		switch child.Name {
		case "key":
			err = child.ParseParams(&cfg.SSHKeyPath)
		case "password":
			cfg.SSHPassword, err = boolParam(child)
		case "agent":
			cfg.UseSSHAgent, err = boolParam(child)
		case "strict-host-key":
			cfg.StrictHostKey, err = boolParam(child)
		case "known-hosts":
			err = child.ParseParams(&cfg.KnownHostsPath)
		case "keep-alive":
			cfg.KeepAliveInterval, err = intParam(child)
		default:
			err = fmt.Errorf("unknown directive %q", child.Name)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", child.Name, err)
		}
	}
	return nil
}

// SetAddress accepts "host", "host:port", "irc://host[:port]" and
// "ircs://host[:port]"; the ircs scheme turns TLS on.
func (c *Config) SetAddress(addr string) error {
	if strings.Contains(addr, "://") {
		u, err := url.Parse(addr)
		if err != nil {
			return err
		}
		switch u.Scheme {
		case "ircs":
			c.TLS = true
		case "irc+insecure":
			c.TLS = false
		case "irc":
		default:
			return fmt.Errorf("invalid IRC address scheme %q", u.Scheme)
		}
		addr = u.Host
	}
	if host, port, err := net.SplitHostPort(addr); err == nil {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid port %q", port)
		}
		c.Host, c.Port = host, p
		return nil
	}
	c.Host = addr
	return nil
}

func intParam(d *scfg.Directive) (int, error) {
	var s string
	if err := d.ParseParams(&s); err != nil {
		return 0, err
	}
	return strconv.Atoi(s)
}

func boolParam(d *scfg.Directive) (bool, error) {
	var s string
	if err := d.ParseParams(&s); err != nil {
		return false, err
	}
	return strconv.ParseBool(s)
}
