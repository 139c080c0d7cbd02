package command

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-gamesim/internal/listener"
	"github.com/pixil98/go-service"
	"golang.org/x/crypto/ssh"
)

type ConsoleType int

const (
	ConsoleTypeTelnet ConsoleType = iota
	ConsoleTypeSSH
)

func (ct *ConsoleType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "telnet":
		*ct = ConsoleTypeTelnet
	case "ssh":
		*ct = ConsoleTypeSSH
	default:
		return fmt.Errorf("unknown console type: %s", text)
	}
	return nil
}

type ConsoleConfig struct {
	Protocol    ConsoleType `json:"protocol"`
	Port        uint16      `json:"port"`
	HostKeyPath string      `json:"host_key_path,omitempty"`
}

func (c *ConsoleConfig) validate() error {
	el := errors.NewErrorList()

	if c.Port == 0 {
		el.Add(fmt.Errorf("port must be set to a positive integer"))
	}

	return el.Err()
}

func (c *ConsoleConfig) buildConsole(cm *listener.ConsoleManager) (service.Worker, error) {
	switch c.Protocol {
	case ConsoleTypeTelnet:
		return listener.NewTelnetListener(c.Port, cm), nil
	case ConsoleTypeSSH:
		hostKey, err := c.loadOrGenerateHostKey()
		if err != nil {
			return nil, fmt.Errorf("setting up ssh host key: %w", err)
		}
		return listener.NewSshListener(c.Port, cm, hostKey), nil
	default:
		return nil, fmt.Errorf("unknown console type: %v", c.Protocol)
	}
}

func (c *ConsoleConfig) loadOrGenerateHostKey() (ssh.Signer, error) {
	if c.HostKeyPath != "" {
		keyBytes, err := os.ReadFile(c.HostKeyPath)
		if err != nil {
			return nil, fmt.Errorf("reading host key %q: %w", c.HostKeyPath, err)
		}
		signer, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("parsing host key %q: %w", c.HostKeyPath, err)
		}
		return signer, nil
	}

	slog.Warn("no host_key_path configured for ssh console, generating ephemeral key")
	_, privKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating ephemeral key: %w", err)
	}
	signer, err := ssh.NewSignerFromKey(privKey)
	if err != nil {
		return nil, fmt.Errorf("creating signer from ephemeral key: %w", err)
	}
	return signer, nil
}
