package assets

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/errors"
)

// SFTPMirror mirrors catalog renditions to a remote host over SFTP. Each
// operation dials a fresh connection; the CLI is short-lived and uploads a
// handful of files per run.
type SFTPMirror struct {
	host     string
	port     int
	username string
	password string
	keyFile  string
	basePath string
	timeout  time.Duration
}

// NewSFTPMirror creates a mirror from the settings, or nil when mirroring is
// disabled.
func NewSFTPMirror(settings *conf.Settings) (*SFTPMirror, error) {
	m := &settings.Mirror
	if !m.Enabled {
		return nil, nil
	}
	if m.Host == "" {
		return nil, errors.Newf("mirror enabled but no host configured").
			Component("assets").
			Category(errors.CategoryConfiguration).
			Build()
	}
	port := m.Port
	if port == 0 {
		port = 22
	}
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SFTPMirror{
		host:     m.Host,
		port:     port,
		username: m.Username,
		password: m.Password,
		keyFile:  m.KeyFile,
		basePath: strings.TrimRight(m.Path, "/"),
		timeout:  timeout,
	}, nil
}

func (m *SFTPMirror) connect(ctx context.Context) (*sftp.Client, error) {
	type connResult struct {
		client *sftp.Client
		err    error
	}
	resultChan := make(chan connResult, 1)

	go func() {
		config := &ssh.ClientConfig{
			User:            m.username,
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
			Timeout:         m.timeout,
		}

		switch {
		case m.keyFile != "":
			key, err := os.ReadFile(m.keyFile)
			if err != nil {
				resultChan <- connResult{nil, fmt.Errorf("mirror: failed to read private key: %w", err)}
				return
			}
			signer, err := ssh.ParsePrivateKey(key)
			if err != nil {
				resultChan <- connResult{nil, fmt.Errorf("mirror: failed to parse private key: %w", err)}
				return
			}
			config.Auth = []ssh.AuthMethod{ssh.PublicKeys(signer)}
		case m.password != "":
			config.Auth = []ssh.AuthMethod{ssh.Password(m.password)}
		default:
			resultChan <- connResult{nil, fmt.Errorf("mirror: no authentication method provided")}
			return
		}

		addr := fmt.Sprintf("%s:%d", m.host, m.port)
		sshConn, err := ssh.Dial("tcp", addr, config)
		if err != nil {
			resultChan <- connResult{nil, fmt.Errorf("mirror: failed to connect: %w", err)}
			return
		}

		client, err := sftp.NewClient(sshConn)
		if err != nil {
			sshConn.Close()
			resultChan <- connResult{nil, fmt.Errorf("mirror: failed to create client: %w", err)}
			return
		}
		resultChan <- connResult{client, nil}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-resultChan:
		return result.client, result.err
	}
}

// Upload copies a local file to {basePath}/{key} on the remote host,
// creating intermediate directories as needed.
func (m *SFTPMirror) Upload(ctx context.Context, localPath, key string) error {
	client, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	remotePath := path.Join(m.basePath, key)
	if err := client.MkdirAll(path.Dir(remotePath)); err != nil {
		return fmt.Errorf("mirror: failed to create directory: %w", err)
	}

	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("mirror: failed to open local file: %w", err)
	}
	defer src.Close()

	dst, err := client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("mirror: failed to create remote file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("mirror: failed to write remote file: %w", err)
	}
	return nil
}

// Remove deletes {basePath}/{key} on the remote host. A file that is already
// gone is not an error.
func (m *SFTPMirror) Remove(ctx context.Context, key string) error {
	client, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	remotePath := path.Join(m.basePath, key)
	if err := client.Remove(remotePath); err != nil {
		if strings.Contains(err.Error(), "no such file") {
			return nil
		}
		return fmt.Errorf("mirror: failed to delete remote file: %w", err)
	}
	return nil
}
