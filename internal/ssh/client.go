package ssh

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"path"
	"path/filepath"

	domainerr "github.com/lite-lake/infra-certops/internal/domain"
	"github.com/lite-lake/infra-certops/internal/domain/entity"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

type Client struct {
	client *ssh.Client
}

// NewClient connects to a deploy target. Key-file auth wins over password
// when both are configured.
func NewClient(target *entity.DeployTarget, secrets map[string]string) (*Client, error) {
	var methods []ssh.AuthMethod

	if target.KeyFile != "" {
		keyData, err := os.ReadFile(target.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("%w: reading key %s: %v", domainerr.ErrSSHConnectFailed, target.KeyFile, err)
		}
		signer, err := ssh.ParsePrivateKey(keyData)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing key %s: %v", domainerr.ErrSSHConnectFailed, target.KeyFile, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if target.Password != nil {
		password, err := target.Password.Resolve(secrets)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domainerr.ErrSSHConnectFailed, err)
		}
		methods = append(methods, ssh.Password(password))
	}

	hostKeys := ssh.InsecureIgnoreHostKey()
	if !target.InsecureSkipHostKey {
		var err error
		hostKeys, err = hostKeyCallback(defaultKnownHostsPath())
		if err != nil {
			return nil, fmt.Errorf("%w: host key verification: %v", domainerr.ErrSSHConnectFailed, err)
		}
	}

	config := &ssh.ClientConfig{
		User:            target.User,
		Auth:            methods,
		HostKeyCallback: hostKeys,
	}

	client, err := ssh.Dial("tcp", target.Addr(), config)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domainerr.ErrSSHConnectFailed, target.Addr(), err)
	}

	return &Client{client: client}, nil
}

func defaultKnownHostsPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv("HOME")
	}
	return filepath.Join(homeDir, ".ssh", "known_hosts")
}

// hostKeyCallback verifies hosts against knownHostsPath, recording a host's
// key on first contact. A key change for a recorded host is always rejected.
func hostKeyCallback(knownHostsPath string) (ssh.HostKeyCallback, error) {
	if _, err := os.Stat(knownHostsPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(knownHostsPath), 0700); err != nil {
			return nil, err
		}
		if err := os.WriteFile(knownHostsPath, []byte{}, 0600); err != nil {
			return nil, err
		}
	}

	verify, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, err
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := verify(hostname, remote, key)
		if err == nil {
			return nil
		}

		keyErr, ok := err.(*knownhosts.KeyError)
		if !ok {
			return err
		}
		if len(keyErr.Want) > 0 {
			return fmt.Errorf("host key mismatch for %s", hostname)
		}

		line := knownhosts.Line([]string{hostname}, key)
		f, err := os.OpenFile(knownHostsPath, os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("recording host key: %w", err)
		}
		defer f.Close()
		if _, err := fmt.Fprintln(f, line); err != nil {
			return fmt.Errorf("recording host key: %w", err)
		}
		return nil
	}, nil
}

func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *Client) Run(cmd string) (stdout, stderr string, err error) {
	session, err := c.client.NewSession()
	if err != nil {
		return "", "", fmt.Errorf("%w: creating session: %v", domainerr.ErrSSHConnectFailed, err)
	}
	defer session.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	session.Stdout = &stdoutBuf
	session.Stderr = &stderrBuf

	err = session.Run(cmd)
	return stdoutBuf.String(), stderrBuf.String(), err
}

// UploadBytes writes data to remotePath over SFTP, creating parent
// directories and setting the requested mode.
func (c *Client) UploadBytes(data []byte, remotePath string, perm os.FileMode) error {
	sftpClient, err := newSFTP(c.client)
	if err != nil {
		return fmt.Errorf("%w: opening sftp: %v", domainerr.ErrSSHFileTransfer, err)
	}
	defer sftpClient.Close()

	if dir := path.Dir(remotePath); dir != "." && dir != "/" {
		if err := sftpClient.MkdirAll(dir); err != nil {
			return fmt.Errorf("%w: mkdir %s: %v", domainerr.ErrSSHFileTransfer, dir, err)
		}
	}

	remoteFile, err := sftpClient.Create(remotePath)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", domainerr.ErrSSHFileTransfer, remotePath, err)
	}
	if _, err := remoteFile.Write(data); err != nil {
		remoteFile.Close()
		return fmt.Errorf("%w: writing %s: %v", domainerr.ErrSSHFileTransfer, remotePath, err)
	}
	if err := remoteFile.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %v", domainerr.ErrSSHFileTransfer, remotePath, err)
	}

	if err := sftpClient.Chmod(remotePath, perm); err != nil {
		return fmt.Errorf("%w: chmod %s: %v", domainerr.ErrSSHFileTransfer, remotePath, err)
	}
	return nil
}
