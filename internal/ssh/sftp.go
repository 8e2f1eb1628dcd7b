package ssh

import (
	"io"
	"os"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

type sftpClient interface {
	Create(path string) (sftpFile, error)
	MkdirAll(path string) error
	Chmod(path string, mode os.FileMode) error
	Close() error
}

type sftpFile interface {
	io.Writer
	io.Closer
}

type realSFTPClient struct {
	client *sftp.Client
}

func newSFTP(sshClient *ssh.Client) (sftpClient, error) {
	client, err := sftp.NewClient(sshClient)
	if err != nil {
		return nil, err
	}
	return &realSFTPClient{client: client}, nil
}

func (c *realSFTPClient) Create(path string) (sftpFile, error) {
	return c.client.Create(path)
}

func (c *realSFTPClient) MkdirAll(path string) error {
	return c.client.MkdirAll(path)
}

func (c *realSFTPClient) Chmod(path string, mode os.FileMode) error {
	return c.client.Chmod(path, mode)
}

func (c *realSFTPClient) Close() error {
	return c.client.Close()
}
