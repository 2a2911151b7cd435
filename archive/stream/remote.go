package stream

import (
	"path"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/JanNeuendorf/zipurat/archive/zerr"
	"github.com/JanNeuendorf/zipurat/internal/sftpurl"
)

func resolveRemotePath(sftpClient *sftp.Client, p string) (string, error) {
	if path.IsAbs(p) {
		return p, nil
	}
	wd, err := sftpClient.Getwd()
	if err != nil {
		return "", zerr.Wrap(zerr.IoError, "resolve sftp working directory", err)
	}
	return path.Join(wd, p), nil
}

func dialSFTP(host string, port int, user string) (*ssh.Client, *sftp.Client, error) {
	sshClient, err := sftpurl.DialAgent(host, port, user)
	if err != nil {
		return nil, nil, err
	}
	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, nil, zerr.Wrap(zerr.IoError, "start sftp session", err)
	}
	return sshClient, sftpClient, nil
}

// OpenRemoteRead opens a remote archive for reading over SFTP. Relative
// paths are resolved against the server's working directory.
func OpenRemoteRead(host string, user string, filename string, port int) (Stream, error) {
	sshClient, sftpClient, err := dialSFTP(host, port, user)
	if err != nil {
		return nil, err
	}

	resolved, err := resolveRemotePath(sftpClient, filename)
	if err != nil {
		_ = sftpClient.Close()
		_ = sshClient.Close()
		return nil, err
	}

	f, err := sftpClient.Open(resolved)
	if err != nil {
		_ = sftpClient.Close()
		_ = sshClient.Close()
		return nil, zerr.Wrap(zerr.IoError, "open remote archive for read", err)
	}

	return &sftpStream{f: f, sftpClient: sftpClient, closeConn: sshClient.Close}, nil
}

// OpenRemoteWrite creates a remote archive for writing over SFTP. It
// fails with zerr.Exists if the target is already present.
func OpenRemoteWrite(host string, user string, filename string, port int) (Stream, error) {
	sshClient, sftpClient, err := dialSFTP(host, port, user)
	if err != nil {
		return nil, err
	}

	resolved, err := resolveRemotePath(sftpClient, filename)
	if err != nil {
		_ = sftpClient.Close()
		_ = sshClient.Close()
		return nil, err
	}

	if _, statErr := sftpClient.Stat(resolved); statErr == nil {
		_ = sftpClient.Close()
		_ = sshClient.Close()
		return nil, zerr.New(zerr.Exists, "remote archive already exists: "+resolved)
	}

	f, err := sftpClient.Create(resolved)
	if err != nil {
		_ = sftpClient.Close()
		_ = sshClient.Close()
		return nil, zerr.Wrap(zerr.IoError, "create remote archive", err)
	}

	return &sftpStream{f: f, sftpClient: sftpClient, closeConn: sshClient.Close}, nil
}
