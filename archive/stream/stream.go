// Package stream provides a uniform, seekable byte-stream handle over
// either a local file or a remote SFTP file, so the rest of the
// archive core never branches on transport.
package stream

import (
	"io"
	"os"

	"github.com/pkg/sftp"

	"github.com/JanNeuendorf/zipurat/archive/zerr"
)

// Stream is the capability the archive core needs from its backing
// byte storage: read, write, seek, and a position query. Exactly one
// Stream is open per archive at a time (see the package doc on
// archive-level locking in archive/reader and archive/builder).
type Stream interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
	// Position reports the current absolute offset from the start of
	// the stream.
	Position() (int64, error)
}

// localStream wraps a local *os.File.
type localStream struct {
	f *os.File
}

func (s *localStream) Read(p []byte) (int, error)                 { return s.f.Read(p) }
func (s *localStream) Write(p []byte) (int, error)                { return s.f.Write(p) }
func (s *localStream) Seek(offset int64, whence int) (int64, error) { return s.f.Seek(offset, whence) }
func (s *localStream) Close() error                                { return s.f.Close() }
func (s *localStream) Position() (int64, error)                    { return s.f.Seek(0, io.SeekCurrent) }

// OpenLocalRead opens filename for reading. It fails if the file is
// absent.
func OpenLocalRead(filename string) (Stream, error) {
	f, err := os.Open(filename) // #nosec
	if err != nil {
		return nil, zerr.Wrap(zerr.IoError, "open local archive for read", err)
	}
	return &localStream{f: f}, nil
}

// OpenLocalWrite creates filename for writing. It fails if the target
// already exists (no in-place overwrite of archives).
func OpenLocalWrite(filename string) (Stream, error) {
	f, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, zerr.Wrap(zerr.Exists, "local archive already exists", err)
		}
		return nil, zerr.Wrap(zerr.IoError, "create local archive", err)
	}
	return &localStream{f: f}, nil
}

// sftpStream wraps a remote *sftp.File. The owning *sftp.Client and
// ssh.Client are kept alive for the lifetime of the stream and torn
// down on Close.
type sftpStream struct {
	f          *sftp.File
	sftpClient *sftp.Client
	closeConn  func() error
}

func (s *sftpStream) Read(p []byte) (int, error)                 { return s.f.Read(p) }
func (s *sftpStream) Write(p []byte) (int, error)                { return s.f.Write(p) }
func (s *sftpStream) Seek(offset int64, whence int) (int64, error) { return s.f.Seek(offset, whence) }
func (s *sftpStream) Position() (int64, error)                    { return s.f.Seek(0, io.SeekCurrent) }

func (s *sftpStream) Close() error {
	ferr := s.f.Close()
	cerr := s.sftpClient.Close()
	connErr := s.closeConn()
	if ferr != nil {
		return zerr.Wrap(zerr.IoError, "close sftp file", ferr)
	}
	if cerr != nil {
		return zerr.Wrap(zerr.IoError, "close sftp client", cerr)
	}
	return connErr
}
