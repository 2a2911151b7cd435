package stream

import "github.com/JanNeuendorf/zipurat/internal/sftpurl"

// OpenRead opens locator for reading. locator is either a local path
// or an sftp://user@host[:port]/path URL.
func OpenRead(locator string) (Stream, error) {
	if parsed, err := sftpurl.Parse(locator); err == nil {
		return OpenRemoteRead(parsed.Host, parsed.User, parsed.Path, parsed.Port)
	}
	return OpenLocalRead(locator)
}

// OpenWrite creates locator for writing, failing with zerr.Exists if
// it is already present. locator is either a local path or an
// sftp://user@host[:port]/path URL.
func OpenWrite(locator string) (Stream, error) {
	if parsed, err := sftpurl.Parse(locator); err == nil {
		return OpenRemoteWrite(parsed.Host, parsed.User, parsed.Path, parsed.Port)
	}
	return OpenLocalWrite(locator)
}
