package pipeline

import (
	"io"

	"filippo.io/age"

	"github.com/JanNeuendorf/zipurat/internal/identity"
)

func ageEncrypt(dst io.Writer, recipients []identity.Recipient) (io.WriteCloser, error) {
	return age.Encrypt(dst, recipients...)
}

func ageDecrypt(src io.Reader, identities []identity.Identity) (io.Reader, error) {
	return age.Decrypt(src, identities...)
}
