// Package pipeline implements the streaming compress-then-encrypt and
// decrypt-then-decompress pipelines every chunk in the archive goes
// through. Compression is zstd (github.com/klauspost/compress/zstd);
// encryption is age (filippo.io/age), a multi-recipient AEAD-grade
// construction that key-wraps a fresh file key per recipient.
package pipeline

import (
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/JanNeuendorf/zipurat/archive/zerr"
	"github.com/JanNeuendorf/zipurat/internal/identity"
)

// encoderLevel maps the archive's generic 1-22-ish compression level
// (the range the CLI historically exposed) onto klauspost/compress's
// four-tier EncoderLevel enum.
func encoderLevel(level int) zstd.EncoderLevel {
	switch {
	case level <= 1:
		return zstd.SpeedFastest
	case level <= 6:
		return zstd.SpeedDefault
	case level <= 12:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

// CompressAndEncrypt streams src through a zstd compressor at level,
// then through an age multi-recipient encryptor, writing the result
// to dst. Finalizing flushes both the compressor frame and the AEAD
// trailer.
func CompressAndEncrypt(src io.Reader, dst io.Writer, level int, recipients []identity.Recipient) error {
	encWriter, err := ageEncrypt(dst, recipients)
	if err != nil {
		return zerr.Wrap(zerr.CryptoError, "create age encryptor", err)
	}

	zw, err := zstd.NewWriter(encWriter, zstd.WithEncoderLevel(encoderLevel(level)))
	if err != nil {
		return zerr.Wrap(zerr.CompressError, "create zstd encoder", err)
	}

	if _, err := io.Copy(zw, src); err != nil {
		_ = zw.Close()
		_ = encWriter.Close()
		return zerr.Wrap(zerr.CompressError, "compress chunk", err)
	}

	if err := zw.Close(); err != nil {
		_ = encWriter.Close()
		return zerr.Wrap(zerr.CompressError, "flush zstd encoder", err)
	}

	if err := encWriter.Close(); err != nil {
		return zerr.Wrap(zerr.CryptoError, "finalize age encryptor", err)
	}

	return nil
}

// DecryptAndDecompress reads exactly length bytes from src, decrypts
// against identities (which must include at least one matching
// recipient), decompresses, and copies the result to dst in full.
func DecryptAndDecompress(src io.Reader, dst io.Writer, length uint64, identities []identity.Identity) error {
	return decryptAndDecompressHead(src, dst, length, -1, identities)
}

// DecryptAndDecompressHead behaves like DecryptAndDecompress but
// truncates the decompressed output at writeOnly bytes, for partial
// (head) reads.
func DecryptAndDecompressHead(src io.Reader, dst io.Writer, length uint64, writeOnly int64, identities []identity.Identity) error {
	return decryptAndDecompressHead(src, dst, length, writeOnly, identities)
}

func decryptAndDecompressHead(src io.Reader, dst io.Writer, length uint64, writeOnly int64, identities []identity.Identity) error {
	bounded := io.LimitReader(src, int64(length))

	decReader, err := ageDecrypt(bounded, identities)
	if err != nil {
		return zerr.Wrap(zerr.CryptoError, "decrypt chunk", err)
	}

	zr, err := zstd.NewReader(decReader)
	if err != nil {
		return zerr.Wrap(zerr.CompressError, "create zstd decoder", err)
	}
	defer zr.Close()

	var toCopy io.Reader = zr
	if writeOnly >= 0 {
		toCopy = io.LimitReader(zr, writeOnly)
	}

	if _, err := io.Copy(dst, toCopy); err != nil {
		return zerr.Wrap(zerr.CompressError, "decompress chunk", err)
	}
	return nil
}
