package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const recordFormatVersionV1 = 1

// ErrCorruptRecord is returned by [Decode] when a stored blob cannot be
// interpreted as any known record format.
var ErrCorruptRecord = errors.New("corrupt session record")

// Encode serializes a [Record] into the compact binary form stored in the
// registry. The session ID is the storage key and is not part of the blob.
func Encode(r *Record) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(recordFormatVersionV1)

	if len(r.Username) > 255 {
		return nil, errors.New("username too long")
	}
	buf.WriteByte(byte(len(r.Username)))
	buf.WriteString(r.Username)

	if len(r.Role) > 255 {
		return nil, errors.New("role too long")
	}
	buf.WriteByte(byte(len(r.Role)))
	buf.WriteString(r.Role)

	if err := binary.Write(&buf, binary.BigEndian, r.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, r.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a blob produced by [Encode].
func Decode(data []byte) (*Record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, ErrCorruptRecord
	}
	if version != recordFormatVersionV1 {
		return nil, ErrCorruptRecord
	}

	r := &Record{}

	usernameLen, err := reader.ReadByte()
	if err != nil {
		return nil, ErrCorruptRecord
	}
	username := make([]byte, usernameLen)
	if _, err := io.ReadFull(reader, username); err != nil {
		return nil, ErrCorruptRecord
	}
	r.Username = string(username)

	roleLen, err := reader.ReadByte()
	if err != nil {
		return nil, ErrCorruptRecord
	}
	role := make([]byte, roleLen)
	if _, err := io.ReadFull(reader, role); err != nil {
		return nil, ErrCorruptRecord
	}
	r.Role = string(role)

	if err := binary.Read(reader, binary.BigEndian, &r.CreatedAt); err != nil {
		return nil, ErrCorruptRecord
	}
	if err := binary.Read(reader, binary.BigEndian, &r.ExpiresAt); err != nil {
		return nil, ErrCorruptRecord
	}
	if reader.Len() != 0 {
		return nil, ErrCorruptRecord
	}

	return r, nil
}
