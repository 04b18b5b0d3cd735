package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ericfisherdev/prnotifier/internal/domain/model"
	"github.com/ericfisherdev/prnotifier/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ParameterStore = (*ParameterRepo)(nil)

// ParameterRepo is the SQLite implementation of the ParameterStore port interface.
// Secure values are encrypted with AES-256-GCM before write and decrypted after read.
type ParameterRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key; nil when encryption is disabled.
}

// NewParameterRepo creates a new ParameterRepo. key must be 32 bytes for AES-256-GCM,
// or nil, in which case only non-secure parameters can be read or written.
func NewParameterRepo(db *DB, key []byte) *ParameterRepo {
	return &ParameterRepo{db: db, key: key}
}

// Put stores or replaces a parameter, encrypting the value when it is secure.
func (r *ParameterRepo) Put(ctx context.Context, param model.Parameter) error {
	value := param.Value
	if param.Secure {
		encrypted, err := r.encrypt(param.Value)
		if err != nil {
			return fmt.Errorf("put parameter %q: %w", param.Name, err)
		}
		value = encrypted
	}

	const query = `INSERT OR REPLACE INTO parameters (name, value, secure, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`
	_, err := r.db.Writer.ExecContext(ctx, query, param.Name, value, param.Secure)
	if err != nil {
		return fmt.Errorf("put parameter %q: %w", param.Name, err)
	}
	return nil
}

// GetByPath returns all parameters whose name starts with path, ordered by name,
// with secure values decrypted.
func (r *ParameterRepo) GetByPath(ctx context.Context, path string) ([]model.Parameter, error) {
	const query = `SELECT name, value, secure, updated_at FROM parameters WHERE instr(name, ?) = 1 ORDER BY name`

	rows, err := r.db.Reader.QueryContext(ctx, query, path)
	if err != nil {
		return nil, fmt.Errorf("get parameters by path %q: %w", path, err)
	}
	defer rows.Close()

	var params []model.Parameter
	for rows.Next() {
		var p model.Parameter
		var stored, updatedAt string
		if err := rows.Scan(&p.Name, &stored, &p.Secure, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan parameter: %w", err)
		}

		p.Value = stored
		if p.Secure {
			p.Value, err = r.decrypt(stored)
			if err != nil {
				return nil, fmt.Errorf("decrypt parameter %q: %w", p.Name, err)
			}
		}

		p.UpdatedAt, err = parseTime(updatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse updated_at for parameter %q: %w", p.Name, err)
		}

		params = append(params, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parameters: %w", err)
	}

	return params, nil
}

// encrypt encrypts plaintext using AES-256-GCM and returns a base64-encoded string
// containing the nonce (12 bytes) prepended to the ciphertext.
func (r *ParameterRepo) encrypt(plaintext string) (string, error) {
	gcm, err := r.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts a base64-encoded AES-256-GCM ciphertext.
func (r *ParameterRepo) decrypt(encoded string) (string, error) {
	gcm, err := r.gcm()
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}

func (r *ParameterRepo) gcm() (cipher.AEAD, error) {
	if r.key == nil {
		return nil, driven.ErrEncryptionKeyNotSet
	}

	block, err := aes.NewCipher(r.key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, strings.TrimSpace(s)); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
