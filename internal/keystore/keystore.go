package keystore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"
)

var ErrInvalidKey = errors.New("keystore: invalid key file")

// keyFile is the on-disk layout of one keypair.
type keyFile struct {
	SecretKey string `json:"secretKey"`
	PublicKey string `json:"publicKey"`
}

// Store keeps named keypairs as <Dir>/<name>.json.
type Store struct {
	Dir string

	mu sync.Mutex
}

func New(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.Dir, name+".json")
}

// GetOrCreate loads the keypair called name, generating and persisting a new one
// when the file does not exist yet. An existing file is never overwritten.
func (s *Store) GetOrCreate(name string) (solana.PrivateKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "create keystore %s", s.Dir)
	}

	file := s.path(name)
	key, err := load(file)
	if err == nil {
		return key, nil
	}
	if !os.IsNotExist(errors.Cause(err)) {
		return nil, err
	}

	key, err = solana.NewRandomPrivateKey()
	if err != nil {
		return nil, errors.Wrap(err, "generate keypair")
	}
	if err := save(file, key); err != nil {
		return nil, err
	}
	logx.Infof("[keystore] created %s: %s", name, key.PublicKey())
	return key, nil
}

// Load reads an existing keypair without creating it.
func (s *Store) Load(name string) (solana.PrivateKey, error) {
	return load(s.path(name))
}

func load(file string) (solana.PrivateKey, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, errors.Wrapf(ErrInvalidKey, "%s: %v", file, err)
	}
	raw, err := base58.Decode(kf.SecretKey)
	if err != nil || len(raw) != 64 {
		return nil, errors.Wrapf(ErrInvalidKey, "%s: bad secret key", file)
	}
	key := solana.PrivateKey(raw)
	if kf.PublicKey != "" && kf.PublicKey != key.PublicKey().String() {
		return nil, errors.Wrapf(ErrInvalidKey, "%s: public key does not match secret key", file)
	}
	return key, nil
}

func save(file string, key solana.PrivateKey) error {
	data, err := json.Marshal(keyFile{
		SecretKey: base58.Encode(key),
		PublicKey: key.PublicKey().String(),
	})
	if err != nil {
		return errors.WithStack(err)
	}
	// O_EXCL keeps a concurrently written identity intact
	f, err := os.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return errors.Wrapf(err, "create key file %s", file)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return errors.Wrapf(err, "write key file %s", file)
	}
	return errors.WithStack(f.Close())
}
