package wallet

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
)

// KeystoreManager manages an encrypted keystore directory.
type KeystoreManager struct {
	ks  *keystore.KeyStore
	dir string
}

// NewKeystoreManager opens the keystore in dir, creating it if needed.
func NewKeystoreManager(dir string) (*KeystoreManager, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrap(err, "create keystore directory")
	}
	return &KeystoreManager{
		ks:  keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP),
		dir: dir,
	}, nil
}

// Dir is the keystore directory.
func (km *KeystoreManager) Dir() string { return km.dir }

// CreateAccount creates a new account with the given password
func (km *KeystoreManager) CreateAccount(password string) (accounts.Account, error) {
	return km.ks.NewAccount(password)
}

// ImportKey imports a hex private key and encrypts it with password.
func (km *KeystoreManager) ImportKey(privateKeyHex, password string) (accounts.Account, error) {
	key, err := parseKey(privateKeyHex)
	if err != nil {
		return accounts.Account{}, err
	}
	return km.ks.ImportECDSA(key, password)
}

// ListAccounts returns all accounts in the keystore
func (km *KeystoreManager) ListAccounts() []accounts.Account {
	return km.ks.Accounts()
}

// Unlock decrypts the key of address and returns a signer holding it.
func (km *KeystoreManager) Unlock(address common.Address, password string) (*KeySigner, error) {
	if !km.ks.HasAddress(address) {
		return nil, errors.Wrapf(ErrAccountNotFound, "%s", address.Hex())
	}
	account, err := km.ks.Find(accounts.Account{Address: address})
	if err != nil {
		return nil, errors.Wrapf(ErrAccountNotFound, "%s", address.Hex())
	}

	keyJSON, err := os.ReadFile(account.URL.Path)
	if err != nil {
		return nil, errors.Wrap(err, "read key file")
	}
	key, err := keystore.DecryptKey(keyJSON, password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unlock account")
	}
	return newKeySigner(key.PrivateKey), nil
}
