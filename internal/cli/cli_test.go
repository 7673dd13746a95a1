package cli

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yolodolo42/evmcli/internal/config"
	"github.com/yolodolo42/evmcli/internal/testutil"
)

const devKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestNetwork(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Equal(t, "Unknown", network(cfg).Name)

	cfg.Network = "anvil"
	assert.Equal(t, "Anvil", network(cfg).Name)

	cfg.Network = ""
	cfg.ChainID = 11155111
	assert.Equal(t, int64(11155111), network(cfg).ChainID.Int64())
}

func TestBindings(t *testing.T) {
	got := bindings([]config.ContractConfig{{Name: "token", Address: "0x01", ABI: "Token.json"}})
	require.Len(t, got, 1)
	assert.Equal(t, "token", got[0].Name)
	assert.Equal(t, "Token.json", got[0].ABI)
}

func TestLoadSigner(t *testing.T) {
	t.Run("read-only", func(t *testing.T) {
		signer, err := loadSigner(config.DefaultConfig(), noPrompt(t))
		require.NoError(t, err)
		assert.Nil(t, signer)
	})

	t.Run("private key", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.PrivateKey = devKey
		signer, err := loadSigner(cfg, noPrompt(t))
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), signer.Address())
	})

	t.Run("bad private key", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.PrivateKey = "0x1234"
		_, err := loadSigner(cfg, noPrompt(t))
		assert.Error(t, err)
	})

	t.Run("account missing from keystore", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.KeystoreDir = testutil.TempDir(t)
		cfg.Account = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
		signer, err := loadSigner(cfg, noPrompt(t))
		require.NoError(t, err)
		assert.Nil(t, signer)
	})
}
