package contract

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/hexops/autogold"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yolodolo42/evmcli/internal/soltype"
)

const tokenABI = `[
  {"type":"function","name":"balanceOf","stateMutability":"view",
   "inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"transfer","stateMutability":"nonpayable",
   "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"deposit","stateMutability":"payable","inputs":[],"outputs":[]},
  {"type":"function","name":"decimals","stateMutability":"pure","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
  {"type":"event","name":"Transfer","anonymous":false,"inputs":[
    {"name":"from","type":"address","indexed":true},
    {"name":"to","type":"address","indexed":true},
    {"name":"value","type":"uint256","indexed":false}]},
  {"type":"event","name":"Memo","anonymous":false,"inputs":[
    {"name":"tag","type":"string","indexed":true},
    {"name":"text","type":"string","indexed":false}]}
]`

var (
	tokenAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	alice     = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	bob       = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

func loadToken(t *testing.T) (*Registry, *Contract) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/abi/Token.json", []byte(tokenABI), 0644))
	r, err := LoadRegistry(fs, []Binding{{Address: tokenAddr.Hex(), ABI: "/abi/Token.json"}})
	require.NoError(t, err)
	require.Len(t, r.Contracts(), 1)
	return r, r.Contracts()[0]
}

func TestLoadABI(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bare.json", []byte(tokenABI), 0644))
	require.NoError(t, afero.WriteFile(fs, "/out/Token.sol/Token.json", []byte(`{"abi":`+tokenABI+`,"bytecode":{"object":"0x"}}`), 0644))
	require.NoError(t, afero.WriteFile(fs, "/noabi.json", []byte(`{"bytecode":"0x"}`), 0644))

	bare, err := LoadABI(fs, "/bare.json")
	require.NoError(t, err)
	artifact, err := LoadABI(fs, "/out/Token.sol/Token.json")
	require.NoError(t, err)
	assert.Len(t, bare.Methods, 4)
	assert.Len(t, artifact.Methods, 4)

	_, err = LoadABI(fs, "/noabi.json")
	assert.Error(t, err)
	_, err = LoadABI(fs, "/missing.json")
	assert.Error(t, err)

	t.Run("name from file", func(t *testing.T) {
		c, err := Load(fs, "", tokenAddr, "/out/Token.sol/Token.json")
		require.NoError(t, err)
		assert.Equal(t, "Token", c.Name)
	})

	t.Run("bad address", func(t *testing.T) {
		_, err := LoadRegistry(fs, []Binding{{Name: "x", Address: "nope", ABI: "/bare.json"}})
		assert.Error(t, err)
	})
}

func TestMethods(t *testing.T) {
	_, c := loadToken(t)
	methods, err := c.Methods()
	require.NoError(t, err)

	var labels []string
	for _, m := range methods {
		labels = append(labels, string(m.Tag)+" "+m.Label())
	}
	autogold.Want("method list", []string{
		"view balanceOf(address owner) -> uint256",
		"view decimals() -> uint8",
		"payable deposit()",
		"send transfer(address to, uint256 amount) -> bool",
	}).Equal(t, labels)

	transfer := methods[3]
	assert.False(t, transfer.IsCall())
	assert.Equal(t, "transfer(address,uint256)", transfer.Signature())

	req := transfer.Request()
	assert.Equal(t, "Token.transfer(address,uint256)", req.Title)
	assert.Equal(t, "transfer", req.Method)
	assert.False(t, req.Payable)
	assert.True(t, methods[2].Request().Payable)

	inv := transfer.Invocation(alice, []soltype.Value{
		soltype.AddressValue{V: bob},
		soltype.UintValue{Bits: 256, V: big.NewInt(100)},
	}, nil)
	assert.Equal(t, tokenAddr, inv.To)
	assert.Equal(t, alice, inv.From)
	data, err := inv.Calldata()
	require.NoError(t, err)
	assert.Equal(t, "a9059cbb", common.Bytes2Hex(data[:4]))
}

func TestDescribeLog(t *testing.T) {
	r, c := loadToken(t)

	transfer := &types.Log{
		Address: tokenAddr,
		Topics: []common.Hash{
			c.ABI.Events["Transfer"].ID,
			common.BytesToHash(alice.Bytes()),
			common.BytesToHash(bob.Bytes()),
		},
		Data: common.LeftPadBytes(big.NewInt(100).Bytes(), 32),
	}
	autogold.Want("decoded transfer", []string{
		"[0] Transfer @ 0x5FbDB2315678afecb367f032d93F642f64180aa3",
		"    from: 0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		"    to: 0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
		"    value: 100",
	}).Equal(t, r.DescribeLog(0, transfer))

	t.Run("indexed string shows its hash", func(t *testing.T) {
		ev := c.ABI.Events["Memo"]
		body, err := ev.Inputs.NonIndexed().Pack("hello")
		require.NoError(t, err)
		tagHash := common.HexToHash("0x1234")
		lines := r.DescribeLog(1, &types.Log{
			Address: tokenAddr,
			Topics:  []common.Hash{ev.ID, tagHash},
			Data:    body,
		})
		require.Len(t, lines, 3)
		assert.Equal(t, "[1] Memo @ "+tokenAddr.Hex(), lines[0])
		assert.Equal(t, "    tag: "+tagHash.Hex(), lines[1])
		assert.Equal(t, `    text: "hello"`, lines[2])
	})

	t.Run("unknown contract falls back to raw", func(t *testing.T) {
		raw := *transfer
		raw.Address = bob
		autogold.Want("raw log", []string{
			"[2] Address: 0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
			"    Topics: 0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef, 0x000000000000000000000000f39fd6e51aad88f6f4ce6ab8827279cfffb92266, 0x00000000000000000000000070997970c51812dc3a010c7d01b50e0d17dc79c8",
			"    Data: 0x0000000000000000000000000000000000000000000000000000000000000064",
		}).Equal(t, r.DescribeLog(2, &raw))
	})

	t.Run("unknown event falls back to raw", func(t *testing.T) {
		lines := r.DescribeLog(3, &types.Log{Address: tokenAddr, Topics: []common.Hash{{1}}})
		assert.Equal(t, []string{
			"[3] Address: " + tokenAddr.Hex(),
			"    Topics: " + common.Hash{1}.Hex(),
		}, lines)
	})

	assert.Equal(t, []string{"no logs"}, r.DescribeLogs(nil))
}
