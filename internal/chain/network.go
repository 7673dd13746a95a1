package chain

import "math/big"

// Network describes a known EVM network. Presets let --network stand in
// for an RPC URL and an expected chain id.
type Network struct {
	Name           string
	ChainID        *big.Int
	RPCURL         string
	ExplorerURL    string
	NativeCurrency string
	IsTestnet      bool
}

// Networks returns the built-in presets keyed by short name.
func Networks() map[string]*Network {
	return map[string]*Network{
		"anvil": {
			Name:           "Anvil",
			ChainID:        big.NewInt(31337),
			RPCURL:         "http://localhost:8545",
			NativeCurrency: "ETH",
			IsTestnet:      true,
		},
		"ethereum": {
			Name:           "Ethereum Mainnet",
			ChainID:        big.NewInt(1),
			RPCURL:         "https://eth.llamarpc.com",
			ExplorerURL:    "https://etherscan.io",
			NativeCurrency: "ETH",
		},
		"base": {
			Name:           "Base",
			ChainID:        big.NewInt(8453),
			RPCURL:         "https://mainnet.base.org",
			ExplorerURL:    "https://basescan.org",
			NativeCurrency: "ETH",
		},
		"polygon": {
			Name:           "Polygon",
			ChainID:        big.NewInt(137),
			RPCURL:         "https://polygon-rpc.com",
			ExplorerURL:    "https://polygonscan.com",
			NativeCurrency: "POL",
		},
		"sepolia": {
			Name:           "Sepolia Testnet",
			ChainID:        big.NewInt(11155111),
			RPCURL:         "https://rpc.sepolia.org",
			ExplorerURL:    "https://sepolia.etherscan.io",
			NativeCurrency: "ETH",
			IsTestnet:      true,
		},
		"base-sepolia": {
			Name:           "Base Sepolia Testnet",
			ChainID:        big.NewInt(84532),
			RPCURL:         "https://sepolia.base.org",
			ExplorerURL:    "https://sepolia.basescan.org",
			NativeCurrency: "ETH",
			IsTestnet:      true,
		},
	}
}

// NetworkByChainID finds the preset for id. Unknown chains get a generic
// entry so callers always have a currency symbol.
func NetworkByChainID(id *big.Int) *Network {
	if id != nil {
		for _, n := range Networks() {
			if n.ChainID.Cmp(id) == 0 {
				return n
			}
		}
	}
	return &Network{Name: "Unknown", ChainID: id, NativeCurrency: "ETH"}
}
