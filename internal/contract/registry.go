package contract

import (
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/afero"
)

// Binding names an ABI file deployed at an address.
type Binding struct {
	Name    string
	Address string
	ABI     string
}

// Registry holds the loaded contracts in configuration order.
type Registry struct {
	contracts []*Contract
	byAddress map[common.Address]*Contract
}

func NewRegistry() *Registry {
	return &Registry{byAddress: make(map[common.Address]*Contract)}
}

// LoadRegistry loads every binding. The first failure aborts.
func LoadRegistry(fs afero.Fs, bindings []Binding) (*Registry, error) {
	r := NewRegistry()
	for _, b := range bindings {
		if !common.IsHexAddress(b.Address) {
			return nil, errors.Newf("contract %s: %q is not an address", b.Name, b.Address)
		}
		c, err := Load(fs, b.Name, common.HexToAddress(b.Address), b.ABI)
		if err != nil {
			return nil, err
		}
		r.Add(c)
	}
	return r, nil
}

// Add registers c, replacing a contract at the same address.
func (r *Registry) Add(c *Contract) {
	if old, ok := r.byAddress[c.Address]; ok {
		for i, existing := range r.contracts {
			if existing == old {
				r.contracts[i] = c
			}
		}
	} else {
		r.contracts = append(r.contracts, c)
	}
	r.byAddress[c.Address] = c
}

func (r *Registry) Contracts() []*Contract { return r.contracts }

// ByAddress finds the contract deployed at addr.
func (r *Registry) ByAddress(addr common.Address) (*Contract, bool) {
	c, ok := r.byAddress[addr]
	return c, ok
}

// Methods lists the methods of every contract, contract by contract.
func (r *Registry) Methods() ([]Method, error) {
	var all []Method
	for _, c := range r.contracts {
		ms, err := c.Methods()
		if err != nil {
			return nil, err
		}
		all = append(all, ms...)
	}
	return all, nil
}
