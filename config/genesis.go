package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/holiman/uint256"

	"mctoken/core/types"
	"mctoken/native/token"
)

// Genesis carries the one-time init arguments for a ledger instance, loaded
// from a TOML file on first boot.
type Genesis struct {
	Name            string   `toml:"Name"`
	Symbol          string   `toml:"Symbol"`
	Decimals        uint8    `toml:"Decimals"`
	InitialSupply   string   `toml:"InitialSupply"`
	Deployer        string   `toml:"Deployer"`
	LedgerAddress   string   `toml:"LedgerAddress"`
	FeeReceiver     string   `toml:"FeeReceiver"`
	SwapFee         string   `toml:"SwapFee"`
	AdminList       []string `toml:"AdminList"`
	MinterList      []string `toml:"MinterList"`
	SupportedChains []string `toml:"SupportedChains"`
	EnableMintBurn  bool     `toml:"EnableMintBurn"`
}

// LoadGenesis reads the genesis file at path.
func LoadGenesis(path string) (*Genesis, error) {
	gen := &Genesis{}
	if _, err := toml.DecodeFile(path, gen); err != nil {
		return nil, fmt.Errorf("config: decode genesis %s: %w", path, err)
	}
	return gen, nil
}

// InitConfig converts the genesis document into engine init arguments.
func (g *Genesis) InitConfig() (token.InitConfig, types.Address, error) {
	var cfg token.InitConfig
	deployer, err := types.ParseAddress(g.Deployer)
	if err != nil {
		return cfg, types.Address{}, fmt.Errorf("config: deployer: %w", err)
	}
	ledger, err := types.ParseAddress(g.LedgerAddress)
	if err != nil {
		return cfg, types.Address{}, fmt.Errorf("config: ledger address: %w", err)
	}
	feeReceiver, err := types.ParseAddress(g.FeeReceiver)
	if err != nil {
		return cfg, types.Address{}, fmt.Errorf("config: fee receiver: %w", err)
	}
	supply, err := parseAmount(g.InitialSupply)
	if err != nil {
		return cfg, types.Address{}, fmt.Errorf("config: initial supply: %w", err)
	}
	swapFee, err := parseAmount(g.SwapFee)
	if err != nil {
		return cfg, types.Address{}, fmt.Errorf("config: swap fee: %w", err)
	}
	admins, err := parseAddressList(g.AdminList)
	if err != nil {
		return cfg, types.Address{}, fmt.Errorf("config: admin list: %w", err)
	}
	minters, err := parseAddressList(g.MinterList)
	if err != nil {
		return cfg, types.Address{}, fmt.Errorf("config: minter list: %w", err)
	}
	chains := make([]*uint256.Int, 0, len(g.SupportedChains))
	for _, raw := range g.SupportedChains {
		chain, err := parseAmount(raw)
		if err != nil {
			return cfg, types.Address{}, fmt.Errorf("config: supported chain %q: %w", raw, err)
		}
		chains = append(chains, chain)
	}
	cfg = token.InitConfig{
		Name:            g.Name,
		Symbol:          g.Symbol,
		Decimals:        g.Decimals,
		InitialSupply:   supply,
		AdminList:       admins,
		MinterList:      minters,
		SwapFee:         swapFee,
		FeeReceiver:     feeReceiver,
		SupportedChains: chains,
		EnableMintBurn:  g.EnableMintBurn,
		LedgerAddress:   ledger,
	}
	return cfg, deployer, nil
}

func parseAmount(raw string) (*uint256.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return uint256.NewInt(0), nil
	}
	value, err := uint256.FromDecimal(trimmed)
	if err != nil {
		return nil, err
	}
	return value, nil
}

func parseAddressList(raw []string) ([]types.Address, error) {
	addrs := make([]types.Address, 0, len(raw))
	for _, entry := range raw {
		addr, err := types.ParseAddress(entry)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}
