package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeFile(t, "config.toml", "")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8645", cfg.ListenAddress)
	require.Equal(t, BackendLevelDB, cfg.Backend)
	require.Equal(t, "./genesis.toml", cfg.GenesisFile)
}

func TestLoadOverrides(t *testing.T) {
	path := writeFile(t, "config.toml", `
ListenAddress = "127.0.0.1:9000"
Backend = "bolt"
DataDir = "/var/lib/mctoken"
Environment = "production"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", cfg.ListenAddress)
	require.Equal(t, BackendBolt, cfg.Backend)
	require.Equal(t, "/var/lib/mctoken", cfg.DataDir)
	require.Equal(t, "production", cfg.Environment)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeFile(t, "config.toml", `Backend = "oracle"`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestGenesisInitConfig(t *testing.T) {
	path := writeFile(t, "genesis.toml", `
Name = "Multichain Token"
Symbol = "MCT"
Decimals = 9
InitialSupply = "1000000"
Deployer = "0x0000000000000000000000000000000000000001"
LedgerAddress = "0x00000000000000000000000000000000000000ff"
FeeReceiver = "0x0000000000000000000000000000000000000002"
SwapFee = "10"
MinterList = ["0x0000000000000000000000000000000000000003"]
SupportedChains = ["1", "131614895977039974"]
EnableMintBurn = true
`)
	gen, err := LoadGenesis(path)
	require.NoError(t, err)

	cfg, deployer, err := gen.InitConfig()
	require.NoError(t, err)
	require.Equal(t, "Multichain Token", cfg.Name)
	require.Equal(t, uint8(9), cfg.Decimals)
	require.True(t, cfg.InitialSupply.Eq(uint256.NewInt(1_000_000)))
	require.True(t, cfg.SwapFee.Eq(uint256.NewInt(10)))
	require.Len(t, cfg.MinterList, 1)
	require.Len(t, cfg.SupportedChains, 2)
	require.True(t, cfg.EnableMintBurn)
	require.Equal(t, byte(0x01), deployer[19])
	require.Equal(t, byte(0xff), cfg.LedgerAddress[19])
}

func TestGenesisEmptyAmountsDefaultToZero(t *testing.T) {
	path := writeFile(t, "genesis.toml", `
Name = "T"
Symbol = "T"
Deployer = "0x0000000000000000000000000000000000000001"
LedgerAddress = "0x00000000000000000000000000000000000000ff"
FeeReceiver = "0x0000000000000000000000000000000000000002"
`)
	gen, err := LoadGenesis(path)
	require.NoError(t, err)
	cfg, _, err := gen.InitConfig()
	require.NoError(t, err)
	require.True(t, cfg.InitialSupply.IsZero())
	require.True(t, cfg.SwapFee.IsZero())
}

func TestGenesisRejectsBadAddress(t *testing.T) {
	path := writeFile(t, "genesis.toml", `
Deployer = "not-an-address"
LedgerAddress = "0x00000000000000000000000000000000000000ff"
FeeReceiver = "0x0000000000000000000000000000000000000002"
`)
	gen, err := LoadGenesis(path)
	require.NoError(t, err)
	_, _, err = gen.InitConfig()
	require.Error(t, err)
}
