package state

import ethcrypto "github.com/ethereum/go-ethereum/crypto"

var (
	metadataKeyRaw       = []byte("token/metadata")
	supplyKeyRaw         = []byte("token/supply")
	balancePrefix        = []byte("token/balance:")
	allowancePrefix      = []byte("token/allowance:")
	badgePrefix          = []byte("token/badge:")
	mintIDPrefix         = []byte("token/mintid:")
	swapFeeKeyRaw        = []byte("config/swap-fee")
	feeReceiverKeyRaw    = []byte("config/fee-receiver")
	mintBurnKeyRaw       = []byte("config/mint-burn-enabled")
	ledgerAddressKeyRaw  = []byte("config/ledger-address")
	initializedKeyRaw    = []byte("config/initialized")
	requestCounterKeyRaw = []byte("bridge/request-counter")
	chainPrefix          = []byte("bridge/chains:")
	redeemTokenPrefix    = []byte("redeem/tokens:")
)

// All persisted keys are the Keccak256 hash of a short human-readable prefix
// followed by the raw item key. Hashing keeps key length uniform regardless of
// the backend.
func hashKey(prefix []byte, item []byte) []byte {
	buf := make([]byte, 0, len(prefix)+len(item))
	buf = append(buf, prefix...)
	buf = append(buf, item...)
	return ethcrypto.Keccak256(buf)
}

func balanceKey(addr []byte) []byte { return hashKey(balancePrefix, addr) }

func allowanceKey(owner, spender []byte) []byte {
	buf := make([]byte, 0, len(owner)+1+len(spender))
	buf = append(buf, owner...)
	buf = append(buf, ':')
	buf = append(buf, spender...)
	return hashKey(allowancePrefix, buf)
}

func badgeKey(addr []byte) []byte { return hashKey(badgePrefix, addr) }

func mintIDKey(id string) []byte { return hashKey(mintIDPrefix, []byte(id)) }
