package payid

// PaymentNetwork selects which address set a PayID server returns.
//
// The general form of the negotiated media type is
//
//	application/{payment-network}-{environment}+json
//
// The special value NetworkAll ("payid") asks for every address associated
// with the PayID. Values outside the constants below are sent verbatim.
type PaymentNetwork string

const (
	NetworkXRPLTestnet        PaymentNetwork = "xrpl-testnet"
	NetworkXRPLDevnet         PaymentNetwork = "xrpl-devnet"
	NetworkXRPLMainnet        PaymentNetwork = "xrpl-mainnet"
	NetworkBTCTestnet         PaymentNetwork = "btc-testnet"
	NetworkBTCMainnet         PaymentNetwork = "btc-mainnet"
	NetworkETHRinkeby         PaymentNetwork = "eth-rinkeby"
	NetworkETHRopsten         PaymentNetwork = "eth-ropsten"
	NetworkETHMainnet         PaymentNetwork = "eth-mainnet"
	NetworkInterledgerMainnet PaymentNetwork = "interledger-mainnet"
	NetworkInterledgerTestnet PaymentNetwork = "interledger-testnet"
	NetworkACH                PaymentNetwork = "ach"
	NetworkAll                PaymentNetwork = "payid"
)

// KnownNetworks lists the well-known payment networks in display order.
var KnownNetworks = []PaymentNetwork{
	NetworkXRPLTestnet,
	NetworkXRPLDevnet,
	NetworkXRPLMainnet,
	NetworkBTCTestnet,
	NetworkBTCMainnet,
	NetworkETHRinkeby,
	NetworkETHRopsten,
	NetworkETHMainnet,
	NetworkInterledgerMainnet,
	NetworkInterledgerTestnet,
	NetworkACH,
	NetworkAll,
}

// MediaType returns the Accept header value for the network.
func (n PaymentNetwork) MediaType() string {
	return "application/" + string(n) + "+json"
}

// IsKnown reports whether n is one of KnownNetworks.
func (n PaymentNetwork) IsKnown() bool {
	for _, k := range KnownNetworks {
		if n == k {
			return true
		}
	}
	return false
}

// AddressDetailsType discriminates the AddressDetails variant of a
// PaymentInformation. Unrecognised server values are preserved as-is.
type AddressDetailsType string

const (
	CryptoAddressDetailsType AddressDetailsType = "CryptoAddressDetails"
	AchAddressDetailsType    AddressDetailsType = "AchAddressDetails"
)

// IsKnown reports whether t is a recognised address details type.
func (t AddressDetailsType) IsKnown() bool {
	return t == CryptoAddressDetailsType || t == AchAddressDetailsType
}
