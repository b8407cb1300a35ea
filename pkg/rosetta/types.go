package rosetta

// NetworkIdentifier identifies a blockchain network as reported by a Rosetta
// backend's /network/list call. The gateway treats it as an opaque token: it
// is inspected structurally during a probe and echoed to clients, never
// interpreted.
type NetworkIdentifier struct {
	// Blockchain is the blockchain name (e.g., "bitcoin").
	Blockchain string `json:"blockchain"`

	// Network is the network name (e.g., "mainnet", "testnet").
	Network string `json:"network"`

	// SubNetworkIdentifier optionally scopes the network further
	// (e.g., a shard identifier).
	SubNetworkIdentifier *SubNetworkIdentifier `json:"sub_network_identifier,omitempty"`
}

// SubNetworkIdentifier optionally identifies a sub-network within a network.
type SubNetworkIdentifier struct {
	// Network is the sub-network name.
	Network string `json:"network"`

	// Metadata carries backend-defined sub-network metadata.
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NetworkListResponse is the response shape of the Rosetta /network/list call.
type NetworkListResponse struct {
	// NetworkIdentifiers is the list of networks the backend serves.
	NetworkIdentifiers []NetworkIdentifier `json:"network_identifiers"`
}
