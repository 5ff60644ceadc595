package domain

import (
	"fmt"
	"strings"
)

type Network string

const (
	NetworkDevnet   Network = "devnet"
	NetworkTestnet  Network = "testnet"
	NetworkMainnet  Network = "mainnet"
	NetworkLocalnet Network = "localnet"
)

const DefaultNetwork = NetworkDevnet

func (n Network) IsValid() bool {
	switch n {
	case NetworkDevnet, NetworkTestnet, NetworkMainnet, NetworkLocalnet:
		return true
	default:
		return false
	}
}

func (n Network) String() string {
	return string(n)
}

// FrameworkRevision is the git revision the framework dependency is pinned to
// before building for this network.
func (n Network) FrameworkRevision() string {
	return "framework/" + string(n)
}

// FullnodeURL is the public JSON-RPC endpoint for the network.
func (n Network) FullnodeURL() string {
	switch n {
	case NetworkLocalnet:
		return "http://127.0.0.1:9000"
	default:
		return fmt.Sprintf("https://fullnode.%s.sui.io:443", n)
	}
}

func ParseNetwork(value string) (Network, error) {
	parsed := Network(strings.ToLower(strings.TrimSpace(value)))
	if parsed == "" {
		return "", fmt.Errorf("network is required")
	}
	if !parsed.IsValid() {
		return "", fmt.Errorf("invalid network: %s", value)
	}
	return parsed, nil
}

func NormalizeNetwork(n Network) Network {
	if n.IsValid() {
		return n
	}
	return DefaultNetwork
}
