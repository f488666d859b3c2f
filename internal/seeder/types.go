package seeder

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type ConfigType string

const (
	ConfigTypeDefault  ConfigType = "default"
	ConfigTypeProposer ConfigType = "proposer"
)

// Address is a 20-byte execution-layer account. It renders as 0x followed by
// 40 uppercase hex characters and carries no checksum.
type Address common.Address

func (a Address) String() string {
	return "0x" + strings.ToUpper(hex.EncodeToString(a[:]))
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if !strings.HasPrefix(s, "0x") || !common.IsHexAddress(s) {
		return fmt.Errorf("invalid address %q", s)
	}
	*a = Address(common.HexToAddress(s))
	return nil
}

func (a Address) MarshalYAML() (interface{}, error) {
	return a.String(), nil
}

// Relay is a relay override keyed by relay name. Generated configs always
// carry an empty relay map.
type Relay struct {
	PublicKey    string   `json:"public_key" yaml:"public_key"`
	FeeRecipient *Address `json:"fee_recipient,omitempty" yaml:"fee_recipient,omitempty"`
	GasLimit     string   `json:"gas_limit,omitempty" yaml:"gas_limit,omitempty"`
	MinValue     string   `json:"min_value,omitempty" yaml:"min_value,omitempty"`
}

// ExecutionConfig is the document stored in the config column. ResetRelays
// and DefaultConfigs are only set on proposers bound to default configs.
type ExecutionConfig struct {
	FeeRecipient   Address          `json:"fee_recipient" yaml:"fee_recipient"`
	GasLimit       int              `json:"gas_limit" yaml:"gas_limit"`
	MinValue       float64          `json:"min_value" yaml:"min_value"`
	Grace          int              `json:"grace" yaml:"grace"`
	ResetRelays    *bool            `json:"reset_relays,omitempty" yaml:"reset_relays,omitempty"`
	Relays         map[string]Relay `json:"relays" yaml:"relays"`
	DefaultConfigs []string         `json:"default_configs,omitempty" yaml:"default_configs,omitempty"`
}

type Record struct {
	ID     string          `json:"config_id" yaml:"config_id"`
	Type   ConfigType      `json:"config_type" yaml:"config_type"`
	Config ExecutionConfig `json:"config" yaml:"config"`
}

// Plan sets the record counts of a run. Proposers is the total number of
// proposer configs; the first BoundProposers of them reference defaults.
type Plan struct {
	Defaults       int
	BoundProposers int
	Proposers      int
}

func DefaultPlan() Plan {
	return Plan{Defaults: 10, BoundProposers: 20, Proposers: 100000}
}

func (p Plan) Total() int {
	return p.Defaults + p.Proposers
}

type Result struct {
	Defaults            int
	BoundProposers      int
	StandaloneProposers int
	Duration            time.Duration
}

func (r *Result) Total() int {
	return r.Defaults + r.BoundProposers + r.StandaloneProposers
}
