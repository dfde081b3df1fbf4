package token

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/multitoken-xyz/go-multitoken/delegate"
	"github.com/multitoken-xyz/go-multitoken/ledger"
	"github.com/multitoken-xyz/go-multitoken/principal"
	"github.com/multitoken-xyz/go-multitoken/transfer"
)

// Call signatures of the receiver-acknowledgement protocol, used when
// a receiver is itself a proxy serviced through a delegate registry.
const (
	SigTransferReceived      = "onTransferReceived(operator,from,id,quantity,data)"
	SigBatchTransferReceived = "onBatchTransferReceived(operator,from,ids,quantities,data)"
)

// ReceiverSignatures is the signature set a receiver delegate must
// register to service acknowledgement calls.
var ReceiverSignatures = []string{SigTransferReceived, SigBatchTransferReceived}

// ProxyReceiver implements the receiver-acknowledgement protocol by
// forwarding through a delegate registry, so a stable receiver
// identity can swap its backing acceptance logic. When the delegate
// link is revoked, acknowledgement calls fail and transfers to the
// proxy fail closed.
type ProxyReceiver struct {
	registry *delegate.Registry
}

// NewProxyReceiver creates a proxy receiver forwarding through the
// given registry.
func NewProxyReceiver(registry *delegate.Registry) *ProxyReceiver {
	return &ProxyReceiver{registry: registry}
}

// OnTransferReceived implements transfer.Receiver.
func (p *ProxyReceiver) OnTransferReceived(operator, from principal.Principal, id ledger.AssetID, quantity *uint256.Int, data []byte) (transfer.Ack, error) {
	result, err := p.registry.Dispatch(operator, SigTransferReceived, from, id, quantity, data)
	if err != nil {
		return transfer.Ack{}, err
	}
	return ackOf(result)
}

// OnBatchTransferReceived implements transfer.Receiver.
func (p *ProxyReceiver) OnBatchTransferReceived(operator, from principal.Principal, ids []ledger.AssetID, quantities []*uint256.Int, data []byte) (transfer.Ack, error) {
	result, err := p.registry.Dispatch(operator, SigBatchTransferReceived, from, ids, quantities, data)
	if err != nil {
		return transfer.Ack{}, err
	}
	return ackOf(result)
}

func ackOf(result any) (transfer.Ack, error) {
	ack, ok := result.(transfer.Ack)
	if !ok {
		return transfer.Ack{}, fmt.Errorf("delegate returned %T, want transfer.Ack", result)
	}
	return ack, nil
}

var _ transfer.Receiver = (*ProxyReceiver)(nil)
