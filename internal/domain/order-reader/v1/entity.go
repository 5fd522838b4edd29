package orderreaderv1

import (
	"encoding/json"
	"fmt"

	orderbookv1 "github.com/quantonr/exchange/internal/domain/orderbook/v1"
)

// Action is the operation a client request asks the engine to perform.
type Action string

const (
	// ActionPlace submits a new order.
	ActionPlace Action = "place"
	// ActionCancel removes a resting order.
	ActionCancel Action = "cancel"
	// ActionModifyPrice reprices a resting order (queue position is lost).
	ActionModifyPrice Action = "modify_price"
	// ActionModifySize resizes a resting order in place.
	ActionModifySize Action = "modify_size"
)

// OrderRequest is the wire form of one client instruction. Prices travel as
// decimal strings with two fractional digits; a missing price on a place
// request denotes a market order.
type OrderRequest struct {
	Action   Action                `json:"action"`
	Symbol   string                `json:"symbol"`
	Side     orderbookv1.Side      `json:"side,omitempty"`
	Type     orderbookv1.OrderType `json:"type,omitempty"`
	Size     int64                 `json:"size,omitempty"`
	Price    string                `json:"price,omitempty"`
	ClientID uint32                `json:"clientID,omitempty"`
	OrderID  uint64                `json:"orderID,omitempty"`

	// Offset is the position of this request in the order stream.
	Offset int64 `json:"-"`
}

// Intent converts a place request into a validated order intent, enforcing
// the presence rules: a limit order must carry a price, a market order must
// not.
func (r *OrderRequest) Intent() (orderbookv1.OrderIntent, error) {
	intent := orderbookv1.OrderIntent{
		Side:     r.Side,
		Type:     r.Type,
		Shares:   r.Size,
		ClientID: r.ClientID,
	}

	switch r.Type {
	case orderbookv1.OrderTypeLimit:
		if r.Price == "" {
			return orderbookv1.OrderIntent{}, fmt.Errorf("%w: limit order without a price", orderbookv1.ErrInvalidPrice)
		}
		price, err := orderbookv1.PriceFromDecimal(r.Price)
		if err != nil {
			return orderbookv1.OrderIntent{}, err
		}
		intent.Price = price
	case orderbookv1.OrderTypeMarket:
		if r.Price != "" {
			return orderbookv1.OrderIntent{}, fmt.Errorf("%w: got %q", orderbookv1.ErrPriceOnMarket, r.Price)
		}
		intent.Price = orderbookv1.MarketPrice
	default:
		return orderbookv1.OrderIntent{}, fmt.Errorf("invalid order type %q", r.Type)
	}

	if err := intent.Validate(); err != nil {
		return orderbookv1.OrderIntent{}, err
	}
	return intent, nil
}

// PriceCents parses the request price for a modify-price request.
func (r *OrderRequest) PriceCents() (int32, error) {
	return orderbookv1.PriceFromDecimal(r.Price)
}

// FromBytes parses a wire message into an OrderRequest.
func FromBytes(data []byte) (*OrderRequest, error) {
	var request OrderRequest
	if err := json.Unmarshal(data, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

// ToBytes converts the request to its wire form.
func (r *OrderRequest) ToBytes() []byte {
	data, err := json.Marshal(r)
	if err != nil {
		return nil
	}
	return data
}
