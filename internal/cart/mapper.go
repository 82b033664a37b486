package cart

import "encoding/json"

// wireItem is the persisted layout of a line item: a flat record whose
// validity verdict travels as the loose optional flags older payloads carry
// (is_available, has_enough_stock, max_quantity).
type wireItem struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Price          int64  `json:"price"`
	Quantity       int    `json:"quantity"`
	Image          string `json:"image"`
	IsAvailable    *bool  `json:"is_available,omitempty"`
	HasEnoughStock *bool  `json:"has_enough_stock,omitempty"`
	MaxQuantity    *int   `json:"max_quantity,omitempty"`
}

// EncodeItems serializes items into the persisted JSON array layout.
func EncodeItems(items []LineItem) ([]byte, error) {
	records := make([]wireItem, 0, len(items))
	for _, it := range items {
		records = append(records, toWire(it))
	}
	return json.Marshal(records)
}

// DecodeItems parses a persisted payload back into line items. The result is
// not sanitized; callers feed it through Store.Replace (or Sanitize) so that
// missing quantities drop the item rather than producing a zero-quantity
// line. A malformed payload returns an error and no items.
func DecodeItems(payload []byte) ([]LineItem, error) {
	var records []wireItem
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, err
	}

	items := make([]LineItem, 0, len(records))
	for _, r := range records {
		items = append(items, fromWire(r))
	}
	return items, nil
}

func toWire(it LineItem) wireItem {
	r := wireItem{
		ID:       it.ID,
		Name:     it.Name,
		Price:    it.Price,
		Quantity: it.Quantity,
		Image:    it.Image,
	}

	v := it.Validity
	if v == nil {
		return r
	}

	switch v.Availability {
	case AvailabilityAvailable:
		r.IsAvailable = boolPtr(true)
	case AvailabilityUnavailable:
		r.IsAvailable = boolPtr(false)
	}

	switch v.Stock {
	case StockSufficient:
		r.HasEnoughStock = boolPtr(true)
	case StockLimited:
		r.HasEnoughStock = boolPtr(false)
		maxQty := v.MaxQuantity
		r.MaxQuantity = &maxQty
	}

	return r
}

func fromWire(r wireItem) LineItem {
	it := LineItem{
		ID:       r.ID,
		Name:     r.Name,
		Price:    r.Price,
		Quantity: r.Quantity,
		Image:    r.Image,
	}

	if r.IsAvailable == nil && r.HasEnoughStock == nil && r.MaxQuantity == nil {
		return it
	}

	v := Validity{Availability: AvailabilityUnknown, Stock: StockUnknown}

	if r.IsAvailable != nil {
		if *r.IsAvailable {
			v.Availability = AvailabilityAvailable
		} else {
			v.Availability = AvailabilityUnavailable
		}
	}

	if r.HasEnoughStock != nil {
		if *r.HasEnoughStock {
			v.Stock = StockSufficient
		} else {
			v.Stock = StockLimited
			if r.MaxQuantity != nil {
				v.MaxQuantity = *r.MaxQuantity
			}
		}
	}

	it.Validity = &v
	return it
}

func boolPtr(b bool) *bool {
	return &b
}
