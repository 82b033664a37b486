package cart

// Availability reports whether the product behind a line item can still be
// sold. It is filled in by the external stock validator, never computed here.
type Availability string

const (
	AvailabilityUnknown     Availability = "UNKNOWN"
	AvailabilityAvailable   Availability = "AVAILABLE"
	AvailabilityUnavailable Availability = "UNAVAILABLE"
)

// StockLevel reports how the requested quantity relates to remaining stock.
type StockLevel string

const (
	StockUnknown    StockLevel = "UNKNOWN"
	StockSufficient StockLevel = "SUFFICIENT"
	StockLimited    StockLevel = "LIMITED"
)

// Validity is the validator's verdict on a line item. MaxQuantity is only
// meaningful when Stock is StockLimited.
type Validity struct {
	Availability Availability `json:"availability"`
	Stock        StockLevel   `json:"stock"`
	MaxQuantity  int          `json:"max_quantity,omitempty"`
}

// LineItem is one product's presence in the cart. ID is the natural key;
// a cart holds at most one LineItem per ID.
type LineItem struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Price    int64     `json:"price"`
	Quantity int       `json:"quantity"`
	Image    string    `json:"image"`
	Validity *Validity `json:"validity,omitempty"`
}

// Candidate is the product shape accepted by AddItem. Quantity is implied:
// a new item always starts at 1.
type Candidate struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Image string `json:"image"`
}
