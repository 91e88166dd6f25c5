package model

type CartLine struct {
	ID        int64 `db:"id" json:"id"`
	UserID    int64 `db:"user_id" json:"user_id"`
	ProductID int64 `db:"perfume_id" json:"perfume_id"`
	Quantity  int   `db:"quantity" json:"quantity"`
	AddedAt   int64 `db:"added_at" json:"added_at"` // unix millis
}

// CartItem is a cart line joined with the product it refers to.
type CartItem struct {
	CartLine
	Name      string  `db:"name" json:"name"`
	Brand     string  `db:"brand" json:"brand"`
	UnitPrice int64   `db:"price" json:"unit_price"`
	ImageURI  *string `db:"image_uri" json:"image_uri"`
	Stock     int     `db:"stock" json:"stock"`
}

func (i CartItem) Subtotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}
