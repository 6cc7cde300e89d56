package domain

// Condition is the physical state of a listed book.
type Condition string

const (
	ConditionNew  Condition = "new"  // yangi
	ConditionGood Condition = "good" // yaxshi
	ConditionBad  Condition = "bad"  // yomon
)

var conditionLabels = map[Condition]string{
	ConditionNew:  "Yangi",
	ConditionGood: "Yaxshi",
	ConditionBad:  "Yomon",
}

func (c Condition) Valid() bool {
	_, ok := conditionLabels[c]
	return ok
}

// Label is the Uzbek display name.
func (c Condition) Label() string {
	if l, ok := conditionLabels[c]; ok {
		return l
	}
	return string(c)
}

// Conditions lists the enum in display order.
func Conditions() []Condition {
	return []Condition{ConditionNew, ConditionGood, ConditionBad}
}

// UnknownContact fills seller contact fields when the seller row is gone.
const UnknownContact = "Noma'lum"

type SellerContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type Book struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Author      string    `db:"author" json:"author"`
	Description string    `db:"description" json:"description"`
	Price       int64     `db:"price" json:"price"`
	Condition   Condition `db:"condition" json:"condition"`
	Category    string    `db:"category" json:"category"`
	City        string    `db:"city" json:"city"`
	ImageURL    string    `db:"image_url" json:"imageUrl"`
	SellerID    string    `db:"seller_id" json:"sellerId"`
	CreatedAt   string    `db:"created_at" json:"createdAt"`
	UpdatedAt   string    `db:"updated_at" json:"updatedAt,omitempty"`

	// populated by a join at read time, never stored
	SellerContact *SellerContact `db:"-" json:"sellerContact,omitempty"`
}
