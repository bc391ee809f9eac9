package dbes

import (
	"encoding/xml"
	"time"

	"github.com/returns/backend/internal/domain/rma"
	"github.com/shopspring/decimal"
)

// DateLayout is the timestamp format used on the dbeS wire
const DateLayout = "2006-01-02 15:04:05"

// Amount is a decimal that always renders with exactly two fraction digits
// on the wire.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps a decimal as a wire amount
func NewAmount(d decimal.Decimal) Amount {
	return Amount{d}
}

// MarshalText renders the amount with two fraction digits
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.StringFixed(2)), nil
}

// Document is the XML payload describing one return request for the back
// office. Element names and order are fixed by the dbeS contract.
type Document struct {
	XMLName    xml.Name         `xml:"RMA"`
	ID         int64            `xml:"ID"`
	Number     string           `xml:"RMANr"`
	OrderID    int64            `xml:"OrderID"`
	CustomerID int64            `xml:"CustomerID"` // 0 for guests and anonymized customers
	Status     int              `xml:"Status"`
	TotalGross Amount           `xml:"TotalGross"`
	CreateDate string           `xml:"CreateDate"`
	Items      []ItemFragment   `xml:"Items>Item"`
	Address    *AddressFragment `xml:"Address,omitempty"`
}

// ItemFragment is one return position inside a Document
type ItemFragment struct {
	ProductID    int64   `xml:"ProductID"`
	VariationID  int64   `xml:"VariationID"` // 0 when the product has no variation
	Quantity     int     `xml:"Quantity"`
	ReasonID     int64   `xml:"ReasonID"`
	RefundAmount Amount  `xml:"RefundAmount"`
	Comment      *string `xml:"Comment,omitempty"`
}

// AddressFragment is the pickup address inside a Document
type AddressFragment struct {
	FirstName   string `xml:"FirstName"`
	LastName    string `xml:"LastName"`
	Street      string `xml:"Street"`
	HouseNumber string `xml:"HouseNumber,omitempty"`
	Zip         string `xml:"Zip"`
	City        string `xml:"City"`
	Country     string `xml:"Country"`
	Phone       string `xml:"Phone,omitempty"`
}

// NewDocument builds the wire document for a return request. addr may be nil
// when no pickup address was recorded.
func NewDocument(r *rma.RMA, addr *rma.ReturnAddress) *Document {
	doc := &Document{
		ID:         r.ID,
		Number:     r.Number,
		OrderID:    r.OrderID,
		Status:     int(r.Status),
		TotalGross: NewAmount(r.TotalGross),
		CreateDate: r.CreatedAt.Format(DateLayout),
		Items:      make([]ItemFragment, 0, len(r.Items)),
	}
	if r.CustomerID != nil {
		doc.CustomerID = *r.CustomerID
	}

	for _, item := range r.Items {
		frag := ItemFragment{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			ReasonID:     item.ReasonID,
			RefundAmount: NewAmount(item.RefundAmount),
			Comment:      item.Comment,
		}
		if item.VariationID != nil {
			frag.VariationID = *item.VariationID
		}
		doc.Items = append(doc.Items, frag)
	}

	if addr != nil {
		doc.Address = &AddressFragment{
			FirstName:   addr.FirstName,
			LastName:    addr.LastName,
			Street:      addr.Street,
			HouseNumber: addr.HouseNumber,
			Zip:         addr.Zip,
			City:        addr.City,
			Country:     addr.Country,
			Phone:       addr.Phone,
		}
	}

	return doc
}

// Marshal serializes the document with the XML declaration the back office
// expects.
func (d *Document) Marshal() (string, error) {
	body, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", err
	}
	return xml.Header + string(body), nil
}

// Unmarshal parses a wire document
func Unmarshal(payload string) (*Document, error) {
	var doc Document
	if err := xml.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// CreateTime parses the CreateDate field
func (d *Document) CreateTime() (time.Time, error) {
	return time.Parse(DateLayout, d.CreateDate)
}
