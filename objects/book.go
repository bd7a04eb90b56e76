package objects

import (
	"reflect"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Condition string

const (
	NewCondition  Condition = "new"
	UsedCondition Condition = "used"
)

func (c Condition) IsValid() bool {
	return c == NewCondition || c == UsedCondition
}

type Book struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name              string             `json:"name" bson:"name" validate:"required"`
	Author            string             `json:"author" bson:"author" validate:"required"`
	YearOfPublication int                `json:"yearOfPublication" bson:"yearOfPublication"`
	Price             float64            `json:"price" bson:"price" validate:"gte=0"`
	Discount          float64            `json:"discount" bson:"discount" validate:"gte=0"`
	NumberOfPages     int                `json:"numberOfPages" bson:"numberOfPages" validate:"gte=1"`
	Condition         Condition          `json:"condition" bson:"condition" validate:"required,oneof=new used"`
	Description       string             `json:"description,omitempty" bson:"description,omitempty"`
}

func (b Book) GetID() string {
	return b.ID.Hex()
}

func (b Book) IsNil() bool {
	return reflect.ValueOf(b).IsZero()
}

// BookInput is the body of a create request. Pointer fields tell absent values from zero values.
type BookInput struct {
	Name              *string    `json:"name" validate:"required"`
	Author            *string    `json:"author" validate:"required"`
	YearOfPublication *int       `json:"yearOfPublication" validate:"required"`
	Price             *float64   `json:"price" validate:"required"`
	Discount          *float64   `json:"discount"`
	NumberOfPages     *int       `json:"numberOfPages" validate:"required"`
	Condition         *Condition `json:"condition" validate:"required"`
	Description       *string    `json:"description"`
}

// Book checks that every required field is present and converts the input to a valid Book.
func (in BookInput) Book() (Book, error) {

	if err := Validate(in); err != nil {
		return Book{}, err
	}

	book := Book{
		Name:              *in.Name,
		Author:            *in.Author,
		YearOfPublication: *in.YearOfPublication,
		Price:             *in.Price,
		NumberOfPages:     *in.NumberOfPages,
		Condition:         *in.Condition,
	}

	if in.Discount != nil {
		book.Discount = *in.Discount
	}

	if in.Description != nil {
		book.Description = *in.Description
	}

	if err := Validate(book); err != nil {
		return Book{}, err
	}

	return book, nil
}

// BookChanges holds the mutable fields of an update request. Only non-nil fields are written.
type BookChanges struct {
	Name              *string    `json:"name,omitempty" bson:"name,omitempty"`
	Author            *string    `json:"author,omitempty" bson:"author,omitempty"`
	YearOfPublication *int       `json:"yearOfPublication,omitempty" bson:"yearOfPublication,omitempty"`
	Price             *float64   `json:"price,omitempty" bson:"price,omitempty"`
	Discount          *float64   `json:"discount,omitempty" bson:"discount,omitempty"`
	NumberOfPages     *int       `json:"numberOfPages,omitempty" bson:"numberOfPages,omitempty"`
	Condition         *Condition `json:"condition,omitempty" bson:"condition,omitempty"`
	Description       *string    `json:"description,omitempty" bson:"description,omitempty"`
}

func (c BookChanges) IsEmpty() bool {
	return reflect.ValueOf(c).IsZero()
}

// Apply returns a copy of book with the supplied changes written over it.
func (c BookChanges) Apply(book Book) Book {

	if c.Name != nil {
		book.Name = *c.Name
	}

	if c.Author != nil {
		book.Author = *c.Author
	}

	if c.YearOfPublication != nil {
		book.YearOfPublication = *c.YearOfPublication
	}

	if c.Price != nil {
		book.Price = *c.Price
	}

	if c.Discount != nil {
		book.Discount = *c.Discount
	}

	if c.NumberOfPages != nil {
		book.NumberOfPages = *c.NumberOfPages
	}

	if c.Condition != nil {
		book.Condition = *c.Condition
	}

	if c.Description != nil {
		book.Description = *c.Description
	}

	return book
}
