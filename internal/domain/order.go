package domain

import "time"

type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// OrderLine is one purchased product the customer will be asked to review.
type OrderLine struct {
	ProductID int64  `json:"product_id"`
	Reference string `json:"reference"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url"`
	URL       string `json:"url"`
}

// Order is what the storefront hands over when an order is validated.
type Order struct {
	ID        int64       `json:"id"`
	Reference string      `json:"reference"`
	Language  string      `json:"language"` // ISO code of the shop language
	CreatedAt time.Time   `json:"created_at"`
	Customer  Customer    `json:"customer"`
	Lines     []OrderLine `json:"lines"`
}

type SubmissionStatus string

const (
	SubmissionSent   SubmissionStatus = "sent"
	SubmissionFailed SubmissionStatus = "failed"
)

// Submission is the outcome of posting one order to RateCompass.
type Submission struct {
	OrderID     int64
	OrderNumber string
	Status      SubmissionStatus
	HTTPStatus  *int
	Error       *string
	Payload     []byte // JSON body as posted
}
