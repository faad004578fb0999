package parking

type Receipt struct {
	Method    string
	Amount    float64
	Reference string
}

type PaymentMethod interface {
	Name() string
	Settle(fee Fee) (Receipt, error)
}
