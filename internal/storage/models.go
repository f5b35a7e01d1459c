package storage

// Expense mirrors a row of the expenses table. Amounts are integer cents and
// timestamps are RFC 3339 text in UTC.
type Expense struct {
	ID                  int64
	Period              string
	CondominioCents     int64
	PlanoSaudeCents     int64
	EletricidadeCents   int64
	GasCents            int64
	InternetCents       int64
	CelularCents        int64
	CreditCardCents     int64
	TotalCents          int64
	AmountToPayCents    int64
	AmountToPayExplicit bool
	CreatedAt           string
	UpdatedAt           string
}
