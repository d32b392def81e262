package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// LeadTime is a supplier's delivery estimate in days. The backend stores it
// as a string, so both "7" and 7 decode; an empty string decodes to 0.
type LeadTime int

func (l *LeadTime) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*l = LeadTime(n)
		return nil
	}

	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("models: leadTimeDays: %w", err)
	}
	if s == nil || strings.TrimSpace(*s) == "" {
		*l = 0
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*s))
	if err != nil {
		return fmt.Errorf("models: leadTimeDays %q is not a number", *s)
	}
	*l = LeadTime(n)
	return nil
}

// MarshalJSON writes the string form the backend stores.
func (l LeadTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.Itoa(int(l)))
}

// Supplier is a vendor record.
type Supplier struct {
	ID            int64    `json:"id,omitempty"`
	Name          string   `json:"name"          validate:"required"`
	ContactPerson string   `json:"contactPerson" validate:"required"`
	Email         string   `json:"email"         validate:"required,email"`
	Phone         string   `json:"phone"`
	LeadTimeDays  LeadTime `json:"leadTimeDays"  validate:"gte=0"`
	PaymentTerms  string   `json:"paymentTerms"`
}
