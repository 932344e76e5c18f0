package fields

// Definition describes one canonical field the extraction pipeline looks
// for, with the prompt-facing description and examples.
type Definition struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Examples    []string `json:"examples,omitempty"`
}

// Definitions returns the canonical extraction field definitions in
// vocabulary order.
func Definitions() []Definition {
	return []Definition{
		{
			Name:        KeyCompanyName,
			Description: "The legal name of the company",
			Type:        "text",
			Examples:    []string{"Acme Corporation", "Tech Solutions Inc.", "ABC Company LLC"},
		},
		{
			Name:        KeyEIN,
			Description: "Employer Identification Number (EIN) or Tax ID",
			Type:        "text",
			Examples:    []string{"12-3456789", "98-7654321"},
		},
		{
			Name:        KeyAddressLine1,
			Description: "Street address (first line)",
			Type:        "address",
			Examples:    []string{"123 Main Street", "456 Business Blvd", "789 Corporate Way"},
		},
		{
			Name:        KeyAddressLine2,
			Description: "Street address (second line, optional)",
			Type:        "address",
			Examples:    []string{"Suite 100", "Floor 5", "Building B"},
		},
		{
			Name:        KeyCity,
			Description: "City name",
			Type:        "text",
			Examples:    []string{"New York", "San Francisco", "Chicago"},
		},
		{
			Name:        KeyState,
			Description: "State abbreviation or full name",
			Type:        "text",
			Examples:    []string{"NY", "California", "TX"},
		},
		{
			Name:        KeyZipCode,
			Description: "ZIP or postal code",
			Type:        "text",
			Examples:    []string{"10001", "94102", "60601"},
		},
		{
			Name:        KeyPhone,
			Description: "Phone number",
			Type:        "text",
			Examples:    []string{"(555) 123-4567", "555-123-4567", "+1-555-123-4567"},
		},
		{
			Name:        KeyEmail,
			Description: "Email address",
			Type:        "text",
			Examples:    []string{"contact@company.com", "info@example.org"},
		},
		{
			Name:        KeyWebsite,
			Description: "Company website URL",
			Type:        "text",
			Examples:    []string{"https://www.company.com", "www.example.org"},
		},
		{
			Name:        KeyIncorporationDate,
			Description: "Date of incorporation",
			Type:        "date",
			Examples:    []string{"2020-01-15", "January 15, 2020", "01/15/2020"},
		},
		{
			Name:        KeyStateOfIncorporation,
			Description: "State where company is incorporated",
			Type:        "text",
			Examples:    []string{"Delaware", "DE", "California", "CA"},
		},
	}
}
