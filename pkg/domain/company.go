package domain

// Company is one row scraped from the register search results. The fields are
// raw portal output: the name may carry registry noise and the registration
// number may be missing or oddly formatted. Candidates keep their discovery
// order because the resolver breaks score ties by original index.
type Company struct {
	// Name is the company name exactly as it appeared on the results page.
	Name string `json:"name"`
	// RegistrationNumber is the raw registration string for the row, e.g.
	// "HRB 259502" or "259 502". Empty when the row carried no number.
	RegistrationNumber string `json:"registrationNumber,omitempty"`
	// Court is the register court (Amtsgericht) listed for the row, when known.
	Court string `json:"court,omitempty"`
	// DocumentLinks holds the portal link ids for downloadable documents on
	// this row, keyed by document type code (AD, CD, ...).
	DocumentLinks map[DocumentType]string `json:"documentLinks,omitempty"`
}
