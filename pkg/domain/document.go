package domain

// DocumentType identifies one of the register document categories offered by
// the portal for a company row.
type DocumentType string

const (
	// DocumentTypeAD is the current register printout (Aktueller Abdruck).
	DocumentTypeAD DocumentType = "AD"
	// DocumentTypeCD is the chronological printout (Chronologischer Abdruck).
	DocumentTypeCD DocumentType = "CD"
	// DocumentTypeHD is the historical printout (Historischer Abdruck).
	DocumentTypeHD DocumentType = "HD"
	// DocumentTypeDK is the document view (Dokumentenansicht).
	DocumentTypeDK DocumentType = "DK"
	// DocumentTypeUT is the company record (Unternehmenstraegerdaten).
	DocumentTypeUT DocumentType = "UT"
	// DocumentTypeVO covers publications (Veroeffentlichungen).
	DocumentTypeVO DocumentType = "VO"
	// DocumentTypeSI covers structured register content (Strukturierter Inhalt).
	DocumentTypeSI DocumentType = "SI"
)

// AllDocumentTypes lists every supported document type in the order the portal
// presents them.
func AllDocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentTypeAD,
		DocumentTypeCD,
		DocumentTypeHD,
		DocumentTypeDK,
		DocumentTypeUT,
		DocumentTypeVO,
		DocumentTypeSI,
	}
}

// ParseDocumentType validates a document type code. It returns false for
// unknown codes.
func ParseDocumentType(s string) (DocumentType, bool) {
	for _, dt := range AllDocumentTypes() {
		if string(dt) == s {
			return dt, true
		}
	}

	return "", false
}

// Document is a register document fetched for a resolved company, converted to
// markdown for downstream consumers. The original PDF is archived on disk and
// referenced by PDFPath.
type Document struct {
	// Type is the register document category.
	Type DocumentType `json:"type"`
	// CompanyName is the name of the company the document belongs to.
	CompanyName string `json:"companyName"`
	// Markdown is the extracted document content in markdown form.
	Markdown string `json:"markdown"`
	// PDFPath is the archive location of the downloaded PDF, relative to the
	// archive root. Empty when archiving was disabled.
	PDFPath string `json:"pdfPath,omitempty"`
}
