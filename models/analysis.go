package models

// AnalysisSection is one titled block of the offer-document analysis template
type AnalysisSection struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

// AnalysisTemplate is the static DRHP/RHP-focused analysis skeleton for a
// selected company, plus the best filing link the locator could resolve.
type AnalysisTemplate struct {
	CompanyName string            `json:"company_name"`
	DocumentURL string            `json:"document_url"`
	Resolved    bool              `json:"resolved"` // false when DocumentURL is the generic search link
	Sections    []AnalysisSection `json:"sections"`
	Note        string            `json:"note"`
}

// DocumentLookup is the memoized outcome of one document-link resolution
type DocumentLookup struct {
	URL      string `json:"url"`
	Resolved bool   `json:"resolved"`
}
