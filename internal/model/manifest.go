package model

// ManifestEntry records one downloaded attachment, keyed by its source URL.
// Entries are shared across decisions: a record references a PDF by URL and
// looks it up here rather than duplicating the text.
type ManifestEntry struct {
	URL           string `json:"url"`
	LocalPath     string `json:"local_path"`
	Filename      string `json:"filename,omitempty"`
	CaseReference string `json:"case_reference,omitempty"`
	GovUKPath     string `json:"gov_uk_path,omitempty"`
	PageCount     int    `json:"page_count,omitempty"`
	CharCount     int    `json:"char_count,omitempty"`
	OCRRequired   bool   `json:"ocr_required,omitempty"`
	DownloadedAt  string `json:"downloaded_at,omitempty"`
	Text          string `json:"text,omitempty"`
	Error         bool   `json:"error,omitempty"`
}

// Manifest is the persisted index of downloaded attachments.
type Manifest struct {
	PDFs     []*ManifestEntry `json:"pdfs"`
	Metadata map[string]any   `json:"metadata"`
}

// Index builds a URL-keyed lookup over the manifest entries. Later entries
// never displace earlier ones: the URL is a unique key across the manifest.
func (m *Manifest) Index() map[string]*ManifestEntry {
	idx := make(map[string]*ManifestEntry, len(m.PDFs))
	for _, e := range m.PDFs {
		if e.URL == "" {
			continue
		}
		if _, ok := idx[e.URL]; !ok {
			idx[e.URL] = e
		}
	}
	return idx
}
