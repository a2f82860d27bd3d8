// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PaperRecord is a partial projection of one bibliographic record as the
// backend returns it. Every field except UID is optional; the client
// treats the record as an opaque bag and only inspects UID for caching
// and share links. JSON names follow the backend column names.
type PaperRecord struct {
	// UID is the stable record identifier (e.g. "WOS:000793512300004").
	UID string `json:"wos_uid"`

	Database     string `json:"database,omitempty"`
	SortDate     string `json:"sortdate,omitempty"`
	PubYear      string `json:"pubyear,omitempty"`
	PubMonth     string `json:"pubmonth,omitempty"`
	Volume       string `json:"vol,omitempty"`
	Issue        string `json:"issue,omitempty"`
	ArticleType  string `json:"article_type,omitempty"`
	PageBegin    string `json:"page_begin,omitempty"`
	PageEnd      string `json:"page_end,omitempty"`
	JournalTitle string `json:"journal_title_source,omitempty"`
	ArticleTitle string `json:"article_title,omitempty"`
	Heading      string `json:"heading,omitempty"`
	Subheadings  string `json:"subheadings,omitempty"`
	Keyword      string `json:"keyword,omitempty"`
	KeywordPlus  string `json:"keyword_plus,omitempty"`
	Abstract     string `json:"abstract_text,omitempty"`
	Languages    string `json:"languages,omitempty"`
	ISSN         string `json:"identifier_issn,omitempty"`
	DOI          string `json:"identifier_doi,omitempty"`
	PMID         string `json:"identifier_pmid,omitempty"`
	Authors      string `json:"author_fullname,omitempty"`
	Publisher    string `json:"publisher,omitempty"`
}

// Title returns the article title, falling back to the UID so every
// record has a non-empty display name.
func (p PaperRecord) Title() string {
	if p.ArticleTitle != "" {
		return p.ArticleTitle
	}
	return p.UID
}
