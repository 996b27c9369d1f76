package openlibrary

// SearchResponse is the body of /search.json
type SearchResponse struct {
	NumFound      int   `json:"numFound"`
	Start         int   `json:"start"`
	NumFoundExact bool  `json:"numFoundExact,omitempty"`
	Docs          []Doc `json:"docs"`
}

// Doc is one work in a search response. Only the requested fields are set.
type Doc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name,omitempty"`
	FirstPublishYear *int     `json:"first_publish_year,omitempty"`
	EditionCount     *int     `json:"edition_count,omitempty"`
	CoverI           *int64   `json:"cover_i,omitempty"`
}
