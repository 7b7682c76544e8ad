package crossref

// worksResponse is the Crossref works endpoint response envelope.
type worksResponse struct {
	Message worksMessage `json:"message"`
}

type worksMessage struct {
	Author []authorEntry `json:"author"`
}

// authorEntry is one author in a Crossref works response.
type authorEntry struct {
	Given       string             `json:"given"`
	Family      string             `json:"family"`
	Email       string             `json:"email"`
	Affiliation []affiliationEntry `json:"affiliation"`
}

type affiliationEntry struct {
	Name string `json:"name"`
}
