package usecase

// Selectors are the CSS selectors the connector uses on the target site.
type Selectors struct {
	LoginUsername string
	LoginPassword string
	LoginSubmit   string

	ResultItem   string
	Subtitle     string
	Name         string
	ProfileLink  string
	ActionButton string

	AddNoteButton  string
	NoteInput      string
	SendButton     string
	SendNoteButton string

	NextPage string
}

// Site holds the fixed URLs and markers of the target site.
type Site struct {
	BaseURL            string
	LoginURL           string
	FeedURL            string
	AuthenticatedTitle string
}

func DefaultSelectors() Selectors {
	return Selectors{
		LoginUsername: "#username",
		LoginPassword: "#password",
		LoginSubmit:   ".login__form_action_container button",

		ResultItem:   ".search-results-container > div:nth-child(2) > div > ul > li",
		Subtitle:     ".mb1 > div:nth-child(2)",
		Name:         ".entity-result__title-line--2-lines > span > a > span > span:nth-child(1)",
		ProfileLink:  `a[href*="/in/"]`,
		ActionButton: "div > div > div > div:nth-child(3) button",

		AddNoteButton:  `button[aria-label="Add a note"]`,
		NoteInput:      "textarea",
		SendButton:     `button[aria-label="Send without a note"]`,
		SendNoteButton: `button[aria-label="Send invitation"]`,

		NextPage: `button[aria-label="Next"]`,
	}
}

func DefaultSite() Site {
	return Site{
		BaseURL:            "https://www.linkedin.com",
		LoginURL:           "https://linkedin.com/login",
		FeedURL:            "https://www.linkedin.com/feed/",
		AuthenticatedTitle: "Feed",
	}
}
