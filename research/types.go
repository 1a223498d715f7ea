// Package research exposes read-only views over the research library catalog:
// papers, comics and the topic vocabulary used to filter them.
package research

// PaperType distinguishes academic papers from whitepapers.
type PaperType string

const (
	PaperTypeAcademic   PaperType = "paper"
	PaperTypeWhitepaper PaperType = "whitepaper"
)

// ComicType is the only valid type for comics.
const ComicType = "comic"

// Paper is an academic paper or whitepaper.
type Paper struct {
	ID         string            `json:"id"`
	Type       PaperType         `json:"type"`
	Title      string            `json:"title"`
	Authors    []string          `json:"authors"`
	Abstract   string            `json:"abstract"`
	Year       int               `json:"year"`
	Venue      string            `json:"venue,omitempty"`
	Links      map[string]string `json:"links,omitempty"`
	Topics     []string          `json:"topics"`
	IsFlagship bool              `json:"isFlagship"`
}

// HasTopic reports whether the paper is tagged with topic.
func (p Paper) HasTopic(topic string) bool {
	return hasTopic(p.Topics, topic)
}

// Comic is one episode of an explanatory comic series.
type Comic struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle,omitempty"`
	Description   string   `json:"description"`
	Author        string   `json:"author"`
	Illustrator   string   `json:"illustrator,omitempty"`
	PublishedDate string   `json:"publishedDate"`
	Episode       int      `json:"episode"`
	CoverImage    string   `json:"coverImage"`
	Topics        []string `json:"topics"`
	IsFlagship    bool     `json:"isFlagship"`
	ReadTime      string   `json:"readTime"`
}

// HasTopic reports whether the comic is tagged with topic.
func (c Comic) HasTopic(topic string) bool {
	return hasTopic(c.Topics, topic)
}

// Topic is one entry of the filter vocabulary.
type Topic struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// catalogFile mirrors the on-disk catalog document.
type catalogFile struct {
	Papers     []Paper `json:"papers"`
	Comics     []Comic `json:"comics"`
	Categories struct {
		Topics []Topic `json:"topics"`
	} `json:"categories"`
	Hero struct {
		FeaturedIDs []string `json:"featuredIds"`
	} `json:"hero"`
}

func hasTopic(topics []string, topic string) bool {
	for _, t := range topics {
		if t == topic {
			return true
		}
	}
	return false
}
