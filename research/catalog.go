package research

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"slices"
)

// heroFallbackCount caps the computed hero selection when no ids are featured.
const heroFallbackCount = 2

// Catalog is an immutable snapshot of the research library.
// Accessors return fresh slices; the records inside share their nested
// slices with the catalog and must not be modified.
type Catalog struct {
	papers      []Paper
	comics      []Comic
	topics      []Topic
	featuredIDs []string

	paperIndex map[string]int
	comicIndex map[string]int
}

// Filter narrows a paper list. Zero values leave an axis unconstrained.
type Filter struct {
	Topic string
	Year  int
}

// Empty returns a catalog with no papers, comics or topics.
func Empty() *Catalog {
	return newCatalog(catalogFile{})
}

// Load reads and validates the catalog file at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("research: read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("research: load %s: %w", path, err)
	}
	return c, nil
}

// Parse validates data against the catalog schema and record rules and
// returns the resulting catalog. Invalid input yields a *ValidationError.
func Parse(data []byte) (*Catalog, error) {
	if err := validateShape(data); err != nil {
		return nil, err
	}
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, &ValidationError{Issues: []Issue{{Message: err.Error()}}}
	}
	if issues := validateRecords(&file); len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return newCatalog(file), nil
}

func newCatalog(file catalogFile) *Catalog {
	c := &Catalog{
		papers:      file.Papers,
		comics:      file.Comics,
		topics:      file.Categories.Topics,
		featuredIDs: file.Hero.FeaturedIDs,
		paperIndex:  make(map[string]int, len(file.Papers)),
		comicIndex:  make(map[string]int, len(file.Comics)),
	}
	for i, p := range c.papers {
		c.paperIndex[p.ID] = i
	}
	for i, cm := range c.comics {
		c.comicIndex[cm.ID] = i
	}
	return c
}

// AllPapers returns every paper in source order.
func (c *Catalog) AllPapers() []Paper {
	return cloneSlice(c.papers)
}

// AllComics returns every comic in source order.
func (c *Catalog) AllComics() []Comic {
	return cloneSlice(c.comics)
}

// Paper looks up a paper by id.
func (c *Catalog) Paper(id string) (Paper, bool) {
	i, ok := c.paperIndex[id]
	if !ok {
		return Paper{}, false
	}
	return c.papers[i], true
}

// Comic looks up a comic by id.
func (c *Catalog) Comic(id string) (Comic, bool) {
	i, ok := c.comicIndex[id]
	if !ok {
		return Comic{}, false
	}
	return c.comics[i], true
}

// HeroItems returns the papers shown in the landing position.
//
// Featured ids are resolved in their configured order and unknown ids are
// dropped. Without featured ids, the newest flagship papers are used.
func (c *Catalog) HeroItems() []Paper {
	if len(c.featuredIDs) > 0 {
		out := make([]Paper, 0, len(c.featuredIDs))
		for _, id := range c.featuredIDs {
			if p, ok := c.Paper(id); ok {
				out = append(out, p)
			}
		}
		return out
	}

	flagship := make([]Paper, 0, heroFallbackCount)
	for _, p := range c.papers {
		if p.IsFlagship {
			flagship = append(flagship, p)
		}
	}
	slices.SortStableFunc(flagship, func(a, b Paper) int {
		return cmp.Compare(b.Year, a.Year)
	})
	if len(flagship) > heroFallbackCount {
		flagship = flagship[:heroFallbackCount]
	}
	return flagship
}

// Topics returns the topic vocabulary as configured.
func (c *Catalog) Topics() []Topic {
	return cloneSlice(c.topics)
}

// Years returns the distinct publication years of all papers, newest first.
func (c *Catalog) Years() []int {
	years := make([]int, 0, len(c.papers))
	for _, p := range c.papers {
		if !slices.Contains(years, p.Year) {
			years = append(years, p.Year)
		}
	}
	slices.SortFunc(years, func(a, b int) int { return cmp.Compare(b, a) })
	return years
}

// PapersByTopic returns the papers tagged with topic, in source order.
func (c *Catalog) PapersByTopic(topic string) []Paper {
	return FilterPapers(c.papers, Filter{Topic: topic})
}

// PapersByYear returns the papers published in year, in source order.
func (c *Catalog) PapersByYear(year int) []Paper {
	return FilterPapers(c.papers, Filter{Year: year})
}

// ComicsByTopic returns the comics tagged with topic, in source order.
func (c *Catalog) ComicsByTopic(topic string) []Comic {
	out := make([]Comic, 0)
	for _, cm := range c.comics {
		if topic == "" || cm.HasTopic(topic) {
			out = append(out, cm)
		}
	}
	return out
}

// FilterPapers returns the papers matching every constraint set in f.
func FilterPapers(papers []Paper, f Filter) []Paper {
	out := make([]Paper, 0, len(papers))
	for _, p := range papers {
		if f.Topic != "" && !p.HasTopic(f.Topic) {
			continue
		}
		if f.Year != 0 && p.Year != f.Year {
			continue
		}
		out = append(out, p)
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
