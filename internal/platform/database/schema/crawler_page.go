package schema

// CrawlerPageTable represents the 'crawler.page' table
type CrawlerPageTable struct {
	Table      string
	ChapterID  string
	PageNumber string
	Data       string
	MangaID    string
	CreatedAt  string
}

// CrawlerPage is the schema definition for crawler.page
var CrawlerPage = CrawlerPageTable{
	Table:      "crawler.page",
	ChapterID:  "chapterid",
	PageNumber: "pagenumber",
	Data:       "data",
	MangaID:    "mangaid",
	CreatedAt:  "createdat",
}

func (t CrawlerPageTable) Columns() []string {
	return []string{t.ChapterID, t.PageNumber, t.Data, t.MangaID, t.CreatedAt}
}
