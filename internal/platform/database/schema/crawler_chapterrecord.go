package schema

// CrawlerChapterRecordTable represents the 'crawler.chapterrecord' table
type CrawlerChapterRecordTable struct {
	Table     string
	ChapterID string
	Pages     string
	CreatedAt string
	UpdatedAt string
}

// CrawlerChapterRecord is the schema definition for crawler.chapterrecord
var CrawlerChapterRecord = CrawlerChapterRecordTable{
	Table:     "crawler.chapterrecord",
	ChapterID: "chapterid",
	Pages:     "pages",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t CrawlerChapterRecordTable) Columns() []string {
	return []string{t.ChapterID, t.Pages, t.CreatedAt, t.UpdatedAt}
}
