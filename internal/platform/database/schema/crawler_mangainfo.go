package schema

// CrawlerMangaInfoTable represents the 'crawler.mangainfo' table
type CrawlerMangaInfoTable struct {
	Table         string
	ID            string
	Slug          string
	Name          string
	Description   string
	Cover         string
	SmallCover    string
	MangaFormat   string
	MangaGenre    string
	ContentRating string
	CreatedAt     string
	UpdatedAt     string
}

// CrawlerMangaInfo is the schema definition for crawler.mangainfo
var CrawlerMangaInfo = CrawlerMangaInfoTable{
	Table:         "crawler.mangainfo",
	ID:            "id",
	Slug:          "slug",
	Name:          "name",
	Description:   "description",
	Cover:         "cover",
	SmallCover:    "smallcover",
	MangaFormat:   "mangaformat",
	MangaGenre:    "mangagenre",
	ContentRating: "contentrating",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}

func (t CrawlerMangaInfoTable) Columns() []string {
	return []string{
		t.ID, t.Slug, t.Name, t.Description, t.Cover, t.SmallCover,
		t.MangaFormat, t.MangaGenre, t.ContentRating, t.CreatedAt, t.UpdatedAt,
	}
}
