// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mangadex

// # Wire Types
//
// These mirror the subset of the MangaDex JSON documents the crawler reads.

type atHomeResponse struct {
	Result  *string        `json:"result"`
	BaseURL *string        `json:"baseUrl"`
	Chapter *atHomeChapter `json:"chapter"`
}

type atHomeChapter struct {
	Hash      *string   `json:"hash"`
	Data      *[]string `json:"data"`
	DataSaver []string  `json:"dataSaver"`
}

type relationship struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes *struct {
		FileName string `json:"fileName"`
	} `json:"attributes"`
}

type tag struct {
	ID         string `json:"id"`
	Attributes struct {
		Name  map[string]string `json:"name"`
		Group string            `json:"group"`
	} `json:"attributes"`
}

type mangaAttributes struct {
	Title         map[string]string `json:"title"`
	Description   map[string]string `json:"description"`
	ContentRating string            `json:"contentRating"`
	Tags          []tag             `json:"tags"`
}

type mangaData struct {
	ID            string          `json:"id"`
	Attributes    mangaAttributes `json:"attributes"`
	Relationships []relationship  `json:"relationships"`
}

type mangaListResponse struct {
	Data  []mangaData `json:"data"`
	Total int         `json:"total"`
}

type mangaResponse struct {
	Data *mangaData `json:"data"`
}

type chapterListResponse struct {
	Data []struct {
		ID         string `json:"id"`
		Attributes struct {
			Volume             string `json:"volume"`
			Chapter            string `json:"chapter"`
			Title              string `json:"title"`
			TranslatedLanguage string `json:"translatedLanguage"`
			Pages              int    `json:"pages"`
			ExternalURL        string `json:"externalUrl"`
		} `json:"attributes"`
	} `json:"data"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// # Attribute Helpers

// pickTitle prefers the English title and falls back to any other localisation.
func pickTitle(titles map[string]string) string {
	if value, ok := titles["en"]; ok && value != "" {
		return value
	}

	// Map order is random; pick the smallest language code for a stable result.
	best := ""
	for language, value := range titles {
		if value == "" {
			continue
		}
		if best == "" || language < best {
			best = language
		}
	}
	return titles[best]
}

func pickCoverFileName(relationships []relationship) string {
	for _, relation := range relationships {
		if relation.Type != "cover_art" || relation.Attributes == nil {
			continue
		}
		if relation.Attributes.FileName != "" {
			return relation.Attributes.FileName
		}
	}
	return ""
}
