package main

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mmcdole/shelf/internal/domain"
)

var titleCaser = cases.Title(language.Und)

// label turns an identifier such as "in_progress" into "In Progress".
func label(value string) string {
	return titleCaser.String(strings.ReplaceAll(value, "_", " "))
}

func itemRow(item domain.Item) []string {
	cover := ""
	if item.HasCover() {
		cover = item.CoverID.String()
	}
	return []string{
		strconv.FormatInt(int64(item.ID), 10),
		item.Title,
		item.Author,
		label(string(item.MediaType)),
		label(string(item.Status)),
		ratingText(item.Rating),
		item.YearLabel(),
		cover,
	}
}

var itemHeaders = []string{"ID", "Title", "Author", "Type", "Status", "Rating", "Year", "Cover"}

var itemAligns = []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight}

func ratingText(rating int) string {
	if rating <= 0 {
		return "-"
	}
	return strconv.Itoa(rating) + "/" + strconv.Itoa(domain.MaxRating)
}

func resultRow(n int, r domain.SearchResult) []string {
	year, cover := "", ""
	if r.FirstPublishYear > 0 {
		year = strconv.Itoa(r.FirstPublishYear)
	}
	if r.CoverID.Valid() {
		cover = r.CoverID.String()
	}
	return []string{strconv.Itoa(n), r.Title, r.Author, year, cover, r.Key}
}

var resultHeaders = []string{"#", "Title", "Author", "Year", "Cover", "Key"}

var resultAligns = []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft}
