package collector

import "github.com/qepting91/studybuddy-scraper/internal/domain"

const deletedAuthor = "deleted"

// normalizeAuthor replaces missing or removed accounts with a placeholder.
func normalizeAuthor(item domain.Item) domain.Item {
	if item.AuthorName == "" || item.AuthorName == "[deleted]" {
		item.AuthorName = deletedAuthor
		item.AuthorID = deletedAuthor
	}
	if item.AuthorID == "" {
		item.AuthorID = deletedAuthor
	}
	return item
}
