// file: cmd/output.go
// version: 1.0.0
// guid: 18d02814-7047-4133-9207-1445ae142251

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jdfalk/readora/internal/models"
)

func printBooks(w io.Writer, books []models.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, "No books found.")
		return
	}
	for i, b := range books {
		fmt.Fprintf(w, "%2d. [%s] %s\n", i+1, b.ID, b.DisplayTitle())
		if b.Authors != "" {
			fmt.Fprintf(w, "    by %s\n", b.Authors)
		}
	}
}

func printBookDetails(w io.Writer, b models.Book, saved bool) {
	fmt.Fprintf(w, "%s\n", b.DisplayTitle())
	fmt.Fprintf(w, "  ID:       %s\n", b.ID)
	printField(w, "Authors", b.Authors)
	printField(w, "Year", b.Year)
	printField(w, "Pages", b.Pages)
	printField(w, "Language", b.Language)
	printField(w, "Size", b.Filesize)
	printField(w, "URL", b.URL)
	printField(w, "Download", b.Download)
	if saved {
		fmt.Fprintln(w, "  Saved:    yes")
	}
	if desc := b.PlainDescription(); desc != "" {
		fmt.Fprintf(w, "\n%s\n", truncateString(desc, 600))
	}
}

func printField(w io.Writer, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(w, "  %-9s %s\n", label+":", value)
}

func printDownloads(w io.Writer, records []models.DownloadRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No saved books.")
		return
	}
	for i, r := range records {
		fmt.Fprintf(w, "%2d. [%s] %s (saved %s)\n", i+1, r.ID, r.DisplayTitle(), r.SavedAt.Local().Format("2006-01-02 15:04"))
	}
}

func truncateString(in string, max int) string {
	if len(in) <= max {
		return in
	}
	return in[:max] + "..."
}
