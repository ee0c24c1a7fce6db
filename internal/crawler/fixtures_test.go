package crawler

import (
	"fmt"
	"strings"
	"time"

	"github.com/dealmungchi/coursecrawler/internal/course"
	cerrors "github.com/dealmungchi/coursecrawler/pkg/errors"
)

const testTemplate = "https://courses.example.com/list?p={page}"

func testURL(page int) string {
	return strings.ReplaceAll(testTemplate, "{page}", fmt.Sprint(page))
}

// listingPage renders a listing with pagination up to lastPage and one card
// per title. A title of "!" renders a card without a rating.
func listingPage(lastPage int, titles ...string) string {
	var b strings.Builder
	b.WriteString("<html><body><ul>")
	for _, title := range titles {
		slug := strings.ToLower(strings.ReplaceAll(title, " ", "-"))
		b.WriteString(`<li class="card">`)
		fmt.Fprintf(&b, `<a href="https://courses.example.com/course/%s/">%s</a>`, slug, title)
		if !strings.HasSuffix(title, "!") {
			b.WriteString(`<span class="rating">4.5</span>`)
		}
		b.WriteString(`</li>`)
	}
	b.WriteString("</ul><nav>")
	for p := 1; p <= lastPage; p++ {
		fmt.Fprintf(&b, `<a data-page="%d">%d</a>`, p, p)
	}
	b.WriteString(`<a data-page="next">Next</a></nav></body></html>`)
	return b.String()
}

func extractTestCard(c *Card) course.RawRecord {
	return course.RawRecord{
		Title:     Extract(c, cerrors.FieldTitle, func() (string, error) { return c.Text("a") }),
		TargetURL: Extract(c, cerrors.FieldURL, func() (string, error) { return c.Attr("a", "href") }),
		Rating:    Extract(c, cerrors.FieldRating, func() (string, error) { return c.Text(".rating") }),
	}
}

func testAdapter() Adapter {
	return Adapter{
		Platform:    "example",
		URLTemplate: testTemplate,
		Page: &CardPage{
			Platform:     "example",
			CardSelector: "li.card",
			WaitTimeout:  time.Second,
			Extract:      extractTestCard,
		},
		Pagination: &Pagination{Selector: "[data-page]", Attr: "data-page"},
	}
}
